package vector

import (
	"context"
	"sort"
	"strings"
)

// mockHashStore implements the consumer store interface over a plain map.
type mockHashStore struct {
	hashes  map[string]map[string]string
	hsetErr error
	scanErr error
}

func newMockHashStore() *mockHashStore {
	return &mockHashStore{hashes: make(map[string]map[string]string)}
}

func (m *mockHashStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h := make(map[string]string, len(fields))
	for k, v := range fields {
		h[k] = v
	}
	m.hashes[key] = h
	return nil
}

func (m *mockHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	return h, nil
}

func (m *mockHashStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *mockHashStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
