package vector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/menudex/internal/domain"
)

// Hash field names for a stored entry.
const (
	fieldVector      = "vector"
	fieldFingerprint = "fingerprint"
	fieldDim         = "dim"
	fieldGeneratedAt = "generated_at"
)

// store is the consumer interface for the Redis-backed vector store (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Redis is a Store persisted in Redis/Valkey hashes, one hash per item id.
// Upsert writes all fields in a single HSET so the vector and fingerprint
// stay paired.
type Redis struct {
	store     store
	keyPrefix string
	dim       int
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed vector store. keyPrefix namespaces the
// keys (e.g. "menudex:"); dim is the required vector dimension.
func NewRedis(s store, keyPrefix string, dim int) *Redis {
	return &Redis{store: s, keyPrefix: keyPrefix, dim: dim}
}

func (r *Redis) key(id string) string {
	return r.keyPrefix + "vec:" + id
}

func (r *Redis) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"vec:")
}

// Upsert atomically replaces the entry for e.ID.
func (r *Redis) Upsert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry ID is required")
	}
	if r.dim > 0 && len(e.Vector) != r.dim {
		return fmt.Errorf("got %d dimensions, want %d: %w", len(e.Vector), r.dim, domain.ErrVectorDimMismatch)
	}
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now().UTC()
	}

	fields := map[string]string{
		fieldVector:      string(vectorToBytes(e.Vector)),
		fieldFingerprint: e.Fingerprint,
		fieldDim:         strconv.Itoa(len(e.Vector)),
		fieldGeneratedAt: e.GeneratedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.HSet(ctx, r.key(e.ID), fields); err != nil {
		return fmt.Errorf("hset vector %s: %w", e.ID, err)
	}
	return nil
}

// Get returns the entry for an id.
func (r *Redis) Get(ctx context.Context, id string) (Entry, bool, error) {
	fields, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return Entry{}, false, fmt.Errorf("hgetall vector %s: %w", id, err)
	}
	if len(fields) == 0 {
		return Entry{}, false, nil
	}

	e, err := r.hydrate(id, fields)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Fingerprint returns the stored fingerprint for an id.
func (r *Redis) Fingerprint(ctx context.Context, id string) (string, bool, error) {
	fields, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return "", false, fmt.Errorf("hgetall vector %s: %w", id, err)
	}
	fp, ok := fields[fieldFingerprint]
	if !ok {
		return "", false, nil
	}
	return fp, true, nil
}

// Remove deletes the entry for an id. Idempotent.
func (r *Redis) Remove(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("del vector %s: %w", id, err)
	}
	return nil
}

// All scans every stored entry.
func (r *Redis) All(ctx context.Context) ([]Entry, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix+"vec:*")
	if err != nil {
		return nil, fmt.Errorf("scan vectors: %w", err)
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		fields, err := r.store.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", key, err)
		}
		if len(fields) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		e, err := r.hydrate(r.idFromKey(key), fields)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// hydrate decodes hash fields into an Entry, enforcing the dimension
// invariant. A corrupt or mis-sized vector is fatal for that item.
func (r *Redis) hydrate(id string, fields map[string]string) (Entry, error) {
	vec, err := bytesToVector([]byte(fields[fieldVector]))
	if err != nil {
		return Entry{}, domain.NewInconsistentState(id, err.Error())
	}

	if dimStr, ok := fields[fieldDim]; ok {
		dim, convErr := strconv.Atoi(dimStr)
		if convErr != nil || dim != len(vec) {
			return Entry{}, domain.NewInconsistentState(id,
				fmt.Sprintf("stored dim %q does not match vector length %d", dimStr, len(vec)))
		}
	}
	if r.dim > 0 && len(vec) != r.dim {
		return Entry{}, domain.NewInconsistentState(id,
			fmt.Sprintf("vector has %d dimensions, store requires %d", len(vec), r.dim))
	}

	fp := fields[fieldFingerprint]
	if fp == "" {
		return Entry{}, domain.NewInconsistentState(id, "missing fingerprint")
	}

	var generatedAt time.Time
	if ts := fields[fieldGeneratedAt]; ts != "" {
		generatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}

	return Entry{ID: id, Vector: vec, Fingerprint: fp, GeneratedAt: generatedAt}, nil
}
