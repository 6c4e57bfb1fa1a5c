package vector

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/menudex/internal/domain"
)

func TestMemory_UpsertGet(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()

	e := Entry{ID: "food-001", Vector: []float32{1, 0, 0}, Fingerprint: "fp1"}
	if err := m.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, found, err := m.Get(ctx, "food-001")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if got.Fingerprint != "fp1" {
		t.Errorf("Fingerprint = %q, want fp1", got.Fingerprint)
	}
}

func TestMemory_UpsertReplacesAtomically(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	_ = m.Upsert(ctx, Entry{ID: "d", Vector: []float32{1, 0}, Fingerprint: "f1"})
	_ = m.Upsert(ctx, Entry{ID: "d", Vector: []float32{0, 1}, Fingerprint: "f2"})

	got, _, _ := m.Get(ctx, "d")
	if got.Fingerprint != "f2" {
		t.Errorf("Fingerprint = %q, want f2", got.Fingerprint)
	}
	if got.Vector[0] != 0 || got.Vector[1] != 1 {
		t.Errorf("Vector = %v, want [0 1]", got.Vector)
	}
}

func TestMemory_DimensionMismatch(t *testing.T) {
	m := NewMemory(3)
	err := m.Upsert(context.Background(), Entry{ID: "x", Vector: []float32{1, 0}, Fingerprint: "f"})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("error = %v, want ErrVectorDimMismatch", err)
	}
}

func TestMemory_DimensionPinnedByFirstUpsert(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Upsert(ctx, Entry{ID: "a", Vector: []float32{1, 0}, Fingerprint: "f"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	err := m.Upsert(ctx, Entry{ID: "b", Vector: []float32{1, 0, 0}, Fingerprint: "f"})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("error = %v, want ErrVectorDimMismatch", err)
	}
}

func TestMemory_RemoveIsIdempotent(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	_ = m.Upsert(ctx, Entry{ID: "d", Vector: []float32{1, 0}, Fingerprint: "f"})
	if err := m.Remove(ctx, "d"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := m.Remove(ctx, "d"); err != nil {
		t.Fatalf("second Remove must be a no-op, got %v", err)
	}
	if err := m.Remove(ctx, "never-existed"); err != nil {
		t.Fatalf("Remove of absent id must be a no-op, got %v", err)
	}

	if _, found, _ := m.Get(ctx, "d"); found {
		t.Error("removed entry still present")
	}
}

func TestMemory_AllSortedByID(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_ = m.Upsert(ctx, Entry{ID: id, Vector: []float32{1, 0}, Fingerprint: "f"})
	}

	all, err := m.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(All) = %d, want 3", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].ID != want {
			t.Errorf("All[%d].ID = %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestMemory_SnapshotUnaffectedByLaterUpsert(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	_ = m.Upsert(ctx, Entry{ID: "a", Vector: []float32{1, 0}, Fingerprint: "f1"})
	all, _ := m.All(ctx)

	_ = m.Upsert(ctx, Entry{ID: "a", Vector: []float32{0, 1}, Fingerprint: "f2"})

	if all[0].Fingerprint != "f1" || all[0].Vector[0] != 1 {
		t.Error("snapshot must not observe upserts made after All returned")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d"}
	for i := 0; i < 50; i++ {
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_ = m.Upsert(ctx, Entry{ID: id, Vector: []float32{1, 0}, Fingerprint: "f"})
				_, _, _ = m.Get(ctx, id)
				_, _ = m.All(ctx)
			}(id)
		}
	}
	wg.Wait()

	all, _ := m.All(ctx)
	if len(all) != len(ids) {
		t.Errorf("len(All) = %d, want %d", len(all), len(ids))
	}
}
