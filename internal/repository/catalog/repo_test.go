package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/menudex/internal/domain"
	domcat "github.com/kailas-cloud/menudex/internal/domain/catalog"
)

func makeItem(t *testing.T, id, name string) domcat.Item {
	t.Helper()
	item, err := domcat.New(id, name, domcat.Fields{TextureLevel: 2})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return item
}

func TestRepo_PutGet(t *testing.T) {
	repo := New()
	ctx := context.Background()

	created, err := repo.Put(ctx, makeItem(t, "food-001", "Baked salmon"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}

	created, err = repo.Put(ctx, makeItem(t, "food-001", "Baked salmon fillet"))
	if err != nil {
		t.Fatalf("Put update: %v", err)
	}
	if created {
		t.Error("expected created=false on replace")
	}

	item, err := repo.Get(ctx, "food-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Name() != "Baked salmon fillet" {
		t.Errorf("Name = %q", item.Name())
	}
}

func TestRepo_GetAbsent(t *testing.T) {
	repo := New()
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestRepo_DeleteAbsent(t *testing.T) {
	repo := New()
	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestRepo_ListInsertionOrder(t *testing.T) {
	repo := New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_, _ = repo.Put(ctx, makeItem(t, id, "Dish "+id))
	}
	_ = repo.Delete(ctx, "a")

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID() != "c" || items[1].ID() != "b" {
		t.Errorf("List order wrong: %v", ids(items))
	}
}

func ids(items []domcat.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID()
	}
	return out
}

func TestRepo_LoadSeed(t *testing.T) {
	repo := New()
	data := []byte(`
items:
  - id: food-001
    name: Roasted chicken breast
    category: mains
    texture_level: 4
    nutrition_summary: 31g protein, low fat
  - name: Natural yogurt 5%
    category: dairy
    texture_level: 1
    allergens_contains: [milk]
    nutrition_vector: [10, 5, 4.5]
`)

	n, err := repo.loadSeedData(context.Background(), data)
	if err != nil {
		t.Fatalf("loadSeedData: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}

	items, _ := repo.List(context.Background())
	if len(items) != 2 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[1].ID() == "" {
		t.Error("seed item without id must get a store-assigned id")
	}
	if items[1].NutritionVector()[2] != 4.5 {
		t.Errorf("nutrition vector not loaded: %v", items[1].NutritionVector())
	}
}

func TestRepo_LoadSeedInvalidItem(t *testing.T) {
	repo := New()
	data := []byte("items:\n  - id: bad item\n    name: X\n")

	if _, err := repo.loadSeedData(context.Background(), data); err == nil {
		t.Error("expected error for invalid seed item id")
	}
}
