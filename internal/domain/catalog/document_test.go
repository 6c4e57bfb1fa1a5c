package catalog

import (
	"strings"
	"testing"
)

func makeItem(t *testing.T, id, name string, f Fields) Item {
	t.Helper()
	item, err := New(id, name, f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return item
}

func TestDocument_TemplateIsPinned(t *testing.T) {
	item := makeItem(t, "food-001", "Roasted chicken breast", Fields{
		Category:          "mains",
		TextureLevel:      4,
		TextureNotes:      "firm",
		NutritionSummary:  "31g protein, low fat",
		AllergensContains: []string{"soy"},
		Properties:        []string{"high-protein"},
	})

	want := "Dish: Roasted chicken breast. Texture level: 4 (firm). " +
		"Nutrition: 31g protein, low fat. Allergens: soy. May contain: none. " +
		"Category: mains. Properties: high-protein."
	if got := Document(item); got != want {
		t.Errorf("document template changed:\n got:  %q\n want: %q", got, want)
	}
}

func TestDocument_PlaceholdersForOptionalFields(t *testing.T) {
	item := makeItem(t, "food-002", "Mashed potatoes", Fields{TextureLevel: 1})

	want := "Dish: Mashed potatoes. Texture level: 1 (none). " +
		"Nutrition: unspecified. Allergens: none. May contain: none. " +
		"Category: general. Properties: none."
	if got := Document(item); got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestDocument_EmptyAllergensRenderAsNoneToken(t *testing.T) {
	a := makeItem(t, "a", "Plain rice", Fields{})
	b := makeItem(t, "b", "Plain rice", Fields{AllergensContains: []string{}})

	if Document(a) != Document(b) {
		t.Errorf("items with no allergens must produce identical documents")
	}
	if !strings.Contains(Document(a), "Allergens: none.") {
		t.Errorf("empty allergen set must render as the none token, got %q", Document(a))
	}
}

func TestDocument_AllergenSetIsSortedAndDeduplicated(t *testing.T) {
	a := makeItem(t, "a", "Meatballs", Fields{AllergensContains: []string{"gluten", "eggs", "gluten"}})
	b := makeItem(t, "b", "Meatballs", Fields{AllergensContains: []string{"eggs", "gluten"}})

	if Document(a) != Document(b) {
		t.Errorf("set order and duplicates must not affect the document:\n a: %q\n b: %q",
			Document(a), Document(b))
	}
	if !strings.Contains(Document(a), "Allergens: eggs, gluten.") {
		t.Errorf("allergens must be sorted and comma-joined, got %q", Document(a))
	}
}

func TestDocument_Deterministic(t *testing.T) {
	f := Fields{
		Category:            "dairy",
		TextureLevel:        1,
		NutritionSummary:    "10g protein, rich in calcium",
		AllergensContains:   []string{"milk"},
		AllergensMayContain: []string{"nuts"},
		Properties:          []string{"probiotic"},
	}
	a := makeItem(t, "x", "Natural yogurt 5%", f)
	b := makeItem(t, "y", "Natural yogurt 5%", f)

	if Document(a) != Document(b) {
		t.Error("identical relevant fields must produce identical documents")
	}
	if ItemFingerprint(a) != ItemFingerprint(b) {
		t.Error("identical documents must produce identical fingerprints")
	}
}

func TestDocument_ImageURLIsNotPartOfDocument(t *testing.T) {
	item := makeItem(t, "food-003", "Baked salmon", Fields{TextureLevel: 2})
	updated := item.WithImageURL("https://img.example/salmon.jpg")

	if Document(item) != Document(updated) {
		t.Error("image reference must not change the canonical document")
	}
	if ItemFingerprint(item) != ItemFingerprint(updated) {
		t.Error("image reference must not change the fingerprint")
	}
}

func TestFingerprint_ChangesWithName(t *testing.T) {
	item := makeItem(t, "food-004", "Beef meatballs", Fields{TextureLevel: 3})
	renamed := item.WithName("Beef meatballs in tomato sauce")

	if ItemFingerprint(item) == ItemFingerprint(renamed) {
		t.Error("name change must change the fingerprint")
	}
}

func TestFingerprint_IsHexSHA256(t *testing.T) {
	fp := Fingerprint("Dish: test.")
	if len(fp) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(fp))
	}
	if fp != Fingerprint("Dish: test.") {
		t.Error("fingerprint must be deterministic")
	}
}
