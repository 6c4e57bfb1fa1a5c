package catalog

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTextureLevel is the highest IDDSI texture/diet-safety level.
const MaxTextureLevel = 7

// Item is the catalog item aggregate (immutable value object).
// The catalog collaborator owns items; the search core only reads the
// fields that feed the canonical document.
type Item struct {
	id                  string
	name                string
	category            string
	company             string
	imageURL            string
	textureLevel        int
	textureNotes        string
	nutritionSummary    string
	allergensContains   []string
	allergensMayContain []string
	properties          []string
	nutritionVector     []float64
}

// Fields groups the optional item attributes accepted by New.
type Fields struct {
	Category            string
	Company             string
	ImageURL            string
	TextureLevel        int
	TextureNotes        string
	NutritionSummary    string
	AllergensContains   []string
	AllergensMayContain []string
	Properties          []string
	NutritionVector     []float64
}

// New validates and creates an Item.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Name: required.
func New(id, name string, f Fields) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if len(id) > 256 {
		return Item{}, fmt.Errorf("item ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Item{}, fmt.Errorf("item ID must be alphanumeric with underscores and hyphens")
	}
	if name == "" {
		return Item{}, fmt.Errorf("item name is required")
	}
	if f.TextureLevel < 0 || f.TextureLevel > MaxTextureLevel {
		return Item{}, fmt.Errorf("texture level must be between 0 and %d, got %d", MaxTextureLevel, f.TextureLevel)
	}

	return Item{
		id:                  id,
		name:                name,
		category:            f.Category,
		company:             f.Company,
		imageURL:            f.ImageURL,
		textureLevel:        f.TextureLevel,
		textureNotes:        f.TextureNotes,
		nutritionSummary:    f.NutritionSummary,
		allergensContains:   cloneStrings(f.AllergensContains),
		allergensMayContain: cloneStrings(f.AllergensMayContain),
		properties:          cloneStrings(f.Properties),
		nutritionVector:     cloneFloats(f.NutritionVector),
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(id, name string, f Fields) Item {
	return Item{
		id:                  id,
		name:                name,
		category:            f.Category,
		company:             f.Company,
		imageURL:            f.ImageURL,
		textureLevel:        f.TextureLevel,
		textureNotes:        f.TextureNotes,
		nutritionSummary:    f.NutritionSummary,
		allergensContains:   f.AllergensContains,
		allergensMayContain: f.AllergensMayContain,
		properties:          f.Properties,
		nutritionVector:     f.NutritionVector,
	}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Name returns the display name.
func (i *Item) Name() string { return i.name }

// Category returns the category label.
func (i *Item) Category() string { return i.category }

// Company returns the producing company, if any.
func (i *Item) Company() string { return i.company }

// ImageURL returns the image reference. Not part of the canonical document.
func (i *Item) ImageURL() string { return i.imageURL }

// TextureLevel returns the IDDSI texture/diet-safety level.
func (i *Item) TextureLevel() int { return i.textureLevel }

// TextureNotes returns the free-text texture notes.
func (i *Item) TextureNotes() string { return i.textureNotes }

// NutritionSummary returns the free-text nutrition summary.
func (i *Item) NutritionSummary() string { return i.nutritionSummary }

// AllergensContains returns the "contains" allergen set.
func (i *Item) AllergensContains() []string { return i.allergensContains }

// AllergensMayContain returns the "may contain" allergen set.
func (i *Item) AllergensMayContain() []string { return i.allergensMayContain }

// Properties returns the free-form dietary properties (vegan, high-protein, ...).
func (i *Item) Properties() []string { return i.properties }

// NutritionVector returns the numeric nutrition features. Pass-through only,
// never ranked on.
func (i *Item) NutritionVector() []float64 { return i.nutritionVector }

// WithImageURL returns a copy with a new image reference. The canonical
// document is unaffected, so the copy keeps the same fingerprint.
func (i *Item) WithImageURL(url string) Item {
	c := *i
	c.imageURL = url
	return c
}

// WithName returns a copy with a new display name.
func (i *Item) WithName(name string) Item {
	c := *i
	c.name = name
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func cloneFloats(s []float64) []float64 {
	if s == nil {
		return nil
	}
	c := make([]float64, len(s))
	copy(c, s)
	return c
}
