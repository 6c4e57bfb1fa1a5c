package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domcat "github.com/kailas-cloud/menudex/internal/domain/catalog"
)

// seedItem is the YAML shape of one fixture item.
type seedItem struct {
	ID                  string    `yaml:"id"`
	Name                string    `yaml:"name"`
	Category            string    `yaml:"category"`
	Company             string    `yaml:"company"`
	TextureLevel        int       `yaml:"texture_level"`
	TextureNotes        string    `yaml:"texture_notes"`
	NutritionSummary    string    `yaml:"nutrition_summary"`
	AllergensContains   []string  `yaml:"allergens_contains"`
	AllergensMayContain []string  `yaml:"allergens_may_contain"`
	Properties          []string  `yaml:"properties"`
	NutritionVector     []float64 `yaml:"nutrition_vector"`
}

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

// LoadSeed populates the repository from a YAML fixture. Demo and test
// seeding only; production catalog state belongs to the catalog owner.
func (r *Repo) LoadSeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	return r.loadSeedData(ctx, data)
}

func (r *Repo) loadSeedData(ctx context.Context, data []byte) (int, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	for i, si := range f.Items {
		id := si.ID
		if id == "" {
			id = NewID()
		}
		item, err := domcat.New(id, si.Name, domcat.Fields{
			Category:            si.Category,
			Company:             si.Company,
			TextureLevel:        si.TextureLevel,
			TextureNotes:        si.TextureNotes,
			NutritionSummary:    si.NutritionSummary,
			AllergensContains:   si.AllergensContains,
			AllergensMayContain: si.AllergensMayContain,
			Properties:          si.Properties,
			NutritionVector:     si.NutritionVector,
		})
		if err != nil {
			return 0, fmt.Errorf("seed item %d (%s): %w", i, si.Name, err)
		}
		if _, err := r.Put(ctx, item); err != nil {
			return 0, fmt.Errorf("seed item %d (%s): %w", i, si.Name, err)
		}
	}
	return len(f.Items), nil
}
