package chi

import (
	"fmt"

	"github.com/kailas-cloud/menudex/internal/domain/batch"
	domcat "github.com/kailas-cloud/menudex/internal/domain/catalog"
	"github.com/kailas-cloud/menudex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/menudex/internal/usecase/health"
)

// itemRequest is the JSON body for item create and update.
type itemRequest struct {
	ID                  string    `json:"id,omitempty"`
	Name                string    `json:"name"`
	Category            string    `json:"category,omitempty"`
	Company             string    `json:"company,omitempty"`
	ImageURL            string    `json:"image_url,omitempty"`
	TextureLevel        int       `json:"texture_level"`
	TextureNotes        string    `json:"texture_notes,omitempty"`
	NutritionSummary    string    `json:"nutrition_summary,omitempty"`
	AllergensContains   []string  `json:"allergens_contains,omitempty"`
	AllergensMayContain []string  `json:"allergens_may_contain,omitempty"`
	Properties          []string  `json:"properties,omitempty"`
	NutritionVector     []float64 `json:"nutrition_vector,omitempty"`
}

// itemResponse is the JSON representation of a catalog item.
type itemResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Category            string    `json:"category,omitempty"`
	Company             string    `json:"company,omitempty"`
	ImageURL            string    `json:"image_url,omitempty"`
	TextureLevel        int       `json:"texture_level"`
	TextureNotes        string    `json:"texture_notes,omitempty"`
	NutritionSummary    string    `json:"nutrition_summary,omitempty"`
	AllergensContains   []string  `json:"allergens_contains,omitempty"`
	AllergensMayContain []string  `json:"allergens_may_contain,omitempty"`
	Properties          []string  `json:"properties,omitempty"`
	NutritionVector     []float64 `json:"nutrition_vector,omitempty"`
	Fingerprint         string    `json:"fingerprint"`
}

type itemListResponse struct {
	Items []itemResponse `json:"items"`
	Total int            `json:"total"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type searchResultItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	TopK    int                `json:"top_k"`
}

type reconcileItemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type reconcileResponse struct {
	Items    []reconcileItemResult `json:"items"`
	Embedded int                   `json:"embedded"`
	Skipped  int                   `json:"skipped"`
	Failed   []string              `json:"failed,omitempty"`
	Removed  []string              `json:"removed,omitempty"`
}

type usageResponse struct {
	EmbeddingRequests int64   `json:"embedding_requests"`
	Tokens            int64   `json:"tokens"`
	EstimatedCostUSD  float64 `json:"estimated_cost_usd"`
}

type healthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexedItems int               `json:"indexed_items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func itemFromRequest(id string, req itemRequest) (domcat.Item, error) {
	item, err := domcat.New(id, req.Name, domcat.Fields{
		Category:            req.Category,
		Company:             req.Company,
		ImageURL:            req.ImageURL,
		TextureLevel:        req.TextureLevel,
		TextureNotes:        req.TextureNotes,
		NutritionSummary:    req.NutritionSummary,
		AllergensContains:   req.AllergensContains,
		AllergensMayContain: req.AllergensMayContain,
		Properties:          req.Properties,
		NutritionVector:     req.NutritionVector,
	})
	if err != nil {
		return domcat.Item{}, fmt.Errorf("build item: %w", err)
	}
	return item, nil
}

func itemToResponse(item domcat.Item) itemResponse {
	return itemResponse{
		ID:                  item.ID(),
		Name:                item.Name(),
		Category:            item.Category(),
		Company:             item.Company(),
		ImageURL:            item.ImageURL(),
		TextureLevel:        item.TextureLevel(),
		TextureNotes:        item.TextureNotes(),
		NutritionSummary:    item.NutritionSummary(),
		AllergensContains:   item.AllergensContains(),
		AllergensMayContain: item.AllergensMayContain(),
		Properties:          item.Properties(),
		NutritionVector:     item.NutritionVector(),
		Fingerprint:         domcat.ItemFingerprint(item),
	}
}

func searchResultsToResponse(results []result.Result, names map[string]string, topK int) searchResponse {
	items := make([]searchResultItem, len(results))
	for i := range results {
		r := &results[i]
		items[i] = searchResultItem{
			ID:    r.ID(),
			Name:  names[r.ID()],
			Score: r.Score(),
			Rank:  r.Rank(),
		}
	}
	return searchResponse{Results: items, TopK: topK}
}

func reportToResponse(report batch.Report) reconcileResponse {
	items := make([]reconcileItemResult, len(report.Results()))
	for i, res := range report.Results() {
		items[i] = reconcileItemResult{
			ID:     res.ID(),
			Status: string(res.Status()),
		}
		if res.Err() != nil {
			items[i].Error = safeDomainMessage(res.Err())
		}
	}
	return reconcileResponse{
		Items:    items,
		Embedded: report.Embedded(),
		Skipped:  report.Skipped(),
		Failed:   report.FailedIDs(),
		Removed:  report.Removed(),
	}
}

func healthToResponse(report healthuc.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{
		Status:       string(report.Status),
		Checks:       checks,
		IndexedItems: report.IndexedItems,
	}
}
