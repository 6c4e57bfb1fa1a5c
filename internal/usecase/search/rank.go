package search

import (
	"math"
	"sort"

	"github.com/kailas-cloud/menudex/internal/domain/search/result"
	"github.com/kailas-cloud/menudex/internal/repository/vector"
)

// DefaultTopK is how many hits a query returns when the caller does not ask
// for a specific count.
const DefaultTopK = 3

// CosineSimilarity returns the cosine of the angle between a and b.
// A zero-norm operand or a length mismatch yields 0; never panics.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores a query vector against candidate entries, sorted by score
// descending with ties broken by item id ascending, truncated to topK.
// The ordering is deterministic regardless of input order.
func Rank(query []float32, candidates []vector.Entry, topK int) []result.Result {
	if topK < 1 {
		topK = DefaultTopK
	}

	scored := make([]result.Result, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, result.New(c.ID, CosineSimilarity(query, c.Vector), 0))
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score() != scored[j].Score() {
			return scored[i].Score() > scored[j].Score()
		}
		return scored[i].ID() < scored[j].ID()
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	ranked := make([]result.Result, len(scored))
	for i, r := range scored {
		ranked[i] = result.New(r.ID(), r.Score(), i+1)
	}
	return ranked
}
