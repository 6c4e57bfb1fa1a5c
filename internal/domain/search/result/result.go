// Package result defines the similarity search hit produced by ranking.
package result

// Result is a single similarity search hit. Produced fresh per query,
// never persisted.
type Result struct {
	id    string
	score float64
	rank  int
}

// New creates a search result.
func New(id string, score float64, rank int) Result {
	return Result{id: id, score: score, rank: rank}
}

// ID returns the item identifier.
func (r *Result) ID() string { return r.id }

// Score returns the cosine similarity in [-1, 1].
func (r *Result) Score() float64 { return r.score }

// Rank returns the 1-based rank position.
func (r *Result) Rank() int { return r.rank }
