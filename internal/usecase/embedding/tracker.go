package embedding

import "sync/atomic"

// Tracker accumulates provider usage for cost accounting. The reference
// workload averages roughly 80 tokens per item document, priced per token,
// so totals here translate directly to spend.
type Tracker struct {
	requests    atomic.Int64
	tokens      atomic.Int64
	costPerMtok float64
}

// NewTracker creates a usage tracker. costPerMillionTokens may be 0 when
// cost reporting is not needed.
func NewTracker(costPerMillionTokens float64) *Tracker {
	return &Tracker{costPerMtok: costPerMillionTokens}
}

// Record adds one request and its token usage.
func (t *Tracker) Record(tokens int) {
	t.requests.Add(1)
	t.tokens.Add(int64(tokens))
}

// Requests returns the total number of provider requests.
func (t *Tracker) Requests() int64 { return t.requests.Load() }

// Tokens returns the total tokens consumed.
func (t *Tracker) Tokens() int64 { return t.tokens.Load() }

// EstimatedCost returns the accumulated spend in the configured currency.
func (t *Tracker) EstimatedCost() float64 {
	return float64(t.tokens.Load()) / 1_000_000 * t.costPerMtok
}
