package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewSkipped creates a result for an item whose fingerprint was unchanged
// (zero provider calls made).
func NewSkipped(id string) Result { return Result{id: id, status: StatusSkipped} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Report aggregates per-item results of a bulk reconciliation. The batch
// never fails as a whole; failed items are listed here and everything
// already processed stays indexed.
type Report struct {
	results []Result
	removed []string
}

// NewReport creates a report from per-item results and removed orphan ids.
func NewReport(results []Result, removed []string) Report {
	return Report{results: results, removed: removed}
}

// Results returns the per-item outcomes in catalog order.
func (r Report) Results() []Result { return r.results }

// Removed returns ids whose orphaned vectors were deleted.
func (r Report) Removed() []string { return r.removed }

// FailedIDs returns the ids that failed, in catalog order.
func (r Report) FailedIDs() []string {
	var ids []string
	for _, res := range r.results {
		if res.status == StatusError {
			ids = append(ids, res.id)
		}
	}
	return ids
}

// Embedded returns how many items required a fresh provider call.
func (r Report) Embedded() int {
	n := 0
	for _, res := range r.results {
		if res.status == StatusOK {
			n++
		}
	}
	return n
}

// Skipped returns how many items were up to date.
func (r Report) Skipped() int {
	n := 0
	for _, res := range r.results {
		if res.status == StatusSkipped {
			n++
		}
	}
	return n
}
