package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound signals a missing catalog item.
	ErrItemNotFound = errors.New("item not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInconsistentState signals a stored vector whose fingerprint or
	// dimension no longer matches the store invariants.
	ErrInconsistentState = errors.New("inconsistent vector state")

	// ErrProviderTimeout signals an embedding provider timeout.
	ErrProviderTimeout = errors.New("embedding provider timeout")
	// ErrProviderRateLimited signals an embedding provider rate limit hit.
	ErrProviderRateLimited = errors.New("embedding provider rate limited")
	// ErrProviderInvalidInput signals input rejected by the embedding provider.
	ErrProviderInvalidInput = errors.New("embedding provider invalid input")
	// ErrProviderUnavailable signals any other embedding provider failure.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// IsProviderError reports whether err belongs to the embedding provider
// error taxonomy. Transport logging branches on it; retry policies branch
// on the concrete sentinel instead.
func IsProviderError(err error) bool {
	return errors.Is(err, ErrProviderTimeout) ||
		errors.Is(err, ErrProviderRateLimited) ||
		errors.Is(err, ErrProviderInvalidInput) ||
		errors.Is(err, ErrProviderUnavailable)
}

// IsRetryable reports whether a provider error is worth retrying.
// Invalid input never is; timeouts and rate limits are.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrProviderRateLimited)
}

// InconsistentStateError wraps ErrInconsistentState with the offending item id.
type InconsistentStateError struct {
	ID     string
	Detail string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("%s: item %s: %s", ErrInconsistentState.Error(), e.ID, e.Detail)
}

func (e *InconsistentStateError) Unwrap() error { return ErrInconsistentState }

// NewInconsistentState creates an inconsistent state error for an item.
func NewInconsistentState(id, detail string) error {
	return &InconsistentStateError{ID: id, Detail: detail}
}
