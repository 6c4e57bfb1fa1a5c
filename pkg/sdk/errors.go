package menudex

import "github.com/kailas-cloud/menudex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrItemNotFound         = domain.ErrItemNotFound
	ErrVectorDimMismatch    = domain.ErrVectorDimMismatch
	ErrInconsistentState    = domain.ErrInconsistentState
	ErrProviderTimeout      = domain.ErrProviderTimeout
	ErrProviderRateLimited  = domain.ErrProviderRateLimited
	ErrProviderInvalidInput = domain.ErrProviderInvalidInput
	ErrProviderUnavailable  = domain.ErrProviderUnavailable
)

// IsRetryable reports whether a provider error is worth retrying.
func IsRetryable(err error) bool { return domain.IsRetryable(err) }
