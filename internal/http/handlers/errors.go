// Package handlers defines HTTP-layer error codes used across all API
// endpoints. The codes are lowercase snake_case and stable: clients branch
// on them programmatically, messages are for humans.
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "rate_limited"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeUpstreamFailed   = "upstream_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
