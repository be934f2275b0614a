package logistics

import "fmt"

// ============================================================================
// LOGISTICS ERROR CODES
// ============================================================================
// These constants mirror domain error codes to avoid circular imports.
// The handler layer maps these to HTTP status codes.

const (
	codeInternal    = "internal"
	codeInvalid     = "invalid"
	codeNotFound    = "not_found"
	codeUnavailable = "unavailable"
)

// ============================================================================
// LOGISTICS ERROR TYPE
// ============================================================================

// ProviderError represents a courier-specific error with a code and message.
// It implements the domain.Error interface pattern for consistent HTTP status mapping.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ProviderError) ErrorCode() string {
	return e.Code
}

// newProviderError creates a new courier error.
func newProviderError(code, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// ============================================================================
// LOGISTICS DOMAIN ERRORS
// ============================================================================

var (
	// ErrMissingAPIKey is returned when the courier API key is missing.
	ErrMissingAPIKey = newProviderError(codeInternal, "Courier API key is required")

	// ErrMissingBaseURL is returned when the courier API base URL is missing.
	ErrMissingBaseURL = newProviderError(codeInternal, "Courier API base URL is required")

	// ErrMissingDestinationBlock is returned when an order has no destination block ID.
	ErrMissingDestinationBlock = newProviderError(codeInvalid, "Destination block ID is required")

	// ErrMissingPickup is returned when pickup identity or location is incomplete.
	ErrMissingPickup = newProviderError(codeInvalid, "Pickup contact and location are required")

	// ErrNoPackages is returned when an order carries no packages.
	ErrNoPackages = newProviderError(codeInvalid, "At least one package is required")

	// ErrMalformedResponse is returned when a nominally successful courier
	// response lacks the courier order ID.
	ErrMalformedResponse = newProviderError(codeUnavailable, "Courier response missing order ID")

	// ErrOrderNotFound is returned when tracking an unknown courier order.
	ErrOrderNotFound = newProviderError(codeNotFound, "Courier order not found")
)

// APIError carries the HTTP status and body of a failed courier call so
// submission failures can be logged with full provider detail.
type APIError struct {
	StatusCode int
	Endpoint   string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("courier API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Detail)
}
