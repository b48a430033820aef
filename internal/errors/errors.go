package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/wallet-roaster/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategoryValidation represents request validation errors
	CategoryValidation ErrorCategory = "validation"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryProvider represents RPC provider errors
	CategoryProvider ErrorCategory = "provider"
	// CategoryStore represents leaderboard blob store errors
	CategoryStore ErrorCategory = "store"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
)

// Error codes
const (
	CodeInvalidIdentifier      = "INVALID_IDENTIFIER"
	CodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	CodeInvalidField           = "INVALID_FIELD"
	CodeTransientProviderError = "TRANSIENT_PROVIDER_ERROR"
	CodeAllEndpointsExhausted  = "ALL_ENDPOINTS_EXHAUSTED"
	CodeStoreUnavailable       = "STORE_UNAVAILABLE"
	CodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	CodeInternalError          = "INTERNAL_ERROR"
)

// Sentinels usable with errors.Is against any CategorizedError of the same code.
var (
	ErrInvalidIdentifier      = &CategorizedError{Code: CodeInvalidIdentifier}
	ErrMissingRequiredField   = &CategorizedError{Code: CodeMissingRequiredField}
	ErrInvalidField           = &CategorizedError{Code: CodeInvalidField}
	ErrTransientProviderError = &CategorizedError{Code: CodeTransientProviderError}
	ErrAllEndpointsExhausted  = &CategorizedError{Code: CodeAllEndpointsExhausted}
	ErrStoreUnavailable       = &CategorizedError{Code: CodeStoreUnavailable}
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// Is matches on error code so callers can compare against the package sentinels.
func (e *CategorizedError) Is(target error) bool {
	t, ok := target.(*CategorizedError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewInvalidIdentifierError creates an error for a malformed account key
func NewInvalidIdentifierError(address string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidIdentifier,
		Message:    fmt.Sprintf("invalid wallet address: %q", address),
		Details: map[string]interface{}{
			"address": address,
		},
		Cause: cause,
	}
}

// NewMissingRequiredFieldError creates an error for an incomplete request body
func NewMissingRequiredFieldError(field string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       CodeMissingRequiredField,
		Message:    fmt.Sprintf("missing required field: %s", field),
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

// NewInvalidFieldError creates an error for a field outside its allowed range
func NewInvalidFieldError(field string, value interface{}, constraint string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidField,
		Message:    fmt.Sprintf("invalid %s: must be %s", field, constraint),
		Details: map[string]interface{}{
			"field": field,
			"value": value,
		},
	}
}

// NewTransientProviderError wraps a single failed attempt against one endpoint
func NewTransientProviderError(endpoint string, attempt int, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusBadGateway,
		Code:       CodeTransientProviderError,
		Message:    fmt.Sprintf("endpoint %s failed on attempt %d", endpoint, attempt),
		Details: map[string]interface{}{
			"endpoint": endpoint,
			"attempt":  attempt,
		},
		Cause: cause,
	}
}

// NewAllEndpointsExhaustedError reports that every endpoint used up its retry budget
func NewAllEndpointsExhaustedError(endpoints, attempts int, lastErr error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusBadGateway,
		Code:       CodeAllEndpointsExhausted,
		Message:    fmt.Sprintf("failed to fetch wallet data from all %d endpoints after %d attempts", endpoints, attempts),
		Details: map[string]interface{}{
			"endpoints": endpoints,
			"attempts":  attempts,
		},
		Cause: lastErr,
	}
}

// NewStoreUnavailableError wraps a blob store failure
func NewStoreUnavailableError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryStore,
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeStoreUnavailable,
		Message:    fmt.Sprintf("leaderboard store unavailable during %s", operation),
		Details: map[string]interface{}{
			"operation": operation,
		},
		Cause: cause,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimitExceeded,
		Message:    "rate limit exceeded",
		Details: map[string]interface{}{
			"retryAfter": retryAfter,
		},
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    message,
		Cause:      cause,
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	var svcErr *types.ServiceError
	if stderrors.As(err, &svcErr) {
		return &CategorizedError{
			Category:   CategorySystem,
			StatusCode: http.StatusInternalServerError,
			Code:       svcErr.Code,
			Message:    svcErr.Message,
			Details:    svcErr.Details,
		}
	}

	return NewInternalError("unexpected error", err)
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether an error should consume retry budget
// rather than abort the fetch.
func IsRetryable(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	switch catErr.Category {
	case CategoryProvider, CategoryStore:
		return catErr.Code != CodeAllEndpointsExhausted
	case CategorySystem:
		// raw network and decoding errors land here
		return true
	default:
		return false
	}
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}
	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}
