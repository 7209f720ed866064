package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across layers.
var (
	ErrValidation        = errors.New("validation error")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrStoreUnavailable  = errors.New("cache/counter store unavailable")
	ErrEngineUnavailable = errors.New("search engine unavailable")
	ErrTransientFetch    = errors.New("transient fetch error")
)

// ValidationError represents a missing or malformed request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RateLimitError is returned when an identity exceeded its request quota.
type RateLimitError struct {
	Identity string
	Limit    int64
}

func (e *RateLimitError) Error() string {
	return "Rate limit exceeded"
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// UpstreamUnavailableError represents an unreachable backing store or engine.
type UpstreamUnavailableError struct {
	Component string
	Op        string
	Err       error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %s: %v", e.Component, e.Op, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

func (e *UpstreamUnavailableError) Is(target error) bool {
	switch e.Component {
	case ComponentEngine:
		return target == ErrEngineUnavailable
	default:
		return target == ErrStoreUnavailable
	}
}

// Upstream component names.
const (
	ComponentEngine = "search engine"
	ComponentRedis  = "redis"
)

// NewStoreUnavailable wraps a cache/counter store failure.
func NewStoreUnavailable(op string, err error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{Component: ComponentRedis, Op: op, Err: err}
}

// SearchEngineError represents an error from the search engine layer.
type SearchEngineError struct {
	Op  string
	Err string
}

func (e *SearchEngineError) Error() string {
	return e.Op + ": " + e.Err
}

func (e *SearchEngineError) Is(target error) bool {
	return target == ErrEngineUnavailable
}

// DriverError represents an error from the driver layer.
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

// TransientFetchError marks an upstream feed failure worth retrying
// (network failure, timeout, throttling or a 5xx answer).
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

func (e *TransientFetchError) Is(target error) bool {
	return target == ErrTransientFetch
}

// IsTransient reports whether err should be retried by the ingestion loop.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}
