package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrProvider     = errors.New("provider error")
	ErrInternal     = errors.New("internal error")
)

// Whole-run fatal conditions. Everything else aborts at most one AOI.
var (
	ErrMissingCredential = errors.New("API key environment variable is not set")
	ErrNoAOIRecords      = errors.New("AOI file has no features")
)

// GeometryError reports an AOI geometry that cannot be used for searching
// or clipping, even after one repair attempt.
type GeometryError struct {
	Reason   string // What is wrong with the geometry
	GeomType string // Geometry type as received, if known
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	if e.GeomType != "" {
		return fmt.Sprintf("geometry error (%s): %s", e.GeomType, e.Reason)
	}
	return fmt.Sprintf("geometry error: %s", e.Reason)
}

// Unwrap returns the underlying error type.
func (e *GeometryError) Unwrap() error {
	return ErrInvalidInput
}

// SearchError reports a rejected catalog search, surfacing the provider's
// status code and response body for diagnostics.
type SearchError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("quick-search failed: %d %s", e.StatusCode, truncate(e.Body, 512))
}

// Unwrap returns the underlying error type.
func (e *SearchError) Unwrap() error {
	return ErrProvider
}

// OrderSubmitError reports an order submission that was not acknowledged
// with an explicit accepted status.
type OrderSubmitError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *OrderSubmitError) Error() string {
	return fmt.Sprintf("order submission failed: %d %s", e.StatusCode, truncate(e.Body, 512))
}

// Unwrap returns the underlying error type.
func (e *OrderSubmitError) Unwrap() error {
	return ErrProvider
}

// OrderPollError reports a failed order status fetch. It is fatal for the
// whole order, not retried at this layer.
type OrderPollError struct {
	OrderID string
	Err     error
}

// Error implements the error interface.
func (e *OrderPollError) Error() string {
	return fmt.Sprintf("polling order %s: %v", e.OrderID, e.Err)
}

// Unwrap returns the underlying error.
func (e *OrderPollError) Unwrap() error {
	return e.Err
}

// OrderFailedError reports an order that reached the failed terminal state.
// Payload carries the provider's full status document.
type OrderFailedError struct {
	OrderID string
	Payload string
}

// Error implements the error interface.
func (e *OrderFailedError) Error() string {
	return fmt.Sprintf("order %s failed: %s", e.OrderID, truncate(e.Payload, 1024))
}

// Unwrap returns the underlying error type.
func (e *OrderFailedError) Unwrap() error {
	return ErrProvider
}

// NoResultsError reports a completed order without result files. The
// provider contract requires at least one file on success.
type NoResultsError struct {
	OrderID string
}

// Error implements the error interface.
func (e *NoResultsError) Error() string {
	return fmt.Sprintf("order %s completed without result files", e.OrderID)
}

// Unwrap returns the underlying error type.
func (e *NoResultsError) Unwrap() error {
	return ErrProvider
}

// ReadError reports a failure reading an AOI input file.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("reading AOI file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}

// truncate shortens s to at most n bytes for log-safe error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
