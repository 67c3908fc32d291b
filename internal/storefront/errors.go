package storefront

import (
	"errors"
	"fmt"
)

// ErrResourceAbsent marks a resource that answered with a non-retryable 4xx.
var ErrResourceAbsent = errors.New("resource absent")

// InvalidURLError reports malformed user input. It is never retried.
type InvalidURLError struct {
	Input  string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// NotAStoreError reports that a site is not hosted on the storefront platform.
type NotAStoreError struct {
	URL string
}

func (e *NotAStoreError) Error() string {
	return fmt.Sprintf("%s is not a storefront", e.URL)
}

// FetchError reports a resource that could not be fetched.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed after %d attempt(s) with status %d: %v", e.URL, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Absent reports whether the resource answered with a non-retryable 4xx.
func (e *FetchError) Absent() bool {
	return errors.Is(e.Err, ErrResourceAbsent)
}

// PartialExtractionWarning records an optional resource that could not be
// extracted. It is logged and carried in the result, never returned as an error.
type PartialExtractionWarning struct {
	Field string
	URL   string
	Err   error
}

func (w PartialExtractionWarning) Error() string {
	if w.Err == nil {
		return fmt.Sprintf("%s not found at %s", w.Field, w.URL)
	}
	return fmt.Sprintf("%s not found at %s: %v", w.Field, w.URL, w.Err)
}

func (w PartialExtractionWarning) Unwrap() error {
	return w.Err
}

// SchemaViolationError reports a profile or report that breaks the output contract.
type SchemaViolationError struct {
	Path   string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}
