package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeAccessRestricted represents the site-imposed block condition.
	// It is session fatal: every handler propagates it unchanged and the
	// session runner is the only consumer.
	ErrorTypeAccessRestricted ErrorType = "access_restricted"
	// ErrorTypeNotFound represents a missing element or an expired wait.
	// Unit-local: the current unit is skipped, traversal continues.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeExtraction represents a per-table extraction failure,
	// recorded inside the table results rather than aborting the product
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeStore represents a document store failure. Fatal to the
	// current unit only; the skip set is not updated so the unit retries
	// on the next run.
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlError represents a crawl-specific error
type CrawlError struct {
	Type    ErrorType
	Page    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Page, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Page, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsSessionFatal returns true if the error must tear down the whole
// session instead of only the current unit
func (e *CrawlError) IsSessionFatal() bool {
	return e.Type == ErrorTypeAccessRestricted
}

// New creates a new CrawlError
func New(errType ErrorType, page, message string, err error) *CrawlError {
	return &CrawlError{
		Type:    errType,
		Page:    page,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewAccessRestricted creates a new access-restricted error
func NewAccessRestricted(page string) *CrawlError {
	return New(ErrorTypeAccessRestricted, page, "access has been restricted by site", nil)
}

// NewNotFound creates a new element-not-found/timeout error
func NewNotFound(page, message string, err error) *CrawlError {
	return New(ErrorTypeNotFound, page, message, err)
}

// NewExtraction creates a new table extraction error
func NewExtraction(page, message string, err error) *CrawlError {
	return New(ErrorTypeExtraction, page, message, err)
}

// NewStore creates a new document store error
func NewStore(page, message string, err error) *CrawlError {
	return New(ErrorTypeStore, page, message, err)
}

// NewValidation creates a new validation error
func NewValidation(page, message string) *CrawlError {
	return New(ErrorTypeValidation, page, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsAccessRestricted reports whether err carries the session-fatal
// access-restricted condition anywhere in its chain
func IsAccessRestricted(err error) bool {
	var ce *CrawlError
	if stderrors.As(err, &ce) {
		return ce.Type == ErrorTypeAccessRestricted
	}
	return false
}
