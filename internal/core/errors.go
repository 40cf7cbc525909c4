package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMalformedRecord = errors.New("malformed record")
	ErrNoOrganization  = errors.New("no organization")
)

// FetchError reports that one domain's data source failed. It aborts the
// whole snapshot; the condition is usually transient so callers may retry.
type FetchError struct {
	Domain Domain
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Domain, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Temporary marks the failure as retryable.
func (e *FetchError) Temporary() bool { return true }

// ValidationError describes a record rejected at the store boundary.
type ValidationError struct {
	Domain   Domain
	RecordID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s record %q: %s %s", e.Domain, e.RecordID, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrMalformedRecord }

func malformed(domain Domain, id, field, reason string) error {
	return &ValidationError{Domain: domain, RecordID: id, Field: field, Reason: reason}
}
