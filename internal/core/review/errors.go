package review

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced entity id is absent. Surfaced to the
// caller as-is; never retried.
type NotFoundError struct {
	Entity string // "trace", "tag", "session"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError indicates malformed or out-of-range input. The operation
// is never partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError indicates a uniqueness violation, e.g. a duplicate tag name.
type ConflictError struct {
	Resource string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Value)
}

// ExternalDependencyError indicates a network, timeout, or non-2xx failure
// from an external collaborator. The whole external call is retryable; no
// partial local writes are left behind.
type ExternalDependencyError struct {
	System string // "braintrust", "openai"
	Op     string
	Err    error
}

func (e *ExternalDependencyError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.System, e.Op, e.Err)
}

func (e *ExternalDependencyError) Unwrap() error {
	return e.Err
}

// TranslationError indicates an external payload did not match the expected
// shape. Where records are batched it is surfaced per-item, not fatally.
type TranslationError struct {
	Source string
	Key    string // record id or field that failed to translate
	Err    error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// CascadeError reports a tag cascade (delete/merge) that failed partway
// through its trace rewrites. Applied lists traces already rewritten,
// Remaining the ones still holding the old reference. Re-running the cascade
// is safe: rewriting an already-clean trace is a no-op.
type CascadeError struct {
	Op        string // "untag", "merge"
	TagID     string
	Applied   []string
	Remaining []string
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s cascade for tag %s failed (rewritten: [%s], pending: [%s]): %v",
		e.Op, e.TagID, strings.Join(e.Applied, ", "), strings.Join(e.Remaining, ", "), e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
