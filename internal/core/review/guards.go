package review

import (
	"fmt"
	"unicode/utf8"
)

// Tag field length bounds.
const (
	TagNameMinLen        = 2
	TagNameMaxLen        = 30
	TagDescriptionMinLen = 20
	TagDescriptionMaxLen = 200
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to a ValidationError if not allowed.
func (r GuardResult) Error(field string) error {
	if r.Allowed {
		return nil
	}
	return &ValidationError{Field: field, Reason: r.Reason}
}

// CheckTagName evaluates the tag name length constraint.
func CheckTagName(name string) GuardResult {
	n := utf8.RuneCountInString(name)
	if n < TagNameMinLen || n > TagNameMaxLen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("must be %d-%d characters, got %d", TagNameMinLen, TagNameMaxLen, n),
		}
	}
	return GuardResult{Allowed: true}
}

// CheckTagDescription evaluates the tag description length constraint.
func CheckTagDescription(desc string) GuardResult {
	n := utf8.RuneCountInString(desc)
	if n < TagDescriptionMinLen || n > TagDescriptionMaxLen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("must be %d-%d characters, got %d", TagDescriptionMinLen, TagDescriptionMaxLen, n),
		}
	}
	return GuardResult{Allowed: true}
}

// MergeContext provides context for tag merge guards.
type MergeContext struct {
	SourceID     string
	TargetID     string
	SourceExists bool
	TargetExists bool
}

// CanMergeTags evaluates whether two tags can be merged.
// Rules:
// - Source and target must be different tags
// - Both must exist (existence failures are reported as not-found by the
//   caller; the guard only rejects the self-merge)
func CanMergeTags(ctx MergeContext) GuardResult {
	if ctx.SourceID == ctx.TargetID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot merge tag %s into itself", ctx.SourceID),
		}
	}
	return GuardResult{Allowed: true}
}

// AnnotateContext provides context for annotation guards.
type AnnotateContext struct {
	TraceID string
	Verdict Verdict
}

// CanAnnotate evaluates whether an annotation can be applied.
// Rules:
// - Verdict must be set (clearing goes through Clear, not an unset annotate),
//   which keeps reviewed == (verdict != unset) true by construction
func CanAnnotate(ctx AnnotateContext) GuardResult {
	if ctx.Verdict == VerdictUnset {
		return GuardResult{
			Allowed: false,
			Reason:  "verdict is required (use clear to remove a review)",
		}
	}
	return GuardResult{Allowed: true}
}

// ReviewFieldsConsistent reports whether a trace's review fields satisfy the
// core invariant: reviewed iff verdict set, reviewed_at set iff reviewed.
func ReviewFieldsConsistent(reviewed bool, verdict Verdict, reviewedAt string) bool {
	if reviewed != (verdict != VerdictUnset) {
		return false
	}
	return reviewed == (reviewedAt != "")
}
