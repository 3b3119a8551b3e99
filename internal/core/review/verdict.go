// Package review contains the pure business logic of the review core:
// verdict classification, session counter derivation, and validation guards.
// Nothing in this package touches persistence or external collaborators.
package review

import "fmt"

// Verdict is the review outcome recorded on a trace.
type Verdict string

const (
	// VerdictUnset means the trace has not been judged.
	VerdictUnset Verdict = ""
	// VerdictPass marks the trace as acceptable.
	VerdictPass Verdict = "pass"
	// VerdictFail marks the trace as a failure.
	VerdictFail Verdict = "fail"
	// VerdictDefer postpones judgment on the trace.
	VerdictDefer Verdict = "defer"
)

// ParseVerdict validates a verdict string. The empty string is the unset
// verdict and is valid.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictUnset, VerdictPass, VerdictFail, VerdictDefer:
		return Verdict(s), nil
	}
	return VerdictUnset, fmt.Errorf("unknown verdict %q (expected pass, fail, or defer)", s)
}

// Session modes.
const (
	ModeOpenCoding  = "open_coding"
	ModeAxialCoding = "axial_coding"
	ModeCombined    = "combined"
)

// ValidMode reports whether mode is a known session mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeOpenCoding, ModeAxialCoding, ModeCombined:
		return true
	}
	return false
}

// Session sources.
const (
	SourceUpload     = "upload"
	SourceBraintrust = "braintrust"
	SourceDemo       = "demo"
)

// ValidSource reports whether source is a known session source.
func ValidSource(source string) bool {
	switch source {
	case SourceUpload, SourceBraintrust, SourceDemo:
		return true
	}
	return false
}
