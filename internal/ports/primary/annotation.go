package primary

import "context"

// AnnotationService defines the primary port for the annotation workflow:
// applying, updating and clearing a single trace's review verdict.
type AnnotationService interface {
	// Annotate sets a trace's review fields. The tag id list replaces the
	// existing refs wholesale; tag ids absent from the registry are
	// accepted as-is (readers tolerate dangling refs).
	Annotate(ctx context.Context, req AnnotateRequest) (*Trace, error)

	// Clear resets all review fields on a trace to their unset defaults.
	Clear(ctx context.Context, traceID string) (*Trace, error)
}

// AnnotateRequest contains parameters for annotating a trace.
type AnnotateRequest struct {
	TraceID    string
	Verdict    string // pass, fail or defer; never unset
	OpenCode   string
	TagIDs     []string
	ReviewerID string
}
