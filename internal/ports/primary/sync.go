package primary

import "context"

// SyncService defines the primary port for the external sync boundary:
// pulling traces from the external source and pushing reviewed annotations
// back as feedback.
type SyncService interface {
	// ImportFromSource fetches one page from the external trace source,
	// translates it, and applies it to the trace store as a single local
	// update. Per-record translation failures are isolated and reported;
	// they do not fail the page.
	ImportFromSource(ctx context.Context, req SyncImportRequest) (*SyncImportResponse, error)

	// SubmitFeedback submits the review outcome of the given traces to
	// the external feedback sink. Ineligible traces (missing, not yet
	// reviewed) are skipped with a per-item reason; zero eligible items
	// is not an error.
	SubmitFeedback(ctx context.Context, traceIDs []string) (*SubmitFeedbackResponse, error)
}

// SyncImportRequest contains paging parameters for an external fetch.
type SyncImportRequest struct {
	Cursor string
	Limit  int
}

// SyncImportResponse contains the result of one fetched page.
type SyncImportResponse struct {
	ImportedCount int
	Traces        []*Trace
	NextCursor    string
	Failures      []SyncFailure
}

// SubmitFeedbackResponse contains the result of a feedback submission.
type SubmitFeedbackResponse struct {
	ExportedCount int
	Failures      []SyncFailure
}

// SyncFailure is a per-item failure reason.
type SyncFailure struct {
	TraceID string
	Reason  string
}
