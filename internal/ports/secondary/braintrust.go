package secondary

import "context"

// TraceSource defines the secondary port for the external trace source.
// Records come back paged with an opaque continuation cursor.
type TraceSource interface {
	// FetchPage retrieves one page of external trace records. An empty
	// cursor starts from the beginning.
	FetchPage(ctx context.Context, cursor string, limit int) (*ExternalTracePage, error)
}

// ExternalTracePage is one page of records from the external source.
type ExternalTracePage struct {
	Records    []ExternalTraceRecord
	NextCursor string
}

// ExternalTraceRecord is an opaque record from the external trace source.
// Input and Output keep whatever JSON shape the source produced; Extra
// holds top-level fields the adapter does not recognize, preserved
// verbatim for forward compatibility.
type ExternalTraceRecord struct {
	ID       string
	Input    any
	Output   any
	Created  string
	Metadata map[string]any
	Scores   map[string]float64
	Extra    map[string]any
}

// FeedbackSink defines the secondary port for the external annotation sink.
type FeedbackSink interface {
	// SubmitFeedback sends a batch of feedback items. The call is atomic
	// from the core's perspective: on error no item is considered
	// delivered.
	SubmitFeedback(ctx context.Context, items []FeedbackItem) error
}

// FeedbackItem is one annotation in the external sink's schema. Scores is
// omitted from the wire payload entirely when empty (a deferred verdict
// emits no score, not a null score).
type FeedbackItem struct {
	ID       string             `json:"id"`
	Scores   map[string]float64 `json:"scores,omitempty"`
	Comment  string             `json:"comment"`
	Metadata map[string]any     `json:"metadata"`
}
