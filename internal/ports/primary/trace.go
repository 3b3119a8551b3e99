package primary

import "context"

// TraceService defines the primary port for trace store operations.
type TraceService interface {
	// ImportTraces upserts a batch of traces by id. The import is
	// all-or-nothing: every record is validated before any write, and the
	// first malformed record fails the whole batch.
	ImportTraces(ctx context.Context, req ImportTracesRequest) (*ImportTracesResponse, error)

	// GetTrace retrieves a trace by ID.
	GetTrace(ctx context.Context, traceID string) (*Trace, error)

	// ListTraces retrieves traces matching all provided filters, in
	// insertion order.
	ListTraces(ctx context.Context, filter TraceFilter) ([]*Trace, error)

	// DeleteTrace deletes a trace.
	DeleteTrace(ctx context.Context, traceID string) error
}

// ImportTracesRequest contains the trace batch to import.
type ImportTracesRequest struct {
	Traces []*Trace
}

// ImportTracesResponse contains the result of an import.
type ImportTracesResponse struct {
	ImportedCount int
}

// TraceFilter contains filter options for listing traces. Nil pointers mean
// "no filter on this field".
type TraceFilter struct {
	Reviewed *bool
	Verdict  *string
}

// Trace represents a trace entity at the port boundary: one recorded agent
// interaction plus its mutable review fields.
type Trace struct {
	ID           string
	UserInput    string
	AgentOutput  string
	SystemPrompt string
	Steps        []TraceStep
	Metadata     map[string]any

	Reviewed   bool
	Verdict    string
	OpenCode   string
	TagRefs    []string
	ReviewerID string
	ReviewedAt string
}

// TraceStep is one intermediate step of a trace (tool call, retrieval,
// model response).
type TraceStep struct {
	Type      string
	Content   string
	Metadata  map[string]any
	Timestamp string
}
