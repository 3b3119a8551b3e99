// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// persistence and external systems.
package secondary

import "context"

// TagRepository defines the secondary port for axial tag persistence.
// Implementations return *review.NotFoundError when an id is absent.
type TagRepository interface {
	// Create persists a new tag.
	Create(ctx context.Context, tag *TagRecord) error

	// GetByID retrieves a tag by its ID.
	GetByID(ctx context.Context, id string) (*TagRecord, error)

	// List retrieves all live tags in creation order.
	List(ctx context.Context) ([]*TagRecord, error)

	// Update updates an existing tag.
	Update(ctx context.Context, tag *TagRecord) error

	// Delete removes a tag from persistence.
	Delete(ctx context.Context, id string) error
}

// TagRecord represents an axial tag as stored in persistence.
type TagRecord struct {
	ID          string
	Name        string
	Description string
	Color       string
	UsageCount  int
	Examples    []string
	CreatedAt   string
}

// TraceRepository defines the secondary port for trace persistence.
// The trace store is the single source of truth for trace review state.
type TraceRepository interface {
	// Upsert creates a trace or replaces an existing one by id (last write
	// wins). Insertion order of first writes is preserved for listing.
	Upsert(ctx context.Context, trace *TraceRecord) error

	// GetByID retrieves a trace by its ID.
	GetByID(ctx context.Context, id string) (*TraceRecord, error)

	// List retrieves traces matching the given filters (AND semantics),
	// in insertion order.
	List(ctx context.Context, filters TraceFilters) ([]*TraceRecord, error)

	// ListByTag retrieves traces whose tag refs contain tagID, in
	// insertion order.
	ListByTag(ctx context.Context, tagID string) ([]*TraceRecord, error)

	// CountTagRefs returns the number of traces whose tag refs contain
	// tagID.
	CountTagRefs(ctx context.Context, tagID string) (int, error)

	// Delete removes a trace from persistence.
	Delete(ctx context.Context, id string) error
}

// TraceRecord represents a trace as stored in persistence.
type TraceRecord struct {
	ID           string
	UserInput    string
	AgentOutput  string
	SystemPrompt string
	Steps        []TraceStepRecord
	Metadata     map[string]any

	// Review fields. Invariant: Reviewed == (Verdict != "") and
	// ReviewedAt is set iff Reviewed.
	Reviewed   bool
	Verdict    string
	OpenCode   string
	TagRefs    []string
	ReviewerID string
	ReviewedAt string
}

// TraceStepRecord is one intermediate step of a trace.
type TraceStepRecord struct {
	Type      string
	Content   string
	Metadata  map[string]any
	Timestamp string
}

// TraceFilters contains filter options for querying traces. Nil pointers
// mean "no filter on this field".
type TraceFilters struct {
	Reviewed *bool
	Verdict  *string
}

// SessionRepository defines the secondary port for session persistence.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *SessionRecord) error

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id string) (*SessionRecord, error)

	// List retrieves all sessions in creation order.
	List(ctx context.Context) ([]*SessionRecord, error)

	// Update replaces an existing session.
	Update(ctx context.Context, session *SessionRecord) error

	// Delete removes a session from persistence.
	Delete(ctx context.Context, id string) error
}

// SessionRecord represents a review session as stored in persistence.
// Sessions reference traces by id; trace bodies live only in the trace
// store, so there is no second copy to drift. Counters are derived from the
// referenced traces on every mutation, never patched incrementally.
type SessionRecord struct {
	ID          string
	Name        string
	TraceIDs    []string
	TagSnapshot []TagRecord
	Mode        string

	TotalTraces   int
	ReviewedCount int
	PassedCount   int
	FailedCount   int
	DeferredCount int

	RandomizeOrder bool
	Source         string
	CreatedAt      string
	UpdatedAt      string
}
