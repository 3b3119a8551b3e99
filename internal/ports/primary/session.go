package primary

import "context"

// SessionService defines the primary port for session aggregation. Sessions
// reference traces held by the trace store; all counters are server-derived
// from trace state and never trusted from input.
type SessionService interface {
	// CreateSession creates a session from a trace batch and a tag
	// registry snapshot, dual-writing the trace bodies into the trace
	// store.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error)

	// GetSession retrieves a session with trace bodies rehydrated from
	// the trace store.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ListSessions retrieves summaries of all sessions.
	ListSessions(ctx context.Context) ([]*SessionSummary, error)

	// ReplaceSession replaces a session wholesale, recomputing counters
	// from the supplied traces and dual-writing them into the trace
	// store.
	ReplaceSession(ctx context.Context, sessionID string, req ReplaceSessionRequest) (*Session, error)

	// DeleteSession deletes a session. Traces stay in the trace store.
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionConfig carries the session display and provenance settings.
type SessionConfig struct {
	Mode           string // open_coding, axial_coding or combined
	RandomizeOrder bool
	Source         string // upload, braintrust or demo
}

// CreateSessionRequest contains parameters for creating a session.
type CreateSessionRequest struct {
	Name string // defaulted from the creation timestamp when empty
	// Traces are the session's trace batch, written through to the trace
	// store.
	Traces []*Trace
	// TagSnapshot pins the taxonomy at creation time. When nil the
	// current registry contents are captured.
	TagSnapshot []*Tag
	Config      SessionConfig
}

// ReplaceSessionRequest contains the full new session body. Any counters
// computed by the caller are ignored.
type ReplaceSessionRequest struct {
	Name        string
	Traces      []*Trace
	TagSnapshot []*Tag
	Config      SessionConfig
}

// Session represents a review session at the port boundary.
type Session struct {
	ID          string
	Name        string
	Traces      []*Trace
	TagSnapshot []*Tag
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

// SessionSummary is the listing projection of a session.
type SessionSummary struct {
	ID            string
	Name          string
	CreatedAt     string
	TotalTraces   int
	ReviewedCount int
	Source        string
}
