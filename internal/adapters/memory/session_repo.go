package memory

import (
	"context"
	"sync"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// SessionRepository implements secondary.SessionRepository in memory.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*secondary.SessionRecord
	order    []string
}

// NewSessionRepository creates a new in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*secondary.SessionRecord)}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return &review.ConflictError{Resource: "session", Value: session.ID}
	}
	r.sessions[session.ID] = copySession(session)
	r.order = append(r.order, session.ID)
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, &review.NotFoundError{Entity: "session", ID: id}
	}
	return copySession(session), nil
}

// List retrieves all sessions in creation order.
func (r *SessionRepository) List(ctx context.Context) ([]*secondary.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*secondary.SessionRecord
	for _, id := range r.order {
		if session, ok := r.sessions[id]; ok {
			sessions = append(sessions, copySession(session))
		}
	}
	return sessions, nil
}

// Update replaces an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *secondary.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return &review.NotFoundError{Entity: "session", ID: session.ID}
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return &review.NotFoundError{Entity: "session", ID: id}
	}
	delete(r.sessions, id)
	return nil
}

func copySession(s *secondary.SessionRecord) *secondary.SessionRecord {
	c := *s
	c.TraceIDs = append([]string(nil), s.TraceIDs...)
	c.TagSnapshot = append([]secondary.TagRecord(nil), s.TagSnapshot...)
	return &c
}

// Ensure SessionRepository implements the interface.
var _ secondary.SessionRepository = (*SessionRepository)(nil)
