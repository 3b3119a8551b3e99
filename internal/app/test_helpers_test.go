package app

import (
	"context"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockTagRepository implements secondary.TagRepository for testing.
type mockTagRepository struct {
	tags      map[string]*secondary.TagRecord
	order     []string
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newMockTagRepository() *mockTagRepository {
	return &mockTagRepository{tags: make(map[string]*secondary.TagRecord)}
}

func (m *mockTagRepository) Create(ctx context.Context, tag *secondary.TagRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.tags[tag.ID] = copyTagRecord(tag)
	m.order = append(m.order, tag.ID)
	return nil
}

func (m *mockTagRepository) GetByID(ctx context.Context, id string) (*secondary.TagRecord, error) {
	if tag, ok := m.tags[id]; ok {
		return copyTagRecord(tag), nil
	}
	return nil, &review.NotFoundError{Entity: "tag", ID: id}
}

func (m *mockTagRepository) List(ctx context.Context) ([]*secondary.TagRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TagRecord
	for _, id := range m.order {
		if tag, ok := m.tags[id]; ok {
			result = append(result, copyTagRecord(tag))
		}
	}
	return result, nil
}

func (m *mockTagRepository) Update(ctx context.Context, tag *secondary.TagRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tags[tag.ID]; !ok {
		return &review.NotFoundError{Entity: "tag", ID: tag.ID}
	}
	m.tags[tag.ID] = copyTagRecord(tag)
	return nil
}

func (m *mockTagRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.tags[id]; !ok {
		return &review.NotFoundError{Entity: "tag", ID: id}
	}
	delete(m.tags, id)
	return nil
}

// seed inserts a tag record directly, bypassing service validation.
func (m *mockTagRepository) seed(tag *secondary.TagRecord) {
	m.tags[tag.ID] = copyTagRecord(tag)
	m.order = append(m.order, tag.ID)
}

// mockTraceRepository implements secondary.TraceRepository for testing.
// Insertion order of first writes is preserved, matching the port contract.
type mockTraceRepository struct {
	traces    map[string]*secondary.TraceRecord
	order     []string
	upsertErr error
	// failOnID makes Upsert fail only for a specific trace id, for
	// mid-cascade failure tests.
	failOnID  string
	deleteErr error
	listErr   error
}

func newMockTraceRepository() *mockTraceRepository {
	return &mockTraceRepository{traces: make(map[string]*secondary.TraceRecord)}
}

func (m *mockTraceRepository) Upsert(ctx context.Context, trace *secondary.TraceRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.failOnID != "" && trace.ID == m.failOnID {
		return &review.ValidationError{Field: "trace", Reason: "injected upsert failure"}
	}
	if _, ok := m.traces[trace.ID]; !ok {
		m.order = append(m.order, trace.ID)
	}
	m.traces[trace.ID] = copyTraceRecord(trace)
	return nil
}

func (m *mockTraceRepository) GetByID(ctx context.Context, id string) (*secondary.TraceRecord, error) {
	if trace, ok := m.traces[id]; ok {
		return copyTraceRecord(trace), nil
	}
	return nil, &review.NotFoundError{Entity: "trace", ID: id}
}

func (m *mockTraceRepository) List(ctx context.Context, filters secondary.TraceFilters) ([]*secondary.TraceRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.TraceRecord
	for _, id := range m.order {
		trace, ok := m.traces[id]
		if !ok {
			continue
		}
		if filters.Reviewed != nil && trace.Reviewed != *filters.Reviewed {
			continue
		}
		if filters.Verdict != nil && trace.Verdict != *filters.Verdict {
			continue
		}
		result = append(result, copyTraceRecord(trace))
	}
	return result, nil
}

func (m *mockTraceRepository) ListByTag(ctx context.Context, tagID string) ([]*secondary.TraceRecord, error) {
	var result []*secondary.TraceRecord
	for _, id := range m.order {
		trace, ok := m.traces[id]
		if !ok {
			continue
		}
		for _, ref := range trace.TagRefs {
			if ref == tagID {
				result = append(result, copyTraceRecord(trace))
				break
			}
		}
	}
	return result, nil
}

func (m *mockTraceRepository) CountTagRefs(ctx context.Context, tagID string) (int, error) {
	count := 0
	for _, trace := range m.traces {
		for _, ref := range trace.TagRefs {
			if ref == tagID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockTraceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.traces[id]; !ok {
		return &review.NotFoundError{Entity: "trace", ID: id}
	}
	delete(m.traces, id)
	return nil
}

func (m *mockTraceRepository) seed(trace *secondary.TraceRecord) {
	if _, ok := m.traces[trace.ID]; !ok {
		m.order = append(m.order, trace.ID)
	}
	m.traces[trace.ID] = copyTraceRecord(trace)
}

// mockSessionRepository implements secondary.SessionRepository for testing.
type mockSessionRepository struct {
	sessions  map[string]*secondary.SessionRecord
	order     []string
	createErr error
	updateErr error
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*secondary.SessionRecord)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[session.ID] = copySessionRecord(session)
	m.order = append(m.order, session.ID)
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	if session, ok := m.sessions[id]; ok {
		return copySessionRecord(session), nil
	}
	return nil, &review.NotFoundError{Entity: "session", ID: id}
}

func (m *mockSessionRepository) List(ctx context.Context) ([]*secondary.SessionRecord, error) {
	var result []*secondary.SessionRecord
	for _, id := range m.order {
		if session, ok := m.sessions[id]; ok {
			result = append(result, copySessionRecord(session))
		}
	}
	return result, nil
}

func (m *mockSessionRepository) Update(ctx context.Context, session *secondary.SessionRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.sessions[session.ID]; !ok {
		return &review.NotFoundError{Entity: "session", ID: session.ID}
	}
	m.sessions[session.ID] = copySessionRecord(session)
	return nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return &review.NotFoundError{Entity: "session", ID: id}
	}
	delete(m.sessions, id)
	return nil
}

// mockTraceSource implements secondary.TraceSource for testing.
type mockTraceSource struct {
	page     *secondary.ExternalTracePage
	fetchErr error
	// lastCursor and lastLimit record the most recent call.
	lastCursor string
	lastLimit  int
}

func (m *mockTraceSource) FetchPage(ctx context.Context, cursor string, limit int) (*secondary.ExternalTracePage, error) {
	m.lastCursor = cursor
	m.lastLimit = limit
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.page, nil
}

// mockFeedbackSink implements secondary.FeedbackSink for testing.
type mockFeedbackSink struct {
	submitted [][]secondary.FeedbackItem
	submitErr error
}

func (m *mockFeedbackSink) SubmitFeedback(ctx context.Context, items []secondary.FeedbackItem) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, items)
	return nil
}

// mockPromptGenerator implements secondary.PromptGenerator for testing.
type mockPromptGenerator struct {
	response    string
	generateErr error
	lastPrompt  string
}

func (m *mockPromptGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

// ============================================================================
// Record copy helpers
// ============================================================================
//
// Mocks copy on read and write so aliasing through returned pointers cannot
// leak mutations into the "stored" state, matching real adapter behavior.

func copyTagRecord(t *secondary.TagRecord) *secondary.TagRecord {
	c := *t
	c.Examples = append([]string(nil), t.Examples...)
	return &c
}

func copyTraceRecord(t *secondary.TraceRecord) *secondary.TraceRecord {
	c := *t
	c.TagRefs = append([]string(nil), t.TagRefs...)
	c.Steps = append([]secondary.TraceStepRecord(nil), t.Steps...)
	return &c
}

func copySessionRecord(s *secondary.SessionRecord) *secondary.SessionRecord {
	c := *s
	c.TraceIDs = append([]string(nil), s.TraceIDs...)
	c.TagSnapshot = append([]secondary.TagRecord(nil), s.TagSnapshot...)
	return &c
}

// ============================================================================
// Fixtures
// ============================================================================

func testTag(id, name string) *secondary.TagRecord {
	return &secondary.TagRecord{
		ID:          id,
		Name:        name,
		Description: "A test failure category description",
		Color:       "#EF4444",
		Examples:    []string{},
		CreatedAt:   "2025-06-01T10:00:00Z",
	}
}

func testTrace(id string, tagRefs ...string) *secondary.TraceRecord {
	return &secondary.TraceRecord{
		ID:          id,
		UserInput:   "What snacks would I like?",
		AgentOutput: "Here are some recommendations.",
		Metadata:    map[string]any{},
		TagRefs:     tagRefs,
	}
}

func reviewedTrace(id, verdict string, tagRefs ...string) *secondary.TraceRecord {
	trace := testTrace(id, tagRefs...)
	trace.Reviewed = true
	trace.Verdict = verdict
	trace.OpenCode = "observed issue in " + id
	trace.ReviewerID = "reviewer-1"
	trace.ReviewedAt = "2025-06-01T12:00:00Z"
	return trace
}
