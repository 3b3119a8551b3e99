package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

// SessionServiceImpl implements the SessionService interface. Sessions
// persist an ordered list of trace ids plus derived counters; trace bodies
// live only in the trace store, and counters are always recomputed by a
// fold over the underlying traces, never incrementally patched.
type SessionServiceImpl struct {
	sessionRepo secondary.SessionRepository
	traceRepo   secondary.TraceRepository
	tagRepo     secondary.TagRepository
}

// NewSessionService creates a new SessionService with injected
// dependencies.
func NewSessionService(sessionRepo secondary.SessionRepository, traceRepo secondary.TraceRepository, tagRepo secondary.TagRepository) *SessionServiceImpl {
	return &SessionServiceImpl{
		sessionRepo: sessionRepo,
		traceRepo:   traceRepo,
		tagRepo:     tagRepo,
	}
}

// CreateSession creates a session from a trace batch and a tag registry
// snapshot. Trace bodies are written through to the trace store; the
// session keeps only their ids.
func (s *SessionServiceImpl) CreateSession(ctx context.Context, req primary.CreateSessionRequest) (*primary.Session, error) {
	config, err := normalizeConfig(req.Config)
	if err != nil {
		return nil, err
	}
	for i, trace := range req.Traces {
		if err := validateTrace(trace); err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
	}

	snapshot, err := s.resolveSnapshot(ctx, req.TagSnapshot)
	if err != nil {
		return nil, err
	}

	if err := s.writeThrough(ctx, req.Traces); err != nil {
		return nil, err
	}

	name := req.Name
	now := time.Now()
	if name == "" {
		name = "Session " + now.Format("2006-01-02 15:04")
	}

	record := &secondary.SessionRecord{
		ID:             newSessionID(),
		Name:           name,
		TraceIDs:       traceIDs(req.Traces),
		TagSnapshot:    snapshot,
		Mode:           config.Mode,
		RandomizeOrder: config.RandomizeOrder,
		Source:         config.Source,
		CreatedAt:      now.Format(time.RFC3339),
		UpdatedAt:      now.Format(time.RFC3339),
	}
	applyCounters(record, foldTraces(req.Traces))

	if err := s.sessionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.assemble(record, req.Traces), nil
}

// GetSession retrieves a session, rehydrating trace bodies from the trace
// store. Counters are recomputed from what the store holds now, so a
// session read never shows drifted numbers; traces deleted from the store
// since creation are dropped from the view.
func (s *SessionServiceImpl) GetSession(ctx context.Context, sessionID string) (*primary.Session, error) {
	record, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	traces, err := s.rehydrate(ctx, record.TraceIDs)
	if err != nil {
		return nil, err
	}
	applyCounters(record, foldTraces(traces))

	return s.assemble(record, traces), nil
}

// ListSessions retrieves summaries of all sessions. Summary counters are
// recomputed from the trace store the same way GetSession recomputes them,
// so a listing taken after later annotation rounds is never stale.
func (s *SessionServiceImpl) ListSessions(ctx context.Context) ([]*primary.SessionSummary, error) {
	records, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]*primary.SessionSummary, len(records))
	for i, r := range records {
		traces, err := s.rehydrate(ctx, r.TraceIDs)
		if err != nil {
			return nil, err
		}
		applyCounters(r, foldTraces(traces))

		summaries[i] = &primary.SessionSummary{
			ID:            r.ID,
			Name:          r.Name,
			CreatedAt:     r.CreatedAt,
			TotalTraces:   r.TotalTraces,
			ReviewedCount: r.ReviewedCount,
			Source:        r.Source,
		}
	}
	return summaries, nil
}

// ReplaceSession replaces a session wholesale. Counters are recomputed from
// the supplied traces — whatever the caller thinks the counters are is
// ignored — and the trace bodies are dual-written into the trace store so
// the two never diverge.
func (s *SessionServiceImpl) ReplaceSession(ctx context.Context, sessionID string, req primary.ReplaceSessionRequest) (*primary.Session, error) {
	record, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	config, err := normalizeConfig(req.Config)
	if err != nil {
		return nil, err
	}
	for i, trace := range req.Traces {
		if err := validateTrace(trace); err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
	}

	if err := s.writeThrough(ctx, req.Traces); err != nil {
		return nil, err
	}

	if req.Name != "" {
		record.Name = req.Name
	}
	if req.TagSnapshot != nil {
		record.TagSnapshot = tagsToRecords(req.TagSnapshot)
	}
	record.TraceIDs = traceIDs(req.Traces)
	record.Mode = config.Mode
	record.RandomizeOrder = config.RandomizeOrder
	record.Source = config.Source
	record.UpdatedAt = time.Now().Format(time.RFC3339)
	applyCounters(record, foldTraces(req.Traces))

	if err := s.sessionRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return s.assemble(record, req.Traces), nil
}

// DeleteSession deletes a session. The referenced traces stay in the trace
// store.
func (s *SessionServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sessionID)
}

// writeThrough upserts every trace body into the trace store. Deterministic
// application order: traces are written in batch order, so a failure
// partway is diagnosable by position.
func (s *SessionServiceImpl) writeThrough(ctx context.Context, traces []*primary.Trace) error {
	for _, trace := range traces {
		if err := s.traceRepo.Upsert(ctx, traceToRecord(trace)); err != nil {
			return fmt.Errorf("failed to write session trace %s to trace store: %w", trace.ID, err)
		}
	}
	return nil
}

func (s *SessionServiceImpl) rehydrate(ctx context.Context, ids []string) ([]*primary.Trace, error) {
	traces := make([]*primary.Trace, 0, len(ids))
	for _, id := range ids {
		record, err := s.traceRepo.GetByID(ctx, id)
		if err != nil {
			if review.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load session trace %s: %w", id, err)
		}
		traces = append(traces, recordToTrace(record))
	}
	return traces, nil
}

// resolveSnapshot returns the caller-supplied tag snapshot, or captures the
// current registry contents when none was given.
func (s *SessionServiceImpl) resolveSnapshot(ctx context.Context, supplied []*primary.Tag) ([]secondary.TagRecord, error) {
	if supplied != nil {
		return tagsToRecords(supplied), nil
	}
	records, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot tag registry: %w", err)
	}
	snapshot := make([]secondary.TagRecord, len(records))
	for i, r := range records {
		snapshot[i] = *r
	}
	return snapshot, nil
}

func (s *SessionServiceImpl) assemble(record *secondary.SessionRecord, traces []*primary.Trace) *primary.Session {
	tags := make([]*primary.Tag, len(record.TagSnapshot))
	for i := range record.TagSnapshot {
		tags[i] = recordToTag(&record.TagSnapshot[i])
	}
	return &primary.Session{
		ID:             record.ID,
		Name:           record.Name,
		Traces:         traces,
		TagSnapshot:    tags,
		Mode:           record.Mode,
		TotalTraces:    record.TotalTraces,
		ReviewedCount:  record.ReviewedCount,
		PassedCount:    record.PassedCount,
		FailedCount:    record.FailedCount,
		DeferredCount:  record.DeferredCount,
		RandomizeOrder: record.RandomizeOrder,
		Source:         record.Source,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func normalizeConfig(config primary.SessionConfig) (primary.SessionConfig, error) {
	if config.Mode == "" {
		config.Mode = review.ModeCombined
	}
	if config.Source == "" {
		config.Source = review.SourceUpload
	}
	if !review.ValidMode(config.Mode) {
		return config, &review.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", config.Mode)}
	}
	if !review.ValidSource(config.Source) {
		return config, &review.ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", config.Source)}
	}
	return config, nil
}

// foldTraces runs the counter fold over trace review state.
func foldTraces(traces []*primary.Trace) review.Counters {
	states := make([]review.ReviewState, len(traces))
	for i, t := range traces {
		states[i] = review.ReviewState{
			Reviewed: t.Reviewed,
			Verdict:  review.Verdict(t.Verdict),
		}
	}
	return review.Fold(states)
}

func applyCounters(record *secondary.SessionRecord, c review.Counters) {
	record.TotalTraces = c.Total
	record.ReviewedCount = c.Reviewed
	record.PassedCount = c.Passed
	record.FailedCount = c.Failed
	record.DeferredCount = c.Deferred
}

func traceIDs(traces []*primary.Trace) []string {
	ids := make([]string, len(traces))
	for i, t := range traces {
		ids[i] = t.ID
	}
	return ids
}

func tagsToRecords(tags []*primary.Tag) []secondary.TagRecord {
	records := make([]secondary.TagRecord, len(tags))
	for i, t := range tags {
		records[i] = secondary.TagRecord{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			UsageCount:  t.UsageCount,
			Examples:    append([]string(nil), t.Examples...),
			CreatedAt:   t.CreatedAt,
		}
	}
	return records
}

func newSessionID() string {
	return "session_" + uuid.NewString()[:8]
}

// Ensure SessionServiceImpl implements the interface.
var _ primary.SessionService = (*SessionServiceImpl)(nil)
