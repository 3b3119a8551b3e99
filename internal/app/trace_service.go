// Package app contains the service implementations behind the primary
// ports. Services own the consistency rules of the review core; persistence
// and external collaborators are injected as secondary ports.
package app

import (
	"context"
	"fmt"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

// TraceServiceImpl implements the TraceService interface.
type TraceServiceImpl struct {
	traceRepo secondary.TraceRepository
}

// NewTraceService creates a new TraceService with injected dependencies.
func NewTraceService(traceRepo secondary.TraceRepository) *TraceServiceImpl {
	return &TraceServiceImpl{
		traceRepo: traceRepo,
	}
}

// ImportTraces upserts a batch of traces by id, last write wins.
//
// The import is all-or-nothing: every record is validated before the first
// write, so a malformed record anywhere in the batch fails the whole call
// and leaves the store untouched. (The repository port has no transaction
// surface; validate-then-write gives the same guarantee without one.)
func (s *TraceServiceImpl) ImportTraces(ctx context.Context, req primary.ImportTracesRequest) (*primary.ImportTracesResponse, error) {
	for i, trace := range req.Traces {
		if err := validateTrace(trace); err != nil {
			return nil, fmt.Errorf("trace %d (%s): %w", i, trace.ID, err)
		}
	}

	for _, trace := range req.Traces {
		if err := s.traceRepo.Upsert(ctx, traceToRecord(trace)); err != nil {
			return nil, fmt.Errorf("failed to import trace %s: %w", trace.ID, err)
		}
	}

	return &primary.ImportTracesResponse{ImportedCount: len(req.Traces)}, nil
}

// GetTrace retrieves a trace by ID.
func (s *TraceServiceImpl) GetTrace(ctx context.Context, traceID string) (*primary.Trace, error) {
	record, err := s.traceRepo.GetByID(ctx, traceID)
	if err != nil {
		return nil, err
	}
	return recordToTrace(record), nil
}

// ListTraces retrieves traces matching all provided filters, in insertion
// order.
func (s *TraceServiceImpl) ListTraces(ctx context.Context, filter primary.TraceFilter) ([]*primary.Trace, error) {
	records, err := s.traceRepo.List(ctx, secondary.TraceFilters{
		Reviewed: filter.Reviewed,
		Verdict:  filter.Verdict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}

	traces := make([]*primary.Trace, len(records))
	for i, r := range records {
		traces[i] = recordToTrace(r)
	}
	return traces, nil
}

// DeleteTrace deletes a trace. Tag usage bookkeeping that referenced the
// trace is reconciled on the next annotate or cascade touching those tags.
func (s *TraceServiceImpl) DeleteTrace(ctx context.Context, traceID string) error {
	if _, err := s.traceRepo.GetByID(ctx, traceID); err != nil {
		return err
	}
	return s.traceRepo.Delete(ctx, traceID)
}

// validateTrace checks a trace input for import. Review fields must satisfy
// the core invariant: reviewed iff verdict set, reviewed_at set iff
// reviewed.
func validateTrace(trace *primary.Trace) error {
	if trace == nil {
		return &review.ValidationError{Field: "trace", Reason: "must not be nil"}
	}
	if trace.ID == "" {
		return &review.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if trace.UserInput == "" {
		return &review.ValidationError{Field: "user_input", Reason: "must not be empty"}
	}
	verdict, err := review.ParseVerdict(trace.Verdict)
	if err != nil {
		return &review.ValidationError{Field: "verdict", Reason: err.Error()}
	}
	if !review.ReviewFieldsConsistent(trace.Reviewed, verdict, trace.ReviewedAt) {
		return &review.ValidationError{
			Field:  "reviewed",
			Reason: fmt.Sprintf("inconsistent review fields (reviewed=%v, verdict=%q, reviewed_at=%q)", trace.Reviewed, trace.Verdict, trace.ReviewedAt),
		}
	}
	return nil
}

// Mapping helpers shared by every service that touches traces.

func traceToRecord(t *primary.Trace) *secondary.TraceRecord {
	steps := make([]secondary.TraceStepRecord, len(t.Steps))
	for i, st := range t.Steps {
		steps[i] = secondary.TraceStepRecord{
			Type:      st.Type,
			Content:   st.Content,
			Metadata:  st.Metadata,
			Timestamp: st.Timestamp,
		}
	}
	return &secondary.TraceRecord{
		ID:           t.ID,
		UserInput:    t.UserInput,
		AgentOutput:  t.AgentOutput,
		SystemPrompt: t.SystemPrompt,
		Steps:        steps,
		Metadata:     t.Metadata,
		Reviewed:     t.Reviewed,
		Verdict:      t.Verdict,
		OpenCode:     t.OpenCode,
		TagRefs:      append([]string(nil), t.TagRefs...),
		ReviewerID:   t.ReviewerID,
		ReviewedAt:   t.ReviewedAt,
	}
}

func recordToTrace(r *secondary.TraceRecord) *primary.Trace {
	steps := make([]primary.TraceStep, len(r.Steps))
	for i, st := range r.Steps {
		steps[i] = primary.TraceStep{
			Type:      st.Type,
			Content:   st.Content,
			Metadata:  st.Metadata,
			Timestamp: st.Timestamp,
		}
	}
	return &primary.Trace{
		ID:           r.ID,
		UserInput:    r.UserInput,
		AgentOutput:  r.AgentOutput,
		SystemPrompt: r.SystemPrompt,
		Steps:        steps,
		Metadata:     r.Metadata,
		Reviewed:     r.Reviewed,
		Verdict:      r.Verdict,
		OpenCode:     r.OpenCode,
		TagRefs:      append([]string(nil), r.TagRefs...),
		ReviewerID:   r.ReviewerID,
		ReviewedAt:   r.ReviewedAt,
	}
}

// Ensure TraceServiceImpl implements the interface.
var _ primary.TraceService = (*TraceServiceImpl)(nil)
