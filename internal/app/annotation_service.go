package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

// AnnotationServiceImpl implements the AnnotationService interface: the
// workflow that applies, updates and clears a single trace's review
// verdict. Traces are annotated in place, never re-created.
type AnnotationServiceImpl struct {
	traceRepo secondary.TraceRepository
	tagRepo   secondary.TagRepository
}

// NewAnnotationService creates a new AnnotationService with injected
// dependencies.
func NewAnnotationService(traceRepo secondary.TraceRepository, tagRepo secondary.TagRepository) *AnnotationServiceImpl {
	return &AnnotationServiceImpl{
		traceRepo: traceRepo,
		tagRepo:   tagRepo,
	}
}

// Annotate sets the trace's review fields. The verdict must be set (Clear
// removes a review), which keeps reviewed == (verdict != unset) true by
// construction. The tag id list replaces the existing refs wholesale; ids
// unknown to the registry are stored as-is, readers tolerate dangling refs.
func (s *AnnotationServiceImpl) Annotate(ctx context.Context, req primary.AnnotateRequest) (*primary.Trace, error) {
	verdict, err := review.ParseVerdict(req.Verdict)
	if err != nil {
		return nil, &review.ValidationError{Field: "verdict", Reason: err.Error()}
	}
	guard := review.CanAnnotate(review.AnnotateContext{TraceID: req.TraceID, Verdict: verdict})
	if err := guard.Error("verdict"); err != nil {
		return nil, err
	}

	trace, err := s.traceRepo.GetByID(ctx, req.TraceID)
	if err != nil {
		return nil, err
	}

	touched := unionRefs(trace.TagRefs, req.TagIDs)

	trace.Reviewed = true
	trace.Verdict = string(verdict)
	trace.OpenCode = req.OpenCode
	trace.TagRefs = dedupeRefs(req.TagIDs)
	trace.ReviewerID = req.ReviewerID
	trace.ReviewedAt = time.Now().Format(time.RFC3339)

	if err := s.traceRepo.Upsert(ctx, trace); err != nil {
		return nil, fmt.Errorf("failed to annotate trace %s: %w", req.TraceID, err)
	}

	if err := s.refreshUsageCounts(ctx, touched); err != nil {
		return nil, err
	}

	return recordToTrace(trace), nil
}

// Clear resets all review fields on a trace to their unset defaults.
func (s *AnnotationServiceImpl) Clear(ctx context.Context, traceID string) (*primary.Trace, error) {
	trace, err := s.traceRepo.GetByID(ctx, traceID)
	if err != nil {
		return nil, err
	}

	touched := append([]string(nil), trace.TagRefs...)

	trace.Reviewed = false
	trace.Verdict = ""
	trace.OpenCode = ""
	trace.TagRefs = []string{}
	trace.ReviewerID = ""
	trace.ReviewedAt = ""

	if err := s.traceRepo.Upsert(ctx, trace); err != nil {
		return nil, fmt.Errorf("failed to clear annotation on trace %s: %w", traceID, err)
	}

	if err := s.refreshUsageCounts(ctx, touched); err != nil {
		return nil, err
	}

	return recordToTrace(trace), nil
}

// refreshUsageCounts recomputes the stored usage count of each touched tag
// from live trace references. Dangling ids are skipped: they have no
// registry record to refresh.
func (s *AnnotationServiceImpl) refreshUsageCounts(ctx context.Context, tagIDs []string) error {
	for _, tagID := range tagIDs {
		tag, err := s.tagRepo.GetByID(ctx, tagID)
		if err != nil {
			if review.IsNotFound(err) {
				continue
			}
			return fmt.Errorf("failed to load tag %s for usage refresh: %w", tagID, err)
		}

		count, err := s.traceRepo.CountTagRefs(ctx, tagID)
		if err != nil {
			return fmt.Errorf("failed to count references of tag %s: %w", tagID, err)
		}

		if tag.UsageCount == count {
			continue
		}
		tag.UsageCount = count
		if err := s.tagRepo.Update(ctx, tag); err != nil {
			return fmt.Errorf("failed to refresh usage count of tag %s: %w", tagID, err)
		}
	}
	return nil
}

func dedupeRefs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = addRef(out, id)
	}
	return out
}

func unionRefs(a, b []string) []string {
	out := dedupeRefs(a)
	for _, id := range b {
		out = addRef(out, id)
	}
	return out
}

// Ensure AnnotationServiceImpl implements the interface.
var _ primary.AnnotationService = (*AnnotationServiceImpl)(nil)
