package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
	"github.com/example/sift/internal/ports/secondary"
)

const defaultTagColor = "#808080"

// TagServiceImpl implements the TagService interface. It owns the axial tag
// lifecycle and the cascades that keep trace tag references consistent when
// tags are deleted or merged.
type TagServiceImpl struct {
	tagRepo   secondary.TagRepository
	traceRepo secondary.TraceRepository
}

// NewTagService creates a new TagService with injected dependencies.
func NewTagService(tagRepo secondary.TagRepository, traceRepo secondary.TraceRepository) *TagServiceImpl {
	return &TagServiceImpl{
		tagRepo:   tagRepo,
		traceRepo: traceRepo,
	}
}

// CreateTag creates a new tag.
func (s *TagServiceImpl) CreateTag(ctx context.Context, req primary.CreateTagRequest) (*primary.CreateTagResponse, error) {
	if err := review.CheckTagName(req.Name).Error("name"); err != nil {
		return nil, err
	}
	if err := review.CheckTagDescription(req.Description).Error("description"); err != nil {
		return nil, err
	}

	if err := s.checkNameCollision(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = defaultTagColor
	}

	record := &secondary.TagRecord{
		ID:          newTagID(),
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
		UsageCount:  0,
		Examples:    []string{},
		CreatedAt:   time.Now().Format(time.RFC3339),
	}

	if err := s.tagRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return &primary.CreateTagResponse{
		TagID: record.ID,
		Tag:   recordToTag(record),
	}, nil
}

// GetTag retrieves a tag by ID. The usage count is derived from the live
// trace refs, so traces entering or leaving the store through any path are
// reflected without a cache refresh.
func (s *TagServiceImpl) GetTag(ctx context.Context, tagID string) (*primary.Tag, error) {
	record, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	tag := recordToTag(record)
	if err := s.deriveUsageCount(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags retrieves all tags with derived usage counts.
func (s *TagServiceImpl) ListTags(ctx context.Context) ([]*primary.Tag, error) {
	records, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make([]*primary.Tag, len(records))
	for i, r := range records {
		tags[i] = recordToTag(r)
		if err := s.deriveUsageCount(ctx, tags[i]); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

// deriveUsageCount replaces the stored usage-count cache with the live
// trace-ref count. The stored column stays as written (merge sums it) but
// reads always answer from the trace store.
func (s *TagServiceImpl) deriveUsageCount(ctx context.Context, tag *primary.Tag) error {
	count, err := s.traceRepo.CountTagRefs(ctx, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to count refs for tag %s: %w", tag.ID, err)
	}
	tag.UsageCount = count
	return nil
}

// UpdateTag updates a tag's name, description and color. Usage count and
// examples are never touched here. Renaming a tag to its own current name
// succeeds; colliding with a different live tag fails.
func (s *TagServiceImpl) UpdateTag(ctx context.Context, tagID string, req primary.UpdateTagRequest) (*primary.Tag, error) {
	record, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if err := review.CheckTagName(req.Name).Error("name"); err != nil {
		return nil, err
	}
	if err := review.CheckTagDescription(req.Description).Error("description"); err != nil {
		return nil, err
	}
	if err := s.checkNameCollision(ctx, req.Name, tagID); err != nil {
		return nil, err
	}

	record.Name = req.Name
	record.Description = req.Description
	if req.Color != "" {
		record.Color = req.Color
	}

	if err := s.tagRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	return recordToTag(record), nil
}

// DeleteTag deletes a tag. The registry record is removed first, then the
// untag cascade rewrites referencing traces; a cascade failure reports
// which traces were and were not rewritten so the cascade can be retried
// (untagging an already-clean trace is a no-op).
func (s *TagServiceImpl) DeleteTag(ctx context.Context, tagID string, cascadeUntag bool) (*primary.DeleteTagResponse, error) {
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return nil, err
	}

	var referencing []*secondary.TraceRecord
	if cascadeUntag {
		var err error
		referencing, err = s.traceRepo.ListByTag(ctx, tagID)
		if err != nil {
			return nil, fmt.Errorf("failed to find traces referencing tag %s: %w", tagID, err)
		}
	}

	if err := s.tagRepo.Delete(ctx, tagID); err != nil {
		return nil, fmt.Errorf("failed to delete tag: %w", err)
	}

	affected := 0
	if cascadeUntag {
		var err error
		affected, err = s.cascade(ctx, "untag", tagID, referencing, func(trace *secondary.TraceRecord) {
			trace.TagRefs = removeRef(trace.TagRefs, tagID)
		})
		if err != nil {
			return nil, err
		}
	}

	return &primary.DeleteTagResponse{TracesAffected: affected}, nil
}

// MergeTags folds sourceID into targetID: the target's usage count and
// examples absorb the source's, every referencing trace is rewritten to the
// target (set semantics, no duplicates), and the source tag is deleted.
// Registry mutations are fully applied before the trace cascade.
func (s *TagServiceImpl) MergeTags(ctx context.Context, sourceID, targetID string) (*primary.MergeTagsResponse, error) {
	source, err := s.tagRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := s.tagRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	guard := review.CanMergeTags(review.MergeContext{
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceExists: true,
		TargetExists: true,
	})
	if err := guard.Error("merge"); err != nil {
		return nil, err
	}

	referencing, err := s.traceRepo.ListByTag(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find traces referencing tag %s: %w", sourceID, err)
	}

	// Target's existing examples first, then the source's, no de-dup.
	target.UsageCount += source.UsageCount
	target.Examples = append(target.Examples, source.Examples...)

	if err := s.tagRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update merge target: %w", err)
	}
	if err := s.tagRepo.Delete(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("failed to delete merge source: %w", err)
	}

	affected, err := s.cascade(ctx, "merge", sourceID, referencing, func(trace *secondary.TraceRecord) {
		trace.TagRefs = removeRef(trace.TagRefs, sourceID)
		trace.TagRefs = addRef(trace.TagRefs, targetID)
	})
	if err != nil {
		return nil, err
	}

	return &primary.MergeTagsResponse{
		MergedTag:      recordToTag(target),
		TracesAffected: affected,
	}, nil
}

// cascade applies rewrite to each referencing trace. On a mid-cascade
// failure the returned CascadeError names the traces already rewritten and
// the ones still pending.
func (s *TagServiceImpl) cascade(ctx context.Context, op, tagID string, traces []*secondary.TraceRecord, rewrite func(*secondary.TraceRecord)) (int, error) {
	var applied []string
	for i, trace := range traces {
		rewrite(trace)
		if err := s.traceRepo.Upsert(ctx, trace); err != nil {
			remaining := make([]string, 0, len(traces)-i)
			for _, t := range traces[i:] {
				remaining = append(remaining, t.ID)
			}
			return len(applied), &review.CascadeError{
				Op:        op,
				TagID:     tagID,
				Applied:   applied,
				Remaining: remaining,
				Err:       err,
			}
		}
		applied = append(applied, trace.ID)
	}
	return len(applied), nil
}

// checkNameCollision fails with a ConflictError when any live tag other
// than excludeID carries the name, compared case-insensitively.
func (s *TagServiceImpl) checkNameCollision(ctx context.Context, name, excludeID string) error {
	existing, err := s.tagRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check tag name uniqueness: %w", err)
	}
	for _, tag := range existing {
		if tag.ID != excludeID && strings.EqualFold(tag.Name, name) {
			return &review.ConflictError{Resource: "tag", Value: name}
		}
	}
	return nil
}

func newTagID() string {
	return "tag_" + uuid.NewString()[:8]
}

func removeRef(refs []string, id string) []string {
	out := refs[:0]
	for _, r := range refs {
		if r != id {
			out = append(out, r)
		}
	}
	return out
}

func addRef(refs []string, id string) []string {
	for _, r := range refs {
		if r == id {
			return refs
		}
	}
	return append(refs, id)
}

func recordToTag(r *secondary.TagRecord) *primary.Tag {
	return &primary.Tag{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		UsageCount:  r.UsageCount,
		Examples:    append([]string(nil), r.Examples...),
		CreatedAt:   r.CreatedAt,
	}
}

// Ensure TagServiceImpl implements the interface.
var _ primary.TagService = (*TagServiceImpl)(nil)
