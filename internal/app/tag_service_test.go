package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
)

const validDescription = "Agent invented facts or attributes not present in source data"

func newTagServiceForTest() (*TagServiceImpl, *mockTagRepository, *mockTraceRepository) {
	tagRepo := newMockTagRepository()
	traceRepo := newMockTraceRepository()
	return NewTagService(tagRepo, traceRepo), tagRepo, traceRepo
}

func TestCreateTag(t *testing.T) {
	svc, _, _ := newTagServiceForTest()
	ctx := context.Background()

	resp, err := svc.CreateTag(ctx, primary.CreateTagRequest{
		Name:        "Hallucination",
		Description: validDescription,
	})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	if resp.Tag.Name != "Hallucination" {
		t.Errorf("Name = %q, want %q", resp.Tag.Name, "Hallucination")
	}
	if !strings.HasPrefix(resp.TagID, "tag_") {
		t.Errorf("TagID = %q, want tag_ prefix", resp.TagID)
	}
	if resp.Tag.UsageCount != 0 {
		t.Errorf("UsageCount = %d, want 0", resp.Tag.UsageCount)
	}
	if resp.Tag.Color != "#808080" {
		t.Errorf("Color = %q, want default", resp.Tag.Color)
	}
	if resp.Tag.CreatedAt == "" {
		t.Error("CreatedAt not set")
	}
}

func TestCreateTagValidation(t *testing.T) {
	svc, _, _ := newTagServiceForTest()
	ctx := context.Background()

	tests := []struct {
		name        string
		tagName     string
		description string
	}{
		{"name too short", "x", validDescription},
		{"name too long", strings.Repeat("a", 31), validDescription},
		{"description too short", "Hallucination", "too short"},
		{"description too long", "Hallucination", strings.Repeat("d", 201)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTag(ctx, primary.CreateTagRequest{
				Name:        tt.tagName,
				Description: tt.description,
			})
			if !review.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateTagNameConflictIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTagServiceForTest()
	ctx := context.Background()

	if _, err := svc.CreateTag(ctx, primary.CreateTagRequest{
		Name:        "Hallucination",
		Description: validDescription,
	}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateTag(ctx, primary.CreateTagRequest{
		Name:        "hallucination",
		Description: validDescription,
	})
	if !review.IsConflict(err) {
		t.Errorf("expected ConflictError for case-insensitive duplicate, got %v", err)
	}
}

func TestUpdateTag(t *testing.T) {
	svc, tagRepo, _ := newTagServiceForTest()
	ctx := context.Background()

	tag := testTag("tag_aaa", "Hallucination")
	tag.UsageCount = 7
	tag.Examples = []string{"example one"}
	tagRepo.seed(tag)
	tagRepo.seed(testTag("tag_bbb", "Wrong Format"))

	t.Run("renaming to own name succeeds", func(t *testing.T) {
		updated, err := svc.UpdateTag(ctx, "tag_aaa", primary.UpdateTagRequest{
			Name:        "Hallucination",
			Description: validDescription,
			Color:       "#00FF00",
		})
		if err != nil {
			t.Fatalf("UpdateTag failed: %v", err)
		}
		if updated.Color != "#00FF00" {
			t.Errorf("Color = %q, want #00FF00", updated.Color)
		}
		// Usage count and examples are untouched by update.
		if updated.UsageCount != 7 {
			t.Errorf("UsageCount = %d, want 7", updated.UsageCount)
		}
		if !reflect.DeepEqual(updated.Examples, []string{"example one"}) {
			t.Errorf("Examples = %v, want preserved", updated.Examples)
		}
	})

	t.Run("renaming onto another tag fails", func(t *testing.T) {
		_, err := svc.UpdateTag(ctx, "tag_aaa", primary.UpdateTagRequest{
			Name:        "WRONG FORMAT",
			Description: validDescription,
		})
		if !review.IsConflict(err) {
			t.Errorf("expected ConflictError, got %v", err)
		}
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := svc.UpdateTag(ctx, "tag_nope", primary.UpdateTagRequest{
			Name:        "Whatever Name",
			Description: validDescription,
		})
		if !review.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
}

func TestDeleteTagCascadeUntag(t *testing.T) {
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	tagRepo.seed(testTag("tag_x", "Hallucination"))
	traceRepo.seed(testTrace("trace_1", "tag_x"))
	traceRepo.seed(testTrace("trace_2", "tag_x", "tag_other"))
	traceRepo.seed(testTrace("trace_3", "tag_other"))

	before, _ := traceRepo.GetByID(ctx, "trace_3")

	resp, err := svc.DeleteTag(ctx, "tag_x", true)
	if err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	if resp.TracesAffected != 2 {
		t.Errorf("TracesAffected = %d, want 2", resp.TracesAffected)
	}
	if _, err := tagRepo.GetByID(ctx, "tag_x"); !review.IsNotFound(err) {
		t.Error("tag record still present after delete")
	}
	for _, id := range []string{"trace_1", "trace_2"} {
		trace, _ := traceRepo.GetByID(ctx, id)
		for _, ref := range trace.TagRefs {
			if ref == "tag_x" {
				t.Errorf("trace %s still references deleted tag", id)
			}
		}
	}

	// Unaffected traces are byte-for-byte untouched.
	after, _ := traceRepo.GetByID(ctx, "trace_3")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("unaffected trace changed: before %+v, after %+v", before, after)
	}
}

func TestDeleteTagWithoutCascadeLeavesRefs(t *testing.T) {
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	tagRepo.seed(testTag("tag_x", "Hallucination"))
	traceRepo.seed(testTrace("trace_1", "tag_x"))

	resp, err := svc.DeleteTag(ctx, "tag_x", false)
	if err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}
	if resp.TracesAffected != 0 {
		t.Errorf("TracesAffected = %d, want 0", resp.TracesAffected)
	}

	// The dangling ref is deliberately left behind; readers tolerate it.
	trace, _ := traceRepo.GetByID(ctx, "trace_1")
	if !reflect.DeepEqual(trace.TagRefs, []string{"tag_x"}) {
		t.Errorf("TagRefs = %v, want dangling [tag_x]", trace.TagRefs)
	}
}

func TestDeleteTagNotFound(t *testing.T) {
	svc, _, _ := newTagServiceForTest()
	if _, err := svc.DeleteTag(context.Background(), "tag_nope", true); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestMergeTags(t *testing.T) {
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	source := testTag("tag_a", "Tag A")
	source.UsageCount = 2
	source.Examples = []string{"e1"}
	target := testTag("tag_b", "Tag B")
	target.UsageCount = 1
	target.Examples = []string{"e2"}
	tagRepo.seed(source)
	tagRepo.seed(target)

	// One trace holds both tags, one holds only the source.
	traceRepo.seed(testTrace("trace_both", "tag_a", "tag_b"))
	traceRepo.seed(testTrace("trace_a_only", "tag_a"))

	resp, err := svc.MergeTags(ctx, "tag_a", "tag_b")
	if err != nil {
		t.Fatalf("MergeTags failed: %v", err)
	}

	if resp.TracesAffected != 2 {
		t.Errorf("TracesAffected = %d, want 2", resp.TracesAffected)
	}
	if resp.MergedTag.UsageCount != 3 {
		t.Errorf("UsageCount = %d, want 3", resp.MergedTag.UsageCount)
	}
	if !reflect.DeepEqual(resp.MergedTag.Examples, []string{"e2", "e1"}) {
		t.Errorf("Examples = %v, want [e2 e1]", resp.MergedTag.Examples)
	}

	if _, err := tagRepo.GetByID(ctx, "tag_a"); !review.IsNotFound(err) {
		t.Error("source tag still present after merge")
	}

	// The dual-tagged trace ends with exactly one tag_b ref, the
	// single-tagged trace is rewritten to tag_b.
	for _, id := range []string{"trace_both", "trace_a_only"} {
		trace, _ := traceRepo.GetByID(ctx, id)
		if !reflect.DeepEqual(trace.TagRefs, []string{"tag_b"}) {
			t.Errorf("trace %s TagRefs = %v, want [tag_b]", id, trace.TagRefs)
		}
	}
}

func TestMergeTagsSelfMerge(t *testing.T) {
	svc, tagRepo, _ := newTagServiceForTest()
	tagRepo.seed(testTag("tag_a", "Tag A"))

	_, err := svc.MergeTags(context.Background(), "tag_a", "tag_a")
	if !review.IsValidation(err) {
		t.Errorf("expected ValidationError for self-merge, got %v", err)
	}
}

func TestMergeTagsNotFound(t *testing.T) {
	svc, tagRepo, _ := newTagServiceForTest()
	tagRepo.seed(testTag("tag_a", "Tag A"))
	ctx := context.Background()

	if _, err := svc.MergeTags(ctx, "tag_missing", "tag_a"); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing source, got %v", err)
	}
	if _, err := svc.MergeTags(ctx, "tag_a", "tag_missing"); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing target, got %v", err)
	}
}

func TestMergeCascadeIsIdempotentPerTrace(t *testing.T) {
	// Re-running a cascade rewrite over an already-clean trace changes
	// nothing: removing an absent ref and adding a present one are no-ops.
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	tagRepo.seed(testTag("tag_a", "Tag A"))
	tagRepo.seed(testTag("tag_b", "Tag B"))
	traceRepo.seed(testTrace("trace_clean", "tag_b"))

	resp, err := svc.MergeTags(ctx, "tag_a", "tag_b")
	if err != nil {
		t.Fatalf("MergeTags failed: %v", err)
	}
	if resp.TracesAffected != 0 {
		t.Errorf("TracesAffected = %d, want 0", resp.TracesAffected)
	}

	trace, _ := traceRepo.GetByID(ctx, "trace_clean")
	if !reflect.DeepEqual(trace.TagRefs, []string{"tag_b"}) {
		t.Errorf("TagRefs = %v, want [tag_b]", trace.TagRefs)
	}
}

func TestDeleteTagCascadeFailureReportsProgress(t *testing.T) {
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	tagRepo.seed(testTag("tag_x", "Hallucination"))
	traceRepo.seed(testTrace("trace_1", "tag_x"))
	traceRepo.seed(testTrace("trace_2", "tag_x"))
	traceRepo.seed(testTrace("trace_3", "tag_x"))
	traceRepo.failOnID = "trace_2"

	_, err := svc.DeleteTag(ctx, "tag_x", true)
	if err == nil {
		t.Fatal("expected cascade error")
	}

	var cascade *review.CascadeError
	if !errors.As(err, &cascade) {
		t.Fatalf("expected CascadeError, got %T: %v", err, err)
	}
	if !reflect.DeepEqual(cascade.Applied, []string{"trace_1"}) {
		t.Errorf("Applied = %v, want [trace_1]", cascade.Applied)
	}
	if !reflect.DeepEqual(cascade.Remaining, []string{"trace_2", "trace_3"}) {
		t.Errorf("Remaining = %v, want [trace_2 trace_3]", cascade.Remaining)
	}
}

func TestTagReadsDeriveUsageCountFromLiveRefs(t *testing.T) {
	// The stored usage count is only a cache; reads must answer from the
	// trace store so traces entering through import or session
	// write-through are counted without an annotation pass.
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	tagRepo.seed(testTag("tag_x", "Hallucination"))
	traceRepo.seed(reviewedTrace("trace_1", "fail", "tag_x"))
	traceRepo.seed(reviewedTrace("trace_2", "fail", "tag_x"))

	tag, err := svc.GetTag(ctx, "tag_x")
	if err != nil {
		t.Fatalf("GetTag() error = %v", err)
	}
	if tag.UsageCount != 2 {
		t.Errorf("GetTag UsageCount = %d, want 2", tag.UsageCount)
	}

	tags, err := svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].UsageCount != 2 {
		t.Errorf("ListTags UsageCount = %d, want 2", tags[0].UsageCount)
	}
}

func TestTagUsageCountReflectsTraceDeletion(t *testing.T) {
	svc, tagRepo, traceRepo := newTagServiceForTest()
	ctx := context.Background()

	stale := testTag("tag_x", "Hallucination")
	stale.UsageCount = 5
	tagRepo.seed(stale)
	traceRepo.seed(reviewedTrace("trace_1", "fail", "tag_x"))

	tag, err := svc.GetTag(ctx, "tag_x")
	if err != nil {
		t.Fatalf("GetTag() error = %v", err)
	}
	if tag.UsageCount != 1 {
		t.Errorf("UsageCount = %d, want 1 (stored cache must not leak)", tag.UsageCount)
	}

	if err := traceRepo.Delete(ctx, "trace_1"); err != nil {
		t.Fatal(err)
	}

	tag, err = svc.GetTag(ctx, "tag_x")
	if err != nil {
		t.Fatalf("GetTag() error = %v", err)
	}
	if tag.UsageCount != 0 {
		t.Errorf("UsageCount after trace delete = %d, want 0", tag.UsageCount)
	}
}
