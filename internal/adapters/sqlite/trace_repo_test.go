package sqlite_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/example/sift/internal/adapters/sqlite"
	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

func TestTraceRepositoryUpsertAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)
	ctx := context.Background()

	trace := &secondary.TraceRecord{
		ID:           "trace_1",
		UserInput:    "I'm vegan, what snacks should I try?",
		AgentOutput:  "Try spicy chickpeas.",
		SystemPrompt: "You are a snack assistant.",
		Steps: []secondary.TraceStepRecord{
			{Type: "tool_call", Content: "search_catalog(vegan)", Metadata: map[string]any{"latency_ms": 12.0}, Timestamp: "2025-06-01T09:00:00Z"},
		},
		Metadata:   map[string]any{"model": "gpt-4"},
		Reviewed:   true,
		Verdict:    "pass",
		OpenCode:   "good grounding",
		TagRefs:    []string{"tag_1"},
		ReviewerID: "reviewer-1",
		ReviewedAt: "2025-06-01T12:00:00Z",
	}
	if err := repo.Upsert(ctx, trace); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "trace_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reflect.DeepEqual(got, trace) {
		t.Errorf("got %+v, want %+v", got, trace)
	}
}

func TestTraceRepositoryGetByIDNotFound(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)

	_, err := repo.GetByID(context.Background(), "trace_missing")
	if !review.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTraceRepositoryUpsertReplacesAndKeepsOrder(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)
	ctx := context.Background()

	seedTrace(t, repo, "trace_1")
	seedTrace(t, repo, "trace_2")

	// Re-import the first trace with new content.
	updated := seedTrace(t, repo, "trace_1")
	updated.UserInput = "replaced input"
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	traces, err := repo.List(ctx, secondary.TraceFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(traces) != 2 {
		t.Fatalf("got %d traces, want 2", len(traces))
	}
	// trace_1 keeps its original position despite the rewrite.
	if traces[0].ID != "trace_1" || traces[1].ID != "trace_2" {
		t.Errorf("order = [%s %s], want [trace_1 trace_2]", traces[0].ID, traces[1].ID)
	}
	if traces[0].UserInput != "replaced input" {
		t.Errorf("UserInput = %q, want replaced input", traces[0].UserInput)
	}
}

func TestTraceRepositoryListFilters(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)
	ctx := context.Background()

	seedTrace(t, repo, "trace_plain")

	passed := seedTrace(t, repo, "trace_pass")
	passed.Reviewed = true
	passed.Verdict = "pass"
	passed.ReviewedAt = "2025-06-01T12:00:00Z"
	if err := repo.Upsert(ctx, passed); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	failed := seedTrace(t, repo, "trace_fail")
	failed.Reviewed = true
	failed.Verdict = "fail"
	failed.ReviewedAt = "2025-06-01T12:00:00Z"
	if err := repo.Upsert(ctx, failed); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	reviewed := true
	got, err := repo.List(ctx, secondary.TraceFilters{Reviewed: &reviewed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("reviewed filter matched %d traces, want 2", len(got))
	}

	verdict := "fail"
	got, err = repo.List(ctx, secondary.TraceFilters{Reviewed: &reviewed, Verdict: &verdict})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "trace_fail" {
		t.Errorf("combined filter = %v, want [trace_fail]", got)
	}
}

func TestTraceRepositoryListByTag(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)
	ctx := context.Background()

	seedTrace(t, repo, "trace_1", "tag_a", "tag_b")
	seedTrace(t, repo, "trace_2", "tag_b")
	seedTrace(t, repo, "trace_3")
	// A ref that merely contains tag_a as a substring must not match.
	seedTrace(t, repo, "trace_4", "tag_a_longer")

	traces, err := repo.ListByTag(ctx, "tag_a")
	if err != nil {
		t.Fatalf("ListByTag failed: %v", err)
	}
	if len(traces) != 1 || traces[0].ID != "trace_1" {
		t.Errorf("ListByTag = %v, want [trace_1]", traceIDList(traces))
	}

	count, err := repo.CountTagRefs(ctx, "tag_b")
	if err != nil {
		t.Fatalf("CountTagRefs failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountTagRefs = %d, want 2", count)
	}
}

func TestTraceRepositoryDelete(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewTraceRepository(database)
	ctx := context.Background()

	seedTrace(t, repo, "trace_1")

	if err := repo.Delete(ctx, "trace_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "trace_1"); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}
}

func traceIDList(traces []*secondary.TraceRecord) []string {
	ids := make([]string, len(traces))
	for i, trace := range traces {
		ids[i] = trace.ID
	}
	return ids
}
