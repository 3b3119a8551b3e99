package app

import (
	"context"
	"testing"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/primary"
)

func importInput(id string) *primary.Trace {
	return &primary.Trace{
		ID:          id,
		UserInput:   "I love spicy kettle chips. What else would I like?",
		AgentOutput: "Try Takis Fuego.",
	}
}

func TestImportTraces(t *testing.T) {
	traceRepo := newMockTraceRepository()
	svc := NewTraceService(traceRepo)
	ctx := context.Background()

	resp, err := svc.ImportTraces(ctx, primary.ImportTracesRequest{
		Traces: []*primary.Trace{importInput("trace_1"), importInput("trace_2"), importInput("trace_3")},
	})
	if err != nil {
		t.Fatalf("ImportTraces failed: %v", err)
	}
	if resp.ImportedCount != 3 {
		t.Errorf("ImportedCount = %d, want 3", resp.ImportedCount)
	}

	traces, err := svc.ListTraces(ctx, primary.TraceFilter{})
	if err != nil {
		t.Fatalf("ListTraces failed: %v", err)
	}
	if len(traces) != 3 {
		t.Fatalf("listed %d traces, want 3", len(traces))
	}
	// Insertion order is stable.
	for i, want := range []string{"trace_1", "trace_2", "trace_3"} {
		if traces[i].ID != want {
			t.Errorf("traces[%d].ID = %q, want %q", i, traces[i].ID, want)
		}
	}
}

func TestImportTracesUpsertsByID(t *testing.T) {
	traceRepo := newMockTraceRepository()
	svc := NewTraceService(traceRepo)
	ctx := context.Background()

	first := importInput("trace_1")
	first.AgentOutput = "old output"
	if _, err := svc.ImportTraces(ctx, primary.ImportTracesRequest{Traces: []*primary.Trace{first}}); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	second := importInput("trace_1")
	second.AgentOutput = "new output"
	if _, err := svc.ImportTraces(ctx, primary.ImportTracesRequest{Traces: []*primary.Trace{second}}); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	trace, err := svc.GetTrace(ctx, "trace_1")
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	if trace.AgentOutput != "new output" {
		t.Errorf("AgentOutput = %q, want last write to win", trace.AgentOutput)
	}
}

func TestImportTracesIsAllOrNothing(t *testing.T) {
	traceRepo := newMockTraceRepository()
	svc := NewTraceService(traceRepo)
	ctx := context.Background()

	malformed := importInput("trace_2")
	malformed.UserInput = ""

	_, err := svc.ImportTraces(ctx, primary.ImportTracesRequest{
		Traces: []*primary.Trace{importInput("trace_1"), malformed, importInput("trace_3")},
	})
	if !review.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Nothing was written: not even the valid records before the bad one.
	traces, _ := svc.ListTraces(ctx, primary.TraceFilter{})
	if len(traces) != 0 {
		t.Errorf("store holds %d traces after failed import, want 0", len(traces))
	}
}

func TestImportTracesRejectsInconsistentReviewFields(t *testing.T) {
	svc := NewTraceService(newMockTraceRepository())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*primary.Trace)
	}{
		{"verdict without reviewed flag", func(tr *primary.Trace) {
			tr.Verdict = "pass"
		}},
		{"reviewed without verdict", func(tr *primary.Trace) {
			tr.Reviewed = true
			tr.ReviewedAt = "2025-06-01T12:00:00Z"
		}},
		{"unknown verdict", func(tr *primary.Trace) {
			tr.Reviewed = true
			tr.Verdict = "maybe"
			tr.ReviewedAt = "2025-06-01T12:00:00Z"
		}},
		{"reviewed without timestamp", func(tr *primary.Trace) {
			tr.Reviewed = true
			tr.Verdict = "pass"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := importInput("trace_1")
			tt.mutate(trace)
			_, err := svc.ImportTraces(ctx, primary.ImportTracesRequest{Traces: []*primary.Trace{trace}})
			if !review.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestListTracesFilters(t *testing.T) {
	traceRepo := newMockTraceRepository()
	svc := NewTraceService(traceRepo)
	ctx := context.Background()

	traceRepo.seed(testTrace("trace_1"))
	traceRepo.seed(reviewedTrace("trace_2", "fail"))
	traceRepo.seed(reviewedTrace("trace_3", "pass"))

	boolPtr := func(b bool) *bool { return &b }
	strPtr := func(s string) *string { return &s }

	t.Run("by reviewed", func(t *testing.T) {
		traces, err := svc.ListTraces(ctx, primary.TraceFilter{Reviewed: boolPtr(true)})
		if err != nil {
			t.Fatalf("ListTraces failed: %v", err)
		}
		if len(traces) != 2 {
			t.Errorf("got %d traces, want 2", len(traces))
		}
	})

	t.Run("by verdict", func(t *testing.T) {
		traces, err := svc.ListTraces(ctx, primary.TraceFilter{Verdict: strPtr("fail")})
		if err != nil {
			t.Fatalf("ListTraces failed: %v", err)
		}
		if len(traces) != 1 || traces[0].ID != "trace_2" {
			t.Errorf("got %v, want just trace_2", traces)
		}
	})

	t.Run("filters AND together", func(t *testing.T) {
		traces, err := svc.ListTraces(ctx, primary.TraceFilter{Reviewed: boolPtr(false), Verdict: strPtr("pass")})
		if err != nil {
			t.Fatalf("ListTraces failed: %v", err)
		}
		if len(traces) != 0 {
			t.Errorf("got %d traces, want 0", len(traces))
		}
	})
}

func TestGetTraceNotFound(t *testing.T) {
	svc := NewTraceService(newMockTraceRepository())
	if _, err := svc.GetTrace(context.Background(), "trace_nope"); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteTrace(t *testing.T) {
	traceRepo := newMockTraceRepository()
	svc := NewTraceService(traceRepo)
	ctx := context.Background()

	traceRepo.seed(testTrace("trace_1"))

	if err := svc.DeleteTrace(ctx, "trace_1"); err != nil {
		t.Fatalf("DeleteTrace failed: %v", err)
	}
	if _, err := svc.GetTrace(ctx, "trace_1"); !review.IsNotFound(err) {
		t.Error("trace still present after delete")
	}
	if err := svc.DeleteTrace(ctx, "trace_1"); !review.IsNotFound(err) {
		t.Errorf("expected NotFoundError for double delete, got %v", err)
	}
}
