package memory

import (
	"context"
	"sync"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// TraceRepository implements secondary.TraceRepository in memory. Insertion
// order of first writes is preserved for listing.
type TraceRepository struct {
	mu     sync.Mutex
	traces map[string]*secondary.TraceRecord
	order  []string
}

// NewTraceRepository creates a new in-memory trace repository.
func NewTraceRepository() *TraceRepository {
	return &TraceRepository{traces: make(map[string]*secondary.TraceRecord)}
}

// Upsert creates a trace or replaces an existing one by id.
func (r *TraceRepository) Upsert(ctx context.Context, trace *secondary.TraceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.traces[trace.ID]; !ok {
		r.order = append(r.order, trace.ID)
	}
	r.traces[trace.ID] = copyTrace(trace)
	return nil
}

// GetByID retrieves a trace by its ID.
func (r *TraceRepository) GetByID(ctx context.Context, id string) (*secondary.TraceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trace, ok := r.traces[id]
	if !ok {
		return nil, &review.NotFoundError{Entity: "trace", ID: id}
	}
	return copyTrace(trace), nil
}

// List retrieves traces matching the filters in insertion order.
func (r *TraceRepository) List(ctx context.Context, filters secondary.TraceFilters) ([]*secondary.TraceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var traces []*secondary.TraceRecord
	for _, id := range r.order {
		trace, ok := r.traces[id]
		if !ok {
			continue
		}
		if filters.Reviewed != nil && trace.Reviewed != *filters.Reviewed {
			continue
		}
		if filters.Verdict != nil && trace.Verdict != *filters.Verdict {
			continue
		}
		traces = append(traces, copyTrace(trace))
	}
	return traces, nil
}

// ListByTag retrieves traces whose tag refs contain tagID.
func (r *TraceRepository) ListByTag(ctx context.Context, tagID string) ([]*secondary.TraceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var traces []*secondary.TraceRecord
	for _, id := range r.order {
		trace, ok := r.traces[id]
		if !ok {
			continue
		}
		if hasRef(trace.TagRefs, tagID) {
			traces = append(traces, copyTrace(trace))
		}
	}
	return traces, nil
}

// CountTagRefs returns the number of traces whose tag refs contain tagID.
func (r *TraceRepository) CountTagRefs(ctx context.Context, tagID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, trace := range r.traces {
		if hasRef(trace.TagRefs, tagID) {
			count++
		}
	}
	return count, nil
}

// Delete removes a trace.
func (r *TraceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.traces[id]; !ok {
		return &review.NotFoundError{Entity: "trace", ID: id}
	}
	delete(r.traces, id)
	return nil
}

func hasRef(refs []string, tagID string) bool {
	for _, ref := range refs {
		if ref == tagID {
			return true
		}
	}
	return false
}

func copyTrace(t *secondary.TraceRecord) *secondary.TraceRecord {
	c := *t
	c.TagRefs = append([]string(nil), t.TagRefs...)
	c.Steps = append([]secondary.TraceStepRecord(nil), t.Steps...)
	if t.Metadata != nil {
		c.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Ensure TraceRepository implements the interface.
var _ secondary.TraceRepository = (*TraceRepository)(nil)
