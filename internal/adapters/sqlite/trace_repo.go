package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

const traceColumns = "id, user_input, agent_output, system_prompt, steps, metadata, reviewed, verdict, open_code, tag_refs, reviewer_id, reviewed_at"

// TraceRepository implements secondary.TraceRepository with SQLite.
type TraceRepository struct {
	db *sql.DB
}

// NewTraceRepository creates a new SQLite trace repository.
func NewTraceRepository(db *sql.DB) *TraceRepository {
	return &TraceRepository{db: db}
}

// Upsert creates a trace or replaces an existing one by id. The upsert form
// keeps the rowid of the existing row, so insertion order survives re-imports.
func (r *TraceRepository) Upsert(ctx context.Context, trace *secondary.TraceRecord) error {
	steps, err := marshalSteps(trace.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode trace steps: %w", err)
	}
	metadata, err := marshalMetadata(trace.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode trace metadata: %w", err)
	}
	tagRefs, err := marshalStrings(trace.TagRefs)
	if err != nil {
		return fmt.Errorf("failed to encode trace tag refs: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO traces (`+traceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_input = excluded.user_input,
			agent_output = excluded.agent_output,
			system_prompt = excluded.system_prompt,
			steps = excluded.steps,
			metadata = excluded.metadata,
			reviewed = excluded.reviewed,
			verdict = excluded.verdict,
			open_code = excluded.open_code,
			tag_refs = excluded.tag_refs,
			reviewer_id = excluded.reviewer_id,
			reviewed_at = excluded.reviewed_at`,
		trace.ID, trace.UserInput, trace.AgentOutput, trace.SystemPrompt,
		steps, metadata, boolToInt(trace.Reviewed), trace.Verdict,
		trace.OpenCode, tagRefs, trace.ReviewerID, trace.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trace: %w", err)
	}

	return nil
}

// GetByID retrieves a trace by its ID.
func (r *TraceRepository) GetByID(ctx context.Context, id string) (*secondary.TraceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+traceColumns+" FROM traces WHERE id = ?", id,
	)

	record, err := scanTrace(row)
	if err == sql.ErrNoRows {
		return nil, &review.NotFoundError{Entity: "trace", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}

	return record, nil
}

// List retrieves traces matching the filters in insertion order.
func (r *TraceRepository) List(ctx context.Context, filters secondary.TraceFilters) ([]*secondary.TraceRecord, error) {
	query := "SELECT " + traceColumns + " FROM traces"
	var conditions []string
	var args []any

	if filters.Reviewed != nil {
		conditions = append(conditions, "reviewed = ?")
		args = append(args, boolToInt(*filters.Reviewed))
	}
	if filters.Verdict != nil {
		conditions = append(conditions, "verdict = ?")
		args = append(args, *filters.Verdict)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rowid ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	defer rows.Close()

	return collectTraces(rows)
}

// ListByTag retrieves traces whose tag refs contain tagID, in insertion
// order. Refs live in a JSON column, so membership is checked after decode
// rather than in SQL.
func (r *TraceRepository) ListByTag(ctx context.Context, tagID string) ([]*secondary.TraceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+traceColumns+" FROM traces WHERE tag_refs LIKE ? ORDER BY rowid ASC",
		"%"+`"`+tagID+`"`+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces by tag: %w", err)
	}
	defer rows.Close()

	candidates, err := collectTraces(rows)
	if err != nil {
		return nil, err
	}

	// The LIKE is a prefilter; confirm actual membership.
	var traces []*secondary.TraceRecord
	for _, trace := range candidates {
		for _, ref := range trace.TagRefs {
			if ref == tagID {
				traces = append(traces, trace)
				break
			}
		}
	}
	return traces, nil
}

// CountTagRefs returns the number of traces whose tag refs contain tagID.
func (r *TraceRepository) CountTagRefs(ctx context.Context, tagID string) (int, error) {
	traces, err := r.ListByTag(ctx, tagID)
	if err != nil {
		return 0, fmt.Errorf("failed to count tag refs: %w", err)
	}
	return len(traces), nil
}

// Delete removes a trace from persistence.
func (r *TraceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM traces WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trace: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &review.NotFoundError{Entity: "trace", ID: id}
	}

	return nil
}

func collectTraces(rows *sql.Rows) ([]*secondary.TraceRecord, error) {
	var traces []*secondary.TraceRecord
	for rows.Next() {
		record, err := scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trace: %w", err)
		}
		traces = append(traces, record)
	}
	return traces, rows.Err()
}

func scanTrace(s scanner) (*secondary.TraceRecord, error) {
	var (
		steps    string
		metadata string
		tagRefs  string
		reviewed int
	)

	record := &secondary.TraceRecord{}
	err := s.Scan(
		&record.ID, &record.UserInput, &record.AgentOutput, &record.SystemPrompt,
		&steps, &metadata, &reviewed, &record.Verdict,
		&record.OpenCode, &tagRefs, &record.ReviewerID, &record.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Reviewed = reviewed != 0
	if err := json.Unmarshal([]byte(steps), &record.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode trace steps: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &record.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode trace metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(tagRefs), &record.TagRefs); err != nil {
		return nil, fmt.Errorf("failed to decode trace tag refs: %w", err)
	}

	return record, nil
}

func marshalSteps(steps []secondary.TraceStepRecord) (string, error) {
	if steps == nil {
		steps = []secondary.TraceStepRecord{}
	}
	b, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func marshalMetadata(metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure TraceRepository implements the interface.
var _ secondary.TraceRepository = (*TraceRepository)(nil)
