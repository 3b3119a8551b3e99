package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

const sessionColumns = "id, name, trace_ids, tag_snapshot, mode, total_traces, reviewed_count, passed_count, failed_count, deferred_count, randomize_order, source, created_at, updated_at"

// SessionRepository implements secondary.SessionRepository with SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	traceIDs, snapshot, err := encodeSessionFields(session)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		session.ID, session.Name, traceIDs, snapshot, session.Mode,
		session.TotalTraces, session.ReviewedCount, session.PassedCount,
		session.FailedCount, session.DeferredCount,
		boolToInt(session.RandomizeOrder), session.Source,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id,
	)

	record, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, &review.NotFoundError{Entity: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return record, nil
}

// List retrieves all sessions in creation order.
func (r *SessionRepository) List(ctx context.Context) ([]*secondary.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*secondary.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, record)
	}

	return sessions, rows.Err()
}

// Update replaces an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *secondary.SessionRecord) error {
	traceIDs, snapshot, err := encodeSessionFields(session)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			name = ?, trace_ids = ?, tag_snapshot = ?, mode = ?,
			total_traces = ?, reviewed_count = ?, passed_count = ?,
			failed_count = ?, deferred_count = ?,
			randomize_order = ?, source = ?, updated_at = ?
		WHERE id = ?`,
		session.Name, traceIDs, snapshot, session.Mode,
		session.TotalTraces, session.ReviewedCount, session.PassedCount,
		session.FailedCount, session.DeferredCount,
		boolToInt(session.RandomizeOrder), session.Source, session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &review.NotFoundError{Entity: "session", ID: session.ID}
	}

	return nil
}

// Delete removes a session from persistence.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &review.NotFoundError{Entity: "session", ID: id}
	}

	return nil
}

func encodeSessionFields(session *secondary.SessionRecord) (traceIDs, snapshot string, err error) {
	traceIDs, err = marshalStrings(session.TraceIDs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode session trace ids: %w", err)
	}

	tagSnapshot := session.TagSnapshot
	if tagSnapshot == nil {
		tagSnapshot = []secondary.TagRecord{}
	}
	b, err := json.Marshal(tagSnapshot)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode session tag snapshot: %w", err)
	}

	return traceIDs, string(b), nil
}

func scanSession(s scanner) (*secondary.SessionRecord, error) {
	var (
		traceIDs       string
		snapshot       string
		randomizeOrder int
	)

	record := &secondary.SessionRecord{}
	err := s.Scan(
		&record.ID, &record.Name, &traceIDs, &snapshot, &record.Mode,
		&record.TotalTraces, &record.ReviewedCount, &record.PassedCount,
		&record.FailedCount, &record.DeferredCount,
		&randomizeOrder, &record.Source, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.RandomizeOrder = randomizeOrder != 0
	if err := json.Unmarshal([]byte(traceIDs), &record.TraceIDs); err != nil {
		return nil, fmt.Errorf("failed to decode session trace ids: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshot), &record.TagSnapshot); err != nil {
		return nil, fmt.Errorf("failed to decode session tag snapshot: %w", err)
	}

	return record, nil
}

// Ensure SessionRepository implements the interface.
var _ secondary.SessionRepository = (*SessionRepository)(nil)
