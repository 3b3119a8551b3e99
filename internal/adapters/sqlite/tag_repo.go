// Package sqlite contains SQLite implementations of repository interfaces.
//
// Structured fields (examples, steps, metadata, tag refs, snapshots) are
// stored as JSON text columns; SQLite is the durability layer, not the query
// engine for those fields.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// TagRepository implements secondary.TagRepository with SQLite.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new SQLite tag repository.
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create persists a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *secondary.TagRecord) error {
	examples, err := marshalStrings(tag.Examples)
	if err != nil {
		return fmt.Errorf("failed to encode tag examples: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO tags (id, name, description, color, usage_count, examples, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		tag.ID, tag.Name, tag.Description, tag.Color, tag.UsageCount, examples, tag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetByID retrieves a tag by its ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*secondary.TagRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, color, usage_count, examples, created_at FROM tags WHERE id = ?",
		id,
	)

	record, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, &review.NotFoundError{Entity: "tag", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return record, nil
}

// List retrieves all tags in creation order.
func (r *TagRepository) List(ctx context.Context) ([]*secondary.TagRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, color, usage_count, examples, created_at FROM tags ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*secondary.TagRecord
	for rows.Next() {
		record, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, record)
	}

	return tags, rows.Err()
}

// Update updates an existing tag.
func (r *TagRepository) Update(ctx context.Context, tag *secondary.TagRecord) error {
	examples, err := marshalStrings(tag.Examples)
	if err != nil {
		return fmt.Errorf("failed to encode tag examples: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE tags SET name = ?, description = ?, color = ?, usage_count = ?, examples = ? WHERE id = ?",
		tag.Name, tag.Description, tag.Color, tag.UsageCount, examples, tag.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &review.NotFoundError{Entity: "tag", ID: tag.ID}
	}

	return nil
}

// Delete removes a tag from persistence.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return &review.NotFoundError{Entity: "tag", ID: id}
	}

	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTag(s scanner) (*secondary.TagRecord, error) {
	var examples string
	record := &secondary.TagRecord{}
	err := s.Scan(&record.ID, &record.Name, &record.Description, &record.Color, &record.UsageCount, &examples, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(examples), &record.Examples); err != nil {
		return nil, fmt.Errorf("failed to decode tag examples: %w", err)
	}
	return record, nil
}

// marshalStrings encodes a string slice as JSON, mapping nil to [].
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Ensure TagRepository implements the interface.
var _ secondary.TagRepository = (*TagRepository)(nil)
