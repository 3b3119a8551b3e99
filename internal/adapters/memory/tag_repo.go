// Package memory contains in-memory implementations of repository
// interfaces, used for ephemeral runs and as a reference implementation of
// the port contracts. All repositories are safe for concurrent use; each
// guards its collection with a single mutex.
package memory

import (
	"context"
	"sync"

	"github.com/example/sift/internal/core/review"
	"github.com/example/sift/internal/ports/secondary"
)

// TagRepository implements secondary.TagRepository in memory.
type TagRepository struct {
	mu    sync.Mutex
	tags  map[string]*secondary.TagRecord
	order []string
}

// NewTagRepository creates a new in-memory tag repository.
func NewTagRepository() *TagRepository {
	return &TagRepository{tags: make(map[string]*secondary.TagRecord)}
}

// Create persists a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *secondary.TagRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[tag.ID]; ok {
		return &review.ConflictError{Resource: "tag", Value: tag.ID}
	}
	r.tags[tag.ID] = copyTag(tag)
	r.order = append(r.order, tag.ID)
	return nil
}

// GetByID retrieves a tag by its ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*secondary.TagRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag, ok := r.tags[id]
	if !ok {
		return nil, &review.NotFoundError{Entity: "tag", ID: id}
	}
	return copyTag(tag), nil
}

// List retrieves all tags in creation order.
func (r *TagRepository) List(ctx context.Context) ([]*secondary.TagRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tags []*secondary.TagRecord
	for _, id := range r.order {
		if tag, ok := r.tags[id]; ok {
			tags = append(tags, copyTag(tag))
		}
	}
	return tags, nil
}

// Update updates an existing tag.
func (r *TagRepository) Update(ctx context.Context, tag *secondary.TagRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[tag.ID]; !ok {
		return &review.NotFoundError{Entity: "tag", ID: tag.ID}
	}
	r.tags[tag.ID] = copyTag(tag)
	return nil
}

// Delete removes a tag.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tags[id]; !ok {
		return &review.NotFoundError{Entity: "tag", ID: id}
	}
	delete(r.tags, id)
	return nil
}

// copyTag prevents callers from mutating stored records through returned
// pointers.
func copyTag(t *secondary.TagRecord) *secondary.TagRecord {
	c := *t
	c.Examples = append([]string(nil), t.Examples...)
	return &c
}

// Ensure TagRepository implements the interface.
var _ secondary.TagRepository = (*TagRepository)(nil)
