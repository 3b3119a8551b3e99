package primary

import "context"

// TagService defines the primary port for axial tag operations: the tag
// registry owning the shared failure taxonomy.
type TagService interface {
	// CreateTag creates a new tag. Name uniqueness is case-insensitive
	// across all live tags.
	CreateTag(ctx context.Context, req CreateTagRequest) (*CreateTagResponse, error)

	// GetTag retrieves a tag by ID. UsageCount is derived from the live
	// trace refs at read time.
	GetTag(ctx context.Context, tagID string) (*Tag, error)

	// ListTags retrieves all tags with derived usage counts.
	ListTags(ctx context.Context) ([]*Tag, error)

	// UpdateTag updates a tag's name, description and color. Usage count
	// and examples are untouched.
	UpdateTag(ctx context.Context, tagID string, req UpdateTagRequest) (*Tag, error)

	// DeleteTag deletes a tag. With cascadeUntag, the tag id is removed
	// from every referencing trace first.
	DeleteTag(ctx context.Context, tagID string, cascadeUntag bool) (*DeleteTagResponse, error)

	// MergeTags rewrites every reference to sourceID into targetID, folds
	// the source's usage count and examples into the target, and deletes
	// the source tag.
	MergeTags(ctx context.Context, sourceID, targetID string) (*MergeTagsResponse, error)
}

// CreateTagRequest contains parameters for creating a tag.
type CreateTagRequest struct {
	Name        string
	Description string
	Color       string
}

// CreateTagResponse contains the result of creating a tag.
type CreateTagResponse struct {
	TagID string
	Tag   *Tag
}

// UpdateTagRequest contains parameters for updating a tag.
type UpdateTagRequest struct {
	Name        string
	Description string
	Color       string
}

// DeleteTagResponse contains the result of deleting a tag.
type DeleteTagResponse struct {
	// TracesAffected is the number of traces the tag id was removed from
	// (zero when cascadeUntag was false).
	TracesAffected int
}

// MergeTagsResponse contains the result of merging two tags.
type MergeTagsResponse struct {
	MergedTag      *Tag
	TracesAffected int
}

// Tag represents an axial tag entity at the port boundary.
type Tag struct {
	ID          string
	Name        string
	Description string
	Color       string
	UsageCount  int
	Examples    []string
	CreatedAt   string
}
