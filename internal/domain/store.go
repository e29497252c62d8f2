package domain

import "context"

// AnnotationStore persists the drawings of one document as a single record.
// Load never fails: missing or malformed data yields an empty map.
type AnnotationStore interface {
	Save(ctx context.Context, documentID string, drawings Drawings) error
	Load(ctx context.Context, documentID string) Drawings
	Clear(ctx context.Context, documentID string) error
	// Documents lists the IDs of documents with a stored record.
	Documents(ctx context.Context) ([]string, error)
}

// PositionStore remembers the last viewed page per document.
type PositionStore interface {
	SaveLastPage(ctx context.Context, documentID string, page int) error
	LoadLastPage(ctx context.Context, documentID string) (int, bool)
}

// ToolStore persists the inking tool between launches.
type ToolStore interface {
	SaveTool(ctx context.Context, tool ToolConfig) error
	LoadTool(ctx context.Context) (ToolConfig, bool)
}
