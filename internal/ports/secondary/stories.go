// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// the filesystem, git, and the audit journal.
package secondary

import (
	"context"
	"time"
)

// StoryRepository defines the secondary port for canonical story storage.
type StoryRepository interface {
	// Create persists a new story file. Fails if the story already exists.
	Create(ctx context.Context, story *StoryRecord) error

	// GetByID retrieves a story by its ID. Returns nil, nil when the story
	// does not exist.
	GetByID(ctx context.Context, id string) (*StoryRecord, error)

	// Exists reports whether the canonical story file exists.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes the canonical story file.
	Delete(ctx context.Context, id string) error

	// List retrieves all stories in the repository.
	List(ctx context.Context) ([]*StoryRecord, error)
}

// StoryRecord represents a story as stored on disk.
type StoryRecord struct {
	ID      string
	Title   string
	Content string
	Created time.Time
	Path    string
}
