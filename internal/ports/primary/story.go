// Package primary defines the primary ports (driving interfaces) for the
// application: the services the CLI layer calls.
package primary

import (
	"context"
	"time"
)

// StoryService defines the primary port for story lifecycle operations.
type StoryService interface {
	// CreateStory allocates an identifier, writes the canonical story file,
	// and links it into its initial stage.
	CreateStory(ctx context.Context, req CreateStoryRequest) (*CreateStoryResponse, error)

	// GetStory returns one story with its derived stage and workspace
	// binding, if any.
	GetStory(ctx context.Context, storyID string) (*StoryDetail, error)

	// ListStories lists stories across the board, optionally filtered to
	// one stage. Corruptions found while listing are reported alongside
	// the partial results, never instead of them.
	ListStories(ctx context.Context, req ListStoriesRequest) (*ListStoriesResponse, error)

	// DeleteStory removes the story's stage links, workspace, and
	// canonical file, in that order.
	DeleteStory(ctx context.Context, storyID string) (*DeleteStoryResponse, error)
}

// DeleteStoryResponse reports what the deletion removed.
type DeleteStoryResponse struct {
	StoryID       string
	RemovedStages []string
	HadWorkspace  bool
}

// CreateStoryRequest contains the inputs for story creation.
type CreateStoryRequest struct {
	Title       string
	Description string
	Stage       string // empty means the first configured stage
	RepoURL     string // overrides the project repository for this story
}

// CreateStoryResponse carries the created story.
type CreateStoryResponse struct {
	Story StoryView
}

// StoryView is the story summary shown in listings.
type StoryView struct {
	ID      string
	Title   string
	Stage   string // empty when the story has no stage link
	Created time.Time
}

// StoryDetail is the full story view.
type StoryDetail struct {
	StoryView
	Content   string
	Workspace *WorkspaceView
}

// ListStoriesRequest contains filter options for listing.
type ListStoriesRequest struct {
	Stage string
}

// ListStoriesResponse carries listing results plus recoverable corruption
// found along the way (dangling links, duplicate links).
type ListStoriesResponse struct {
	Stories     []StoryView
	Corruptions []Corruption
}

// Corruption describes one recoverable inconsistency observed during a
// read-only operation.
type Corruption struct {
	StoryID string
	Stage   string
	Detail  string
}
