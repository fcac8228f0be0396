package primary

import (
	"context"
	"time"
)

// WorkspaceService defines the primary port for workspace provisioning.
type WorkspaceService interface {
	// Provision materializes the story's working tree: clone, branch,
	// scaffold. Idempotent; a ready workspace is returned unchanged.
	Provision(ctx context.Context, storyID string) (*WorkspaceView, error)

	// Get returns the story's workspace record. Returns nil, nil when the
	// story has no workspace.
	Get(ctx context.Context, storyID string) (*WorkspaceView, error)

	// Teardown removes the working tree and the workspace record.
	Teardown(ctx context.Context, storyID string) error

	// List returns all workspace records for the project.
	List(ctx context.Context) ([]*WorkspaceView, error)
}

// WorkspaceView is the externally visible workspace state.
type WorkspaceView struct {
	StoryID   string
	Path      string
	RepoURL   string
	Branch    string
	Status    string
	UpdatedAt time.Time
	LastError string
}
