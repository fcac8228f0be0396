package secondary

import (
	"context"
	"time"
)

// Workspace provisioning statuses. Absence of a record means unprovisioned.
const (
	WorkspaceCloning = "cloning"
	WorkspaceReady   = "ready"
	WorkspaceFailed  = "failed"
)

// WorkspaceStore defines the secondary port for workspace records. Records
// are the durable provisioning state a killed process leaves behind for the
// next invocation's idempotent retry.
type WorkspaceStore interface {
	// Read retrieves the workspace record for a story. Returns nil, nil
	// when no record exists (unprovisioned).
	Read(ctx context.Context, storyID string) (*WorkspaceRecord, error)

	// Write persists the record, replacing any previous one atomically.
	Write(ctx context.Context, record *WorkspaceRecord) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, storyID string) error

	// List returns all workspace records.
	List(ctx context.Context) ([]*WorkspaceRecord, error)
}

// WorkspaceRecord represents a story's workspace binding as stored on disk.
type WorkspaceRecord struct {
	StoryID   string    `json:"story_id"`
	Path      string    `json:"path"`
	RepoURL   string    `json:"repo_url"`
	Branch    string    `json:"branch"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	LastError string    `json:"last_error,omitempty"`
}
