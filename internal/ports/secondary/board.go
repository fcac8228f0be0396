package secondary

import (
	"context"
	"time"
)

// StageStore defines the secondary port for kanban stage membership. Stage
// membership is expressed as the presence of a reference link in the stage
// directory; the store never touches canonical story content.
type StageStore interface {
	// EnsureStages creates the stage directories if missing.
	EnsureStages(ctx context.Context, stages []string) error

	// CreateLink places a stage link for the story. Creating a link that
	// already exists is not an error, so interrupted transitions can be
	// replayed.
	CreateLink(ctx context.Context, stage, storyID string) error

	// VerifyLink reports whether the story's link in the stage resolves to
	// an existing canonical story file.
	VerifyLink(ctx context.Context, stage, storyID string) (bool, error)

	// RemoveLink removes the story's link from the stage. Removing a link
	// that does not exist is not an error.
	RemoveLink(ctx context.Context, stage, storyID string) error

	// LinksFor returns every stage link observed for the story across the
	// given stages, with modification times for conflict repair.
	LinksFor(ctx context.Context, stages []string, storyID string) ([]StageLink, error)

	// ListStage returns all links in one stage directory. Dangling links
	// (canonical file missing) are flagged, not skipped.
	ListStage(ctx context.Context, stage string) ([]StageEntry, error)
}

// StageLink is one observed stage link for a story.
type StageLink struct {
	Stage   string
	ModTime time.Time
}

// StageEntry is one link found while listing a stage directory.
type StageEntry struct {
	StoryID  string
	Dangling bool
	ModTime  time.Time
}
