package primary

import "context"

// BoardService defines the primary port for the kanban stage state machine.
type BoardService interface {
	// CurrentStage derives a story's stage from its stage links. A story
	// linked in more than one stage is repaired deterministically before
	// the result is returned.
	CurrentStage(ctx context.Context, storyID string) (*StageInfo, error)

	// Transition atomically moves a story to another stage. Concurrent
	// transitions of the same story are serialized by a per-story lock;
	// transitions of different stories proceed independently.
	Transition(ctx context.Context, req TransitionRequest) (*TransitionResponse, error)

	// ListStage resolves every link in a stage back to its story.
	ListStage(ctx context.Context, stage string) (*StageListing, error)

	// Stages returns the configured stage names in board order.
	Stages(ctx context.Context) ([]string, error)
}

// StageInfo is the derived stage state for one story.
type StageInfo struct {
	StoryID  string
	Stage    string   // empty when the story has no stage link
	Exists   bool     // canonical story file present (disambiguates "not started" from "deleted")
	Repaired []string // stages whose stale links the call removed
}

// TransitionRequest contains the inputs for a stage transition.
type TransitionRequest struct {
	StoryID   string
	FromStage string // optional caller assertion; empty to auto-discover
	ToStage   string
}

// TransitionResponse reports the completed transition.
type TransitionResponse struct {
	StoryID   string
	FromStage string // empty when the story was unstarted
	ToStage   string
}

// StageListing is the resolved contents of one stage.
type StageListing struct {
	Stage       string
	Stories     []StoryView
	Corruptions []Corruption
}
