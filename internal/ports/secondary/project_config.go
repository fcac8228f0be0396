package secondary

import "context"

// ProjectConfigStore defines the secondary port for the project config.yml.
// The story-number counter lives here, so loads and saves around an
// increment must happen under the config lock.
type ProjectConfigStore interface {
	// Load reads the current project configuration.
	Load(ctx context.Context) (*ProjectConfigRecord, error)

	// Save persists the configuration atomically.
	Save(ctx context.Context, record *ProjectConfigRecord) error
}

// ProjectConfigRecord mirrors config.yml for the application layer.
type ProjectConfigRecord struct {
	ProjectName     string
	Prefix          string
	LastStoryNumber int
	CreatedAt       string
	KanbanStages    []string
	RepoURL         string
	DefaultBranch   string
	BranchTemplate  string
}
