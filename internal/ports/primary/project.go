package primary

import "context"

// ProjectService defines the primary port for project lifecycle operations.
type ProjectService interface {
	// CreateProject creates the .filter structure and registers the
	// project's prefix with the installation. A prefix collision fails the
	// whole creation.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectInfo, error)

	// DeleteProject removes the .filter structure. Refuses when stories
	// exist unless forced.
	DeleteProject(ctx context.Context, req DeleteProjectRequest) error

	// Info summarizes the project and its board occupancy.
	Info(ctx context.Context) (*ProjectInfo, error)
}

// CreateProjectRequest contains the inputs for project creation.
type CreateProjectRequest struct {
	RepoURL string
}

// DeleteProjectRequest contains the inputs for project deletion.
type DeleteProjectRequest struct {
	Force bool
}

// ProjectInfo summarizes a project.
type ProjectInfo struct {
	Name         string
	Prefix       string
	Path         string
	CreatedAt    string
	Stages       []string
	TotalStories int
	StageCounts  map[string]int
}
