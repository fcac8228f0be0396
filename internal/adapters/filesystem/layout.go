// Package filesystem contains filesystem-based adapter implementations:
// canonical story storage, kanban stage links, workspace records, and
// advisory locks. All state lives under <project-root>/.filter/.
package filesystem

import "path/filepath"

// Layout resolves every path inside a project's .filter directory. The
// directory structure is a compatibility surface and must not change:
//
//	.filter/config.yml
//	.filter/stories/<ID>.md
//	.filter/kanban/<stage>/<ID>.md  -> ../../stories/<ID>.md
//	.filter/locks/<name>.lock
//	.filter/workspaces/<ID>.json
//	.filter/journal.db
type Layout struct {
	ProjectRoot string
}

// NewLayout creates a layout rooted at the given project directory.
func NewLayout(projectRoot string) Layout {
	return Layout{ProjectRoot: projectRoot}
}

// FilterDir returns the .filter directory path.
func (l Layout) FilterDir() string {
	return filepath.Join(l.ProjectRoot, ".filter")
}

// ConfigPath returns the project config.yml path.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.FilterDir(), "config.yml")
}

// StoriesDir returns the canonical story directory.
func (l Layout) StoriesDir() string {
	return filepath.Join(l.FilterDir(), "stories")
}

// StoryPath returns the canonical file path for a story.
func (l Layout) StoryPath(storyID string) string {
	return filepath.Join(l.StoriesDir(), storyID+".md")
}

// KanbanDir returns the kanban board directory.
func (l Layout) KanbanDir() string {
	return filepath.Join(l.FilterDir(), "kanban")
}

// StageDir returns the directory for one stage.
func (l Layout) StageDir(stage string) string {
	return filepath.Join(l.KanbanDir(), stage)
}

// LinkPath returns the stage link path for a story.
func (l Layout) LinkPath(stage, storyID string) string {
	return filepath.Join(l.StageDir(stage), storyID+".md")
}

// LinkTarget returns the relative symlink target from a stage directory back
// to the canonical story file.
func (l Layout) LinkTarget(storyID string) string {
	return filepath.Join("..", "..", "stories", storyID+".md")
}

// LocksDir returns the advisory lock directory.
func (l Layout) LocksDir() string {
	return filepath.Join(l.FilterDir(), "locks")
}

// LockPath returns the lock file path for a named lock.
func (l Layout) LockPath(name string) string {
	return filepath.Join(l.LocksDir(), name+".lock")
}

// WorkspacesDir returns the workspace record directory.
func (l Layout) WorkspacesDir() string {
	return filepath.Join(l.FilterDir(), "workspaces")
}

// WorkspaceRecordPath returns the record path for a story's workspace.
func (l Layout) WorkspaceRecordPath(storyID string) string {
	return filepath.Join(l.WorkspacesDir(), storyID+".json")
}

// JournalPath returns the sqlite audit journal path.
func (l Layout) JournalPath() string {
	return filepath.Join(l.FilterDir(), "journal.db")
}

// ReadmePath returns the generated README path.
func (l Layout) ReadmePath() string {
	return filepath.Join(l.FilterDir(), "README.md")
}
