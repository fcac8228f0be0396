// Package wire provides dependency injection for the filter application.
// A Container is built once per invocation, rooted at the discovered project.
package wire

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/filter/internal/adapters/filesystem"
	"github.com/example/filter/internal/adapters/git"
	"github.com/example/filter/internal/adapters/sqlite"
	"github.com/example/filter/internal/app"
	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/context"
	"github.com/example/filter/internal/core/board"
	"github.com/example/filter/internal/db"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
	"github.com/example/filter/internal/tmux"
)

// Container holds the wired services for one invocation.
type Container struct {
	ProjectRoot string
	Settings    config.Settings
	Layout      filesystem.Layout

	Projects   primary.ProjectService
	Stories    primary.StoryService
	Board      primary.BoardService
	Workspaces primary.WorkspaceService

	journal *sql.DB
}

// Discover finds the project root above the working directory and wires a
// container for it. Fails with a validation error outside any project.
func Discover() (*Container, error) {
	root, err := context.FindProjectRootFromCwd()
	if err != nil {
		return nil, err
	}
	return New(root)
}

// NewAt wires a container rooted at the given directory, or at the working
// directory when dir is empty, without requiring an existing project. Used
// by project create.
func NewAt(dir string) (*Container, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return New(root)
}

// New wires all adapters and services for the project at root.
func New(root string) (*Container, error) {
	settings, err := loadSettings(root)
	if err != nil {
		return nil, err
	}

	layout := filesystem.NewLayout(root)

	stageNames := append([]string(nil), board.DefaultStages...)
	if cfg, err := config.LoadProjectConfig(layout.ConfigPath(), filepath.Base(root)); err == nil {
		stageNames = cfg.KanbanStages
	}
	stages, err := board.NewStages(stageNames)
	if err != nil {
		return nil, err
	}

	journal, err := db.Open(layout.JournalPath())
	if err != nil {
		return nil, err
	}

	audit := sqlite.NewAuditJournal(journal)
	storyRepo := filesystem.NewStoryRepository(layout)
	stageStore := filesystem.NewStageStore(layout)
	wsStore := filesystem.NewWorkspaceStore(layout)
	configStore := filesystem.NewConfigStore(layout)
	locker := filesystem.NewLockManager(layout)
	gitClient := git.NewClient()

	boardSvc := app.NewBoardService(stages, stageStore, storyRepo, locker, audit, settings.LockTimeout)
	workspaceSvc := app.NewWorkspaceService(settings, storyRepo, wsStore, gitClient, configStore, locker, audit)
	storySvc := app.NewStoryService(stages, configStore, storyRepo, stageStore, boardSvc, workspaceSvc, locker, audit, settings.LockTimeout)
	projectSvc := app.NewProjectService(root, config.RegistryPath(), stageStore, storyRepo, audit)

	return &Container{
		ProjectRoot: root,
		Settings:    settings,
		Layout:      layout,
		Projects:    projectSvc,
		Stories:     storySvc,
		Board:       boardSvc,
		Workspaces:  workspaceSvc,
		journal:     journal,
	}, nil
}

// Sessions constructs the tmux session manager on demand, so commands that
// never touch tmux work on hosts without it.
func (c *Container) Sessions() (secondary.SessionManager, error) {
	mgr, err := tmux.NewGotmuxAdapter()
	if err != nil {
		return nil, fmt.Errorf("tmux is required for workspace attach: %w", err)
	}
	return mgr, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	if c.journal != nil {
		return c.journal.Close()
	}
	return nil
}

// loadSettings merges the three settings layers in precedence order:
// workspace > project > global.
func loadSettings(root string) (config.Settings, error) {
	settings, err := config.LoadGlobalSettings()
	if err != nil {
		return config.Settings{}, err
	}

	var layers []config.Overrides
	if cfg, err := config.LoadProjectConfig(config.ProjectConfigPath(root), filepath.Base(root)); err == nil {
		layers = append(layers, config.ProjectOverrides(cfg))
	}
	local, err := config.LoadLocalOverrides(filepath.Join(root, config.LocalOverridesName))
	if err != nil {
		return config.Settings{}, err
	}
	layers = append(layers, local)

	return config.Merge(settings, layers...), nil
}
