package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
	"github.com/example/filter/internal/templates"
)

// ProjectServiceImpl implements the ProjectService interface. It owns the
// lifetime of the .filter directory and the project's entry in the
// installation-wide registry.
type ProjectServiceImpl struct {
	projectRoot  string
	projectName  string
	registryPath string
	stageStore   secondary.StageStore
	storyRepo    secondary.StoryRepository
	audit        secondary.AuditWriter
}

// NewProjectService creates a ProjectService rooted at projectRoot. The
// project name is the root directory's basename.
func NewProjectService(
	projectRoot, registryPath string,
	stageStore secondary.StageStore,
	storyRepo secondary.StoryRepository,
	audit secondary.AuditWriter,
) *ProjectServiceImpl {
	return &ProjectServiceImpl{
		projectRoot:  projectRoot,
		projectName:  filepath.Base(projectRoot),
		registryPath: registryPath,
		stageStore:   stageStore,
		storyRepo:    storyRepo,
		audit:        audit,
	}
}

func (s *ProjectServiceImpl) filterDir() string {
	return filepath.Join(s.projectRoot, config.FilterDirName)
}

func (s *ProjectServiceImpl) configPath() string {
	return config.ProjectConfigPath(s.projectRoot)
}

// CreateProject creates the .filter structure. The prefix is registered with
// the installation before anything touches disk, so a collision fails the
// whole creation with nothing to clean up.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.ProjectInfo, error) {
	if _, err := os.Stat(s.configPath()); err == nil {
		return nil, fault.Validationf("%s is already a filter project", s.projectRoot)
	}

	cfg := config.DefaultProjectConfig(s.projectName)
	cfg.RepoURL = req.RepoURL

	registry, err := config.LoadRegistry(s.registryPath)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(config.RegistryEntry{
		Name:   cfg.ProjectName,
		Prefix: cfg.Prefix,
		Path:   s.projectRoot,
	}); err != nil {
		return nil, err
	}

	for _, dir := range []string{
		s.filterDir(),
		filepath.Join(s.filterDir(), "stories"),
		filepath.Join(s.filterDir(), "locks"),
		filepath.Join(s.filterDir(), "workspaces"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := s.stageStore.EnsureStages(ctx, cfg.KanbanStages); err != nil {
		return nil, err
	}

	if err := config.SaveProjectConfig(s.configPath(), cfg); err != nil {
		return nil, err
	}

	readme, err := templates.GetProjectReadme()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.filterDir(), "README.md"), []byte(readme), 0644); err != nil {
		return nil, fmt.Errorf("failed to write project README: %w", err)
	}

	if err := config.SaveRegistry(s.registryPath, registry); err != nil {
		return nil, err
	}

	if err := s.audit.LogCreate(ctx, "project", cfg.ProjectName); err != nil {
		return nil, err
	}

	return &primary.ProjectInfo{
		Name:      cfg.ProjectName,
		Prefix:    cfg.Prefix,
		Path:      s.projectRoot,
		CreatedAt: cfg.CreatedAt,
		Stages:    cfg.KanbanStages,
	}, nil
}

// DeleteProject removes the .filter structure. With stories present the
// deletion is refused unless forced; workspaces outside .filter are left
// alone either way.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, req primary.DeleteProjectRequest) error {
	if _, err := os.Stat(s.configPath()); os.IsNotExist(err) {
		return fault.Validationf("%s is not a filter project", s.projectRoot)
	}

	if !req.Force {
		stories, err := s.storyRepo.List(ctx)
		if err != nil {
			return err
		}
		if len(stories) > 0 {
			return fault.Validationf(
				"project has %d stories; use --force to delete anyway", len(stories))
		}
	}

	if err := os.RemoveAll(s.filterDir()); err != nil {
		return fmt.Errorf("failed to remove %s: %w", s.filterDir(), err)
	}

	registry, err := config.LoadRegistry(s.registryPath)
	if err != nil {
		return err
	}
	registry.Unregister(s.projectRoot)
	return config.SaveRegistry(s.registryPath, registry)
}

// Info summarizes the project and its board occupancy.
func (s *ProjectServiceImpl) Info(ctx context.Context) (*primary.ProjectInfo, error) {
	cfg, err := config.LoadProjectConfig(s.configPath(), s.projectName)
	if err != nil {
		return nil, err
	}

	stories, err := s.storyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(cfg.KanbanStages))
	for _, stage := range cfg.KanbanStages {
		entries, err := s.stageStore.ListStage(ctx, stage)
		if err != nil {
			return nil, err
		}
		counts[stage] = len(entries)
	}

	return &primary.ProjectInfo{
		Name:         cfg.ProjectName,
		Prefix:       cfg.Prefix,
		Path:         s.projectRoot,
		CreatedAt:    cfg.CreatedAt,
		Stages:       cfg.KanbanStages,
		TotalStories: len(stories),
		StageCounts:  counts,
	}, nil
}

// Ensure ProjectServiceImpl implements the interface
var _ primary.ProjectService = (*ProjectServiceImpl)(nil)
