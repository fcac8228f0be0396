package filesystem

import (
	"context"
	"path/filepath"

	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/ports/secondary"
)

// ConfigStore implements secondary.ProjectConfigStore over .filter/config.yml.
type ConfigStore struct {
	layout Layout
}

// NewConfigStore creates a config store for the given layout.
func NewConfigStore(layout Layout) *ConfigStore {
	return &ConfigStore{layout: layout}
}

// Load reads the current project configuration.
func (s *ConfigStore) Load(ctx context.Context) (*secondary.ProjectConfigRecord, error) {
	cfg, err := config.LoadProjectConfig(s.layout.ConfigPath(), filepath.Base(s.layout.ProjectRoot))
	if err != nil {
		return nil, err
	}
	return &secondary.ProjectConfigRecord{
		ProjectName:     cfg.ProjectName,
		Prefix:          cfg.Prefix,
		LastStoryNumber: cfg.LastStoryNumber,
		CreatedAt:       cfg.CreatedAt,
		KanbanStages:    cfg.KanbanStages,
		RepoURL:         cfg.RepoURL,
		DefaultBranch:   cfg.DefaultBranch,
		BranchTemplate:  cfg.BranchTemplate,
	}, nil
}

// Save persists the configuration atomically.
func (s *ConfigStore) Save(ctx context.Context, record *secondary.ProjectConfigRecord) error {
	return config.SaveProjectConfig(s.layout.ConfigPath(), config.ProjectConfig{
		ProjectName:     record.ProjectName,
		Prefix:          record.Prefix,
		LastStoryNumber: record.LastStoryNumber,
		CreatedAt:       record.CreatedAt,
		KanbanStages:    record.KanbanStages,
		RepoURL:         record.RepoURL,
		DefaultBranch:   record.DefaultBranch,
		BranchTemplate:  record.BranchTemplate,
	})
}

// Ensure ConfigStore implements the interface
var _ secondary.ProjectConfigStore = (*ConfigStore)(nil)
