// Package config handles filter configuration: the per-project config.yml
// inside .filter/, user-level settings, and the installation-wide project
// registry used for prefix collision detection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/filter/internal/core/board"
	"github.com/example/filter/internal/core/story"
)

// FilterDirName is the per-project state directory.
const FilterDirName = ".filter"

// ProjectConfig mirrors .filter/config.yml. Field order matches the file
// layout written by every filter version, so configs round-trip cleanly.
type ProjectConfig struct {
	ProjectName     string   `yaml:"project_name"`
	Prefix          string   `yaml:"prefix"`
	LastStoryNumber int      `yaml:"last_story_number"`
	CreatedAt       string   `yaml:"created_at"`
	KanbanStages    []string `yaml:"kanban_stages"`

	// Workspace provisioning settings, absent in configs created before
	// workspaces existed.
	RepoURL        string `yaml:"repo_url,omitempty"`
	DefaultBranch  string `yaml:"default_branch,omitempty"`
	BranchTemplate string `yaml:"branch_template,omitempty"`
}

// DefaultProjectConfig builds the initial configuration for a project.
func DefaultProjectConfig(projectName string) ProjectConfig {
	return ProjectConfig{
		ProjectName:     projectName,
		Prefix:          story.GeneratePrefix(projectName),
		LastStoryNumber: 0,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		KanbanStages:    append([]string(nil), board.DefaultStages...),
	}
}

// LoadProjectConfig reads config.yml from the given path. Missing keys are
// filled from defaults so configs written by older versions keep working.
func LoadProjectConfig(path, projectName string) (ProjectConfig, error) {
	defaults := DefaultProjectConfig(projectName)

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaults, fmt.Errorf("failed to parse project config: %w", err)
	}

	if cfg.ProjectName == "" {
		cfg.ProjectName = defaults.ProjectName
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaults.Prefix
	}
	if cfg.CreatedAt == "" {
		cfg.CreatedAt = defaults.CreatedAt
	}
	if len(cfg.KanbanStages) == 0 {
		cfg.KanbanStages = defaults.KanbanStages
	}
	return cfg, nil
}

// SaveProjectConfig writes config.yml. The write goes through a temp file
// and rename so a killed process never leaves a half-written config.
func SaveProjectConfig(path string, cfg ProjectConfig) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal project config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace project config: %w", err)
	}
	return nil
}

// ProjectConfigPath returns the config.yml path for a project root.
func ProjectConfigPath(projectRoot string) string {
	return filepath.Join(projectRoot, FilterDirName, "config.yml")
}
