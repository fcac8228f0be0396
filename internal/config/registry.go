package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/filter/internal/fault"
)

// RegistryEntry records one project known to this installation.
type RegistryEntry struct {
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"`
	Path   string `yaml:"path"`
}

// Registry is the installation-wide project index at
// ~/.config/filter/projects.yaml. Its job is to catch prefix collisions at
// project-creation time instead of letting two projects mint the same story
// identifiers.
type Registry struct {
	Projects []RegistryEntry `yaml:"projects"`
}

// RegistryPath returns the location of the project registry file.
func RegistryPath() string {
	return filepath.Join(UserConfigDir(), "projects.yaml")
}

// LoadRegistry reads the registry, returning an empty one when the file does
// not exist yet.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project registry: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse project registry: %w", err)
	}
	return &reg, nil
}

// SaveRegistry writes the registry atomically.
func SaveRegistry(path string, reg *Registry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal project registry: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write project registry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace project registry: %w", err)
	}
	return nil
}

// Register adds a project, rejecting prefix collisions. Re-registering the
// same path with the same prefix is a no-op so project create stays
// idempotent after a partial failure.
func (r *Registry) Register(entry RegistryEntry) error {
	for _, existing := range r.Projects {
		if existing.Prefix == entry.Prefix {
			if existing.Path == entry.Path {
				return nil
			}
			return fault.Validationf(
				"prefix %q is already used by project %q at %s",
				entry.Prefix, existing.Name, existing.Path)
		}
	}
	r.Projects = append(r.Projects, entry)
	return nil
}

// Unregister removes the project at the given path. Unknown paths are
// ignored.
func (r *Registry) Unregister(path string) {
	kept := r.Projects[:0]
	for _, entry := range r.Projects {
		if entry.Path != path {
			kept = append(kept, entry)
		}
	}
	r.Projects = kept
}
