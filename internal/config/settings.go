package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings are the resolved runtime settings for one invocation. They come
// from three layers merged in documented precedence order:
//
//	workspace (.filter.local.yml next to the working directory)
//	> project (.filter/config.yml)
//	> global  (~/.config/filter/config.yaml + environment)
//
// FILTER_LOCK_TIMEOUT and FILTER_NON_INTERACTIVE are the only environment
// inputs read directly.
type Settings struct {
	WorkspaceRoot  string
	LockTimeout    time.Duration
	CloneTimeout   time.Duration
	CloneRetries   int
	NonInteractive bool
	DefaultBranch  string
	BranchTemplate string
}

// Overrides is one layer of optional settings. Nil fields leave the lower
// layer's value in place.
type Overrides struct {
	WorkspaceRoot  *string
	LockTimeout    *time.Duration
	CloneTimeout   *time.Duration
	CloneRetries   *int
	NonInteractive *bool
	DefaultBranch  *string
	BranchTemplate *string
}

// UnmarshalYAML decodes an overrides layer. Durations are written as strings
// ("30s", "5m"), which yaml cannot decode into time.Duration on its own.
func (o *Overrides) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		WorkspaceRoot  *string `yaml:"workspace_root"`
		LockTimeout    *string `yaml:"lock_timeout"`
		CloneTimeout   *string `yaml:"clone_timeout"`
		CloneRetries   *int    `yaml:"clone_retries"`
		NonInteractive *bool   `yaml:"non_interactive"`
		DefaultBranch  *string `yaml:"default_branch"`
		BranchTemplate *string `yaml:"branch_template"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	o.WorkspaceRoot = raw.WorkspaceRoot
	o.CloneRetries = raw.CloneRetries
	o.NonInteractive = raw.NonInteractive
	o.DefaultBranch = raw.DefaultBranch
	o.BranchTemplate = raw.BranchTemplate

	if raw.LockTimeout != nil {
		d, err := time.ParseDuration(*raw.LockTimeout)
		if err != nil {
			return fmt.Errorf("invalid lock_timeout: %w", err)
		}
		o.LockTimeout = &d
	}
	if raw.CloneTimeout != nil {
		d, err := time.ParseDuration(*raw.CloneTimeout)
		if err != nil {
			return fmt.Errorf("invalid clone_timeout: %w", err)
		}
		o.CloneTimeout = &d
	}
	return nil
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Settings{
		WorkspaceRoot:  filepath.Join(home, "src", "filter-workspaces"),
		LockTimeout:    30 * time.Second,
		CloneTimeout:   5 * time.Minute,
		CloneRetries:   3,
		NonInteractive: false,
		DefaultBranch:  "main",
		BranchTemplate: "story/{{.ID}}",
	}
}

// LoadGlobalSettings reads the user config file and environment overrides.
func LoadGlobalSettings() (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("reading user config: %w", err)
		}
	}

	v.BindEnv("lock_timeout", "FILTER_LOCK_TIMEOUT")
	v.BindEnv("non_interactive", "FILTER_NON_INTERACTIVE")

	return Settings{
		WorkspaceRoot:  v.GetString("workspace_root"),
		LockTimeout:    v.GetDuration("lock_timeout"),
		CloneTimeout:   v.GetDuration("clone_timeout"),
		CloneRetries:   v.GetInt("clone_retries"),
		NonInteractive: v.GetBool("non_interactive"),
		DefaultBranch:  v.GetString("default_branch"),
		BranchTemplate: v.GetString("branch_template"),
	}, nil
}

// Merge applies override layers to base in order; later layers win. This is
// the whole precedence model: call with project overrides first, workspace
// overrides last.
func Merge(base Settings, layers ...Overrides) Settings {
	merged := base
	for _, layer := range layers {
		if layer.WorkspaceRoot != nil {
			merged.WorkspaceRoot = *layer.WorkspaceRoot
		}
		if layer.LockTimeout != nil {
			merged.LockTimeout = *layer.LockTimeout
		}
		if layer.CloneTimeout != nil {
			merged.CloneTimeout = *layer.CloneTimeout
		}
		if layer.CloneRetries != nil {
			merged.CloneRetries = *layer.CloneRetries
		}
		if layer.NonInteractive != nil {
			merged.NonInteractive = *layer.NonInteractive
		}
		if layer.DefaultBranch != nil {
			merged.DefaultBranch = *layer.DefaultBranch
		}
		if layer.BranchTemplate != nil {
			merged.BranchTemplate = *layer.BranchTemplate
		}
	}
	return merged
}

// ProjectOverrides extracts the settings layer carried by a project config.
func ProjectOverrides(cfg ProjectConfig) Overrides {
	var o Overrides
	if cfg.DefaultBranch != "" {
		o.DefaultBranch = &cfg.DefaultBranch
	}
	if cfg.BranchTemplate != "" {
		o.BranchTemplate = &cfg.BranchTemplate
	}
	return o
}

// LocalOverridesName is the optional per-checkout settings file next to the
// project root. It is the highest-precedence layer and is meant to stay out
// of version control.
const LocalOverridesName = ".filter.local.yml"

// LoadLocalOverrides reads a workspace overrides file. A missing file is an
// empty layer, not an error.
func LoadLocalOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Overrides{}, nil
	}
	if err != nil {
		return Overrides{}, fmt.Errorf("reading local overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parsing local overrides: %w", err)
	}
	return o, nil
}

// UserConfigDir returns the XDG config directory for filter.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filter")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "filter")
	}
	return filepath.Join(home, ".config", "filter")
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("workspace_root", d.WorkspaceRoot)
	v.SetDefault("lock_timeout", d.LockTimeout.String())
	v.SetDefault("clone_timeout", d.CloneTimeout.String())
	v.SetDefault("clone_retries", d.CloneRetries)
	v.SetDefault("non_interactive", d.NonInteractive)
	v.SetDefault("default_branch", d.DefaultBranch)
	v.SetDefault("branch_template", d.BranchTemplate)
}
