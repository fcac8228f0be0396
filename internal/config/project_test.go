package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/filter/internal/core/board"
)

func TestDefaultProjectConfig(t *testing.T) {
	cfg := DefaultProjectConfig("widget")
	if cfg.ProjectName != "widget" {
		t.Errorf("ProjectName = %q", cfg.ProjectName)
	}
	if cfg.Prefix != "WIDGE" {
		t.Errorf("Prefix = %q, want WIDGE", cfg.Prefix)
	}
	if cfg.LastStoryNumber != 0 {
		t.Errorf("LastStoryNumber = %d, want 0", cfg.LastStoryNumber)
	}
	if len(cfg.KanbanStages) != len(board.DefaultStages) {
		t.Errorf("KanbanStages = %v", cfg.KanbanStages)
	}
}

func TestProjectConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := DefaultProjectConfig("widget")
	cfg.LastStoryNumber = 12
	cfg.RepoURL = "git@github.com:acme/widget.git"

	if err := SaveProjectConfig(path, cfg); err != nil {
		t.Fatalf("SaveProjectConfig: %v", err)
	}

	loaded, err := LoadProjectConfig(path, "widget")
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if loaded.Prefix != cfg.Prefix || loaded.LastStoryNumber != 12 || loaded.RepoURL != cfg.RepoURL {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestProjectConfigFieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := SaveProjectConfig(path, DefaultProjectConfig("widget")); err != nil {
		t.Fatalf("SaveProjectConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// The file layout is a compatibility surface.
	text := string(data)
	order := []string{"project_name:", "prefix:", "last_story_number:", "created_at:", "kanban_stages:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		if idx < 0 {
			t.Fatalf("config.yml missing key %q:\n%s", key, text)
		}
		if idx < last {
			t.Errorf("key %q out of order:\n%s", key, text)
		}
		last = idx
	}
	// Optional workspace keys are omitted when unset.
	if strings.Contains(text, "repo_url:") {
		t.Errorf("empty repo_url serialized:\n%s", text)
	}
}

func TestLoadProjectConfigFillsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	legacy := "project_name: widget\nlast_story_number: 3\n"
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(path, "widget")
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg.LastStoryNumber != 3 {
		t.Errorf("LastStoryNumber = %d, want 3", cfg.LastStoryNumber)
	}
	if cfg.Prefix != "WIDGE" {
		t.Errorf("Prefix = %q, want default WIDGE", cfg.Prefix)
	}
	if len(cfg.KanbanStages) == 0 {
		t.Error("KanbanStages not defaulted")
	}
}

func TestLoadProjectConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if _, err := LoadProjectConfig(path, "widget"); err == nil {
		t.Error("expected error for missing config")
	}
}
