package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
)

type projectFixture struct {
	svc          *ProjectServiceImpl
	repo         *memStoryRepo
	store        *memStageStore
	audit        *memAudit
	root         string
	registryPath string
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "widget")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	registryPath := filepath.Join(base, "registry", "projects.yaml")

	repo := newMemStoryRepo()
	store := newMemStageStore(repo)
	audit := &memAudit{}
	svc := NewProjectService(root, registryPath, store, repo, audit)
	return &projectFixture{svc: svc, repo: repo, store: store, audit: audit, root: root, registryPath: registryPath}
}

func TestCreateProject(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	info, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{RepoURL: "https://github.com/acme/widget.git"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if info.Name != "widget" || info.Prefix != "WIDGE" {
		t.Errorf("info = %+v", info)
	}

	for _, dir := range []string{".filter", ".filter/stories", ".filter/locks", ".filter/workspaces"} {
		if fi, err := os.Stat(filepath.Join(f.root, dir)); err != nil || !fi.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(f.root, ".filter", "README.md")); err != nil {
		t.Errorf("missing README: %v", err)
	}

	cfg, err := config.LoadProjectConfig(config.ProjectConfigPath(f.root), "widget")
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg.RepoURL != "https://github.com/acme/widget.git" {
		t.Errorf("repo_url = %q", cfg.RepoURL)
	}

	registry, err := config.LoadRegistry(f.registryPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(registry.Projects) != 1 || registry.Projects[0].Prefix != "WIDGE" {
		t.Errorf("registry = %+v", registry.Projects)
	}
}

func TestCreateProjectTwice(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{})
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreateProjectPrefixCollision(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	// Another checkout already claimed the prefix.
	registry, err := config.LoadRegistry(f.registryPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(config.RegistryEntry{Name: "widgets-api", Prefix: "WIDGE", Path: "/elsewhere/widgets-api"}); err != nil {
		t.Fatal(err)
	}
	if err := config.SaveRegistry(f.registryPath, registry); err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.CreateProject(ctx, primary.CreateProjectRequest{})
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	// The collision failed before anything touched disk.
	if _, err := os.Stat(filepath.Join(f.root, ".filter", "config.yml")); !os.IsNotExist(err) {
		t.Errorf("config written despite collision: %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{}); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.DeleteProject(ctx, primary.DeleteProjectRequest{}); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, ".filter")); !os.IsNotExist(err) {
		t.Errorf(".filter survived deletion: %v", err)
	}

	registry, err := config.LoadRegistry(f.registryPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(registry.Projects) != 0 {
		t.Errorf("registry entry survived deletion: %+v", registry.Projects)
	}
}

func TestDeleteProjectWithStoriesNeedsForce(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{}); err != nil {
		t.Fatal(err)
	}
	if err := f.repo.Create(ctx, &secondary.StoryRecord{ID: "WIDGE-1", Title: "One"}); err != nil {
		t.Fatal(err)
	}

	err := f.svc.DeleteProject(ctx, primary.DeleteProjectRequest{})
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	if err := f.svc.DeleteProject(ctx, primary.DeleteProjectRequest{Force: true}); err != nil {
		t.Fatalf("forced DeleteProject: %v", err)
	}
}

func TestDeleteProjectOutsideProject(t *testing.T) {
	f := newProjectFixture(t)

	err := f.svc.DeleteProject(context.Background(), primary.DeleteProjectRequest{})
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestProjectInfo(t *testing.T) {
	f := newProjectFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateProject(ctx, primary.CreateProjectRequest{}); err != nil {
		t.Fatal(err)
	}
	addStory(t, f.repo, f.store, "WIDGE-1", "planning")
	addStory(t, f.repo, f.store, "WIDGE-2", "testing")

	info, err := f.svc.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.TotalStories != 2 {
		t.Errorf("TotalStories = %d", info.TotalStories)
	}
	if info.StageCounts["planning"] != 1 || info.StageCounts["testing"] != 1 {
		t.Errorf("StageCounts = %v", info.StageCounts)
	}
}
