package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	boardcore "github.com/example/filter/internal/core/board"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
)

// stubWorkspaceService satisfies primary.WorkspaceService for story tests
// without dragging git into them.
type stubWorkspaceService struct {
	views     map[string]*primary.WorkspaceView
	tornDown  []string
}

func newStubWorkspaceService() *stubWorkspaceService {
	return &stubWorkspaceService{views: make(map[string]*primary.WorkspaceView)}
}

func (s *stubWorkspaceService) Provision(ctx context.Context, storyID string) (*primary.WorkspaceView, error) {
	view := &primary.WorkspaceView{StoryID: storyID, Status: secondary.WorkspaceReady}
	s.views[storyID] = view
	return view, nil
}

func (s *stubWorkspaceService) Get(ctx context.Context, storyID string) (*primary.WorkspaceView, error) {
	return s.views[storyID], nil
}

func (s *stubWorkspaceService) Teardown(ctx context.Context, storyID string) error {
	delete(s.views, storyID)
	s.tornDown = append(s.tornDown, storyID)
	return nil
}

func (s *stubWorkspaceService) List(ctx context.Context) ([]*primary.WorkspaceView, error) {
	var views []*primary.WorkspaceView
	for _, v := range s.views {
		views = append(views, v)
	}
	return views, nil
}

type storyFixture struct {
	svc        *StoryServiceImpl
	repo       *memStoryRepo
	store      *memStageStore
	config     *memConfigStore
	workspaces *stubWorkspaceService
	audit      *memAudit
}

func newStoryFixture(t *testing.T) *storyFixture {
	t.Helper()
	stages, err := boardcore.NewStages(boardcore.DefaultStages)
	if err != nil {
		t.Fatal(err)
	}
	repo := newMemStoryRepo()
	store := newMemStageStore(repo)
	audit := &memAudit{}
	locker := newMemLocker()
	configStore := &memConfigStore{record: secondary.ProjectConfigRecord{
		ProjectName:  "widget",
		Prefix:       "WIDGE",
		KanbanStages: boardcore.DefaultStages,
	}}
	workspaces := newStubWorkspaceService()
	board := NewBoardService(stages, store, repo, locker, audit, time.Second)
	svc := NewStoryService(stages, configStore, repo, store, board, workspaces, locker, audit, time.Second)
	return &storyFixture{svc: svc, repo: repo, store: store, config: configStore, workspaces: workspaces, audit: audit}
}

func TestCreateStory(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Add login form"})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if resp.Story.ID != "WIDGE-1" {
		t.Errorf("ID = %q, want WIDGE-1", resp.Story.ID)
	}
	if resp.Story.Stage != "planning" {
		t.Errorf("Stage = %q, want planning (initial)", resp.Story.Stage)
	}

	record, err := f.repo.GetByID(ctx, "WIDGE-1")
	if err != nil || record == nil {
		t.Fatalf("story file not written: %v", err)
	}
	if !strings.Contains(record.Content, "# WIDGE-1: Add login form") {
		t.Errorf("content = %q", record.Content)
	}
	if !strings.Contains(record.Content, "No description provided.") {
		t.Errorf("default description missing:\n%s", record.Content)
	}

	links, _ := f.store.LinksFor(ctx, boardcore.DefaultStages, "WIDGE-1")
	if len(links) != 1 || links[0].Stage != "planning" {
		t.Errorf("links = %v", links)
	}
	if f.config.record.LastStoryNumber != 1 {
		t.Errorf("counter = %d, want 1", f.config.record.LastStoryNumber)
	}
}

func TestCreateStorySequentialIDs(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	for i, want := range []string{"WIDGE-1", "WIDGE-2", "WIDGE-3"} {
		resp, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Story"})
		if err != nil {
			t.Fatalf("CreateStory %d: %v", i, err)
		}
		if resp.Story.ID != want {
			t.Errorf("ID = %q, want %q", resp.Story.ID, want)
		}
	}
}

func TestCreateStoryExplicitStage(t *testing.T) {
	f := newStoryFixture(t)

	resp, err := f.svc.CreateStory(context.Background(), primary.CreateStoryRequest{
		Title: "Hotfix",
		Stage: "in-progress",
	})
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if resp.Story.Stage != "in-progress" {
		t.Errorf("Stage = %q", resp.Story.Stage)
	}
}

func TestCreateStoryValidation(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  primary.CreateStoryRequest
	}{
		{"empty title", primary.CreateStoryRequest{Title: "   "}},
		{"unknown stage", primary.CreateStoryRequest{Title: "ok", Stage: "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateStory(ctx, tt.req)
			var verr *fault.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
	if f.config.record.LastStoryNumber != 0 {
		t.Errorf("rejected creates consumed IDs: counter = %d", f.config.record.LastStoryNumber)
	}
}

func TestCreateStoryUnknownStageNamesValidStages(t *testing.T) {
	f := newStoryFixture(t)

	_, err := f.svc.CreateStory(context.Background(), primary.CreateStoryRequest{Title: "ok", Stage: "bogus"})
	if err == nil || !strings.Contains(err.Error(), "planning") {
		t.Errorf("error %v does not list valid stages", err)
	}
}

func TestGetStory(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Add login form"})
	if err != nil {
		t.Fatal(err)
	}

	detail, err := f.svc.GetStory(ctx, created.Story.ID)
	if err != nil {
		t.Fatalf("GetStory: %v", err)
	}
	if detail.Title != "Add login form" || detail.Stage != "planning" {
		t.Errorf("detail = %+v", detail.StoryView)
	}
	if detail.Workspace != nil {
		t.Error("unexpected workspace on fresh story")
	}

	if _, err := f.svc.GetStory(ctx, "WIDGE-404"); err == nil {
		t.Error("expected error for unknown story")
	}
}

func TestListStories(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "One"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Two", Stage: "testing"}); err != nil {
		t.Fatal(err)
	}

	resp, err := f.svc.ListStories(ctx, primary.ListStoriesRequest{})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(resp.Stories) != 2 {
		t.Errorf("stories = %+v", resp.Stories)
	}

	resp, err = f.svc.ListStories(ctx, primary.ListStoriesRequest{Stage: "planning"})
	if err != nil {
		t.Fatalf("ListStories filtered: %v", err)
	}
	if len(resp.Stories) != 1 || resp.Stories[0].ID != first.Story.ID {
		t.Errorf("filtered stories = %+v", resp.Stories)
	}

	if _, err := f.svc.ListStories(ctx, primary.ListStoriesRequest{Stage: "bogus"}); err == nil {
		t.Error("expected error for unknown stage filter")
	}
}

func TestDeleteStory(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Doomed"})
	if err != nil {
		t.Fatal(err)
	}
	id := created.Story.ID

	resp, err := f.svc.DeleteStory(ctx, id)
	if err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
	if len(resp.RemovedStages) != 1 || resp.RemovedStages[0] != "planning" {
		t.Errorf("RemovedStages = %v", resp.RemovedStages)
	}
	if resp.HadWorkspace {
		t.Error("HadWorkspace = true without a workspace")
	}

	exists, _ := f.repo.Exists(ctx, id)
	if exists {
		t.Error("story file survived deletion")
	}
	links, _ := f.store.LinksFor(ctx, boardcore.DefaultStages, id)
	if len(links) != 0 {
		t.Errorf("links survived deletion: %v", links)
	}
}

func TestDeleteStoryTearsDownWorkspace(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Doomed"})
	if err != nil {
		t.Fatal(err)
	}
	id := created.Story.ID
	if _, err := f.workspaces.Provision(ctx, id); err != nil {
		t.Fatal(err)
	}

	resp, err := f.svc.DeleteStory(ctx, id)
	if err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
	if !resp.HadWorkspace {
		t.Error("HadWorkspace = false")
	}
	if len(f.workspaces.tornDown) != 1 || f.workspaces.tornDown[0] != id {
		t.Errorf("tornDown = %v", f.workspaces.tornDown)
	}
}

func TestDeleteStoryUnknown(t *testing.T) {
	f := newStoryFixture(t)

	_, err := f.svc.DeleteStory(context.Background(), "WIDGE-404")
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDeleteStoryRemovesDuplicateLinks(t *testing.T) {
	f := newStoryFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateStory(ctx, primary.CreateStoryRequest{Title: "Conflicted"})
	if err != nil {
		t.Fatal(err)
	}
	id := created.Story.ID
	if err := f.store.CreateLink(ctx, "testing", id); err != nil {
		t.Fatal(err)
	}

	resp, err := f.svc.DeleteStory(ctx, id)
	if err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
	if len(resp.RemovedStages) != 2 {
		t.Errorf("RemovedStages = %v, want both links removed", resp.RemovedStages)
	}
}
