package app

import (
	"context"
	"strings"
	"time"

	boardcore "github.com/example/filter/internal/core/board"
	"github.com/example/filter/internal/core/story"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
	"github.com/example/filter/internal/templates"
)

// StoryServiceImpl implements the StoryService interface. Creation runs as a
// pipeline so a failure after the identifier was allocated still leaves a
// resumable story rather than recreating the ID on retry.
type StoryServiceImpl struct {
	stages      *boardcore.Stages
	configStore secondary.ProjectConfigStore
	storyRepo   secondary.StoryRepository
	stageStore  secondary.StageStore
	board       primary.BoardService
	workspaces  primary.WorkspaceService
	locker      secondary.Locker
	audit       secondary.AuditWriter
	lockWait    time.Duration
}

// NewStoryService creates a StoryService with injected dependencies.
func NewStoryService(
	stages *boardcore.Stages,
	configStore secondary.ProjectConfigStore,
	storyRepo secondary.StoryRepository,
	stageStore secondary.StageStore,
	board primary.BoardService,
	workspaces primary.WorkspaceService,
	locker secondary.Locker,
	audit secondary.AuditWriter,
	lockWait time.Duration,
) *StoryServiceImpl {
	return &StoryServiceImpl{
		stages:      stages,
		configStore: configStore,
		storyRepo:   storyRepo,
		stageStore:  stageStore,
		board:       board,
		workspaces:  workspaces,
		locker:      locker,
		audit:       audit,
		lockWait:    lockWait,
	}
}

// CreateStory allocates an identifier, writes the canonical story file, and
// links it into its initial stage.
func (s *StoryServiceImpl) CreateStory(ctx context.Context, req primary.CreateStoryRequest) (*primary.CreateStoryResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fault.Validationf("story title must not be empty")
	}

	stage := req.Stage
	if stage == "" {
		stage = s.stages.Initial()
	}
	if !s.stages.Contains(stage) {
		return nil, fault.Validationf("invalid stage %q. Valid stages: %s",
			stage, strings.Join(s.stages.Names(), ", "))
	}

	var (
		storyID string
		created = time.Now().UTC()
	)

	pipeline := NewPipeline().
		Then("allocate-id", func(ctx context.Context) error {
			release, err := s.locker.Acquire(ctx, secondary.ConfigLockName, s.lockWait)
			if err != nil {
				return err
			}
			defer release()

			cfg, err := s.configStore.Load(ctx)
			if err != nil {
				return err
			}
			cfg.LastStoryNumber++
			storyID = story.FormatID(cfg.Prefix, cfg.LastStoryNumber)
			return s.configStore.Save(ctx, cfg)
		}).
		Then("write-story", func(ctx context.Context) error {
			content, err := templates.RenderStory(templates.StoryData{
				ID:          storyID,
				Title:       title,
				Created:     created.Format(time.RFC3339),
				Description: req.Description,
				RepoURL:     req.RepoURL,
			})
			if err != nil {
				return err
			}
			if err := s.storyRepo.Create(ctx, &secondary.StoryRecord{
				ID:      storyID,
				Title:   title,
				Content: content,
				Created: created,
			}); err != nil {
				return err
			}
			return s.audit.LogCreate(ctx, "story", storyID)
		}).
		Then("link-stage", func(ctx context.Context) error {
			if err := s.stageStore.CreateLink(ctx, stage, storyID); err != nil {
				return err
			}
			return s.audit.LogUpdate(ctx, "story", storyID, "stage", "", stage)
		})

	if err := pipeline.Run(ctx); err != nil {
		return nil, err
	}

	return &primary.CreateStoryResponse{
		Story: primary.StoryView{ID: storyID, Title: title, Stage: stage, Created: created},
	}, nil
}

// GetStory returns one story with its derived stage and workspace binding.
func (s *StoryServiceImpl) GetStory(ctx context.Context, storyID string) (*primary.StoryDetail, error) {
	record, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fault.Validationf("story %s not found", storyID)
	}

	info, err := s.board.CurrentStage(ctx, storyID)
	if err != nil {
		return nil, err
	}

	workspace, err := s.workspaces.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}

	return &primary.StoryDetail{
		StoryView: primary.StoryView{
			ID:      record.ID,
			Title:   record.Title,
			Stage:   info.Stage,
			Created: record.Created,
		},
		Content:   record.Content,
		Workspace: workspace,
	}, nil
}

// ListStories lists stories across the board, optionally filtered to one
// stage. Corruptions ride along with the partial results.
func (s *StoryServiceImpl) ListStories(ctx context.Context, req primary.ListStoriesRequest) (*primary.ListStoriesResponse, error) {
	stages := s.stages.Names()
	if req.Stage != "" {
		if !s.stages.Contains(req.Stage) {
			return nil, fault.Validationf("invalid stage %q. Valid stages: %s",
				req.Stage, strings.Join(stages, ", "))
		}
		stages = []string{req.Stage}
	}

	resp := &primary.ListStoriesResponse{}
	for _, stage := range stages {
		listing, err := s.board.ListStage(ctx, stage)
		if err != nil {
			return nil, err
		}
		resp.Stories = append(resp.Stories, listing.Stories...)
		resp.Corruptions = append(resp.Corruptions, listing.Corruptions...)
	}
	return resp, nil
}

// DeleteStory removes the story's stage links, workspace, and canonical
// file, in that order. Removing links first means an interruption can only
// leave an unlinked story, never a dangling board entry.
func (s *StoryServiceImpl) DeleteStory(ctx context.Context, storyID string) (*primary.DeleteStoryResponse, error) {
	exists, err := s.storyRepo.Exists(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fault.Validationf("story %s not found", storyID)
	}

	release, err := s.locker.Acquire(ctx, secondary.StoryLockName(storyID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	resp := &primary.DeleteStoryResponse{StoryID: storyID}

	workspace, err := s.workspaces.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if workspace != nil {
		if err := s.workspaces.Teardown(ctx, storyID); err != nil {
			return nil, err
		}
		resp.HadWorkspace = true
	}

	links, err := s.stageStore.LinksFor(ctx, s.stages.Names(), storyID)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if err := s.stageStore.RemoveLink(ctx, link.Stage, storyID); err != nil {
			return nil, err
		}
		resp.RemovedStages = append(resp.RemovedStages, link.Stage)
	}

	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return nil, err
	}
	if err := s.audit.LogDelete(ctx, "story", storyID); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ensure StoryServiceImpl implements the interface
var _ primary.StoryService = (*StoryServiceImpl)(nil)
