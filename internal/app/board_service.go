package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/filter/internal/core/board"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
)

// BoardServiceImpl implements the BoardService interface: the kanban stage
// state machine over filesystem links. A story's stage is exactly where its
// link lives; transitions create the new link, verify it, then remove the
// old one, so an interruption leaves a duplicate that repair resolves toward
// the new stage.
type BoardServiceImpl struct {
	stages     *board.Stages
	stageStore secondary.StageStore
	storyRepo  secondary.StoryRepository
	locker     secondary.Locker
	audit      secondary.AuditWriter
	lockWait   time.Duration
}

// NewBoardService creates a BoardService with injected dependencies.
func NewBoardService(
	stages *board.Stages,
	stageStore secondary.StageStore,
	storyRepo secondary.StoryRepository,
	locker secondary.Locker,
	audit secondary.AuditWriter,
	lockWait time.Duration,
) *BoardServiceImpl {
	return &BoardServiceImpl{
		stages:     stages,
		stageStore: stageStore,
		storyRepo:  storyRepo,
		locker:     locker,
		audit:      audit,
		lockWait:   lockWait,
	}
}

// Stages returns the configured stage names in board order.
func (s *BoardServiceImpl) Stages(ctx context.Context) ([]string, error) {
	return s.stages.Names(), nil
}

// CurrentStage derives a story's stage from its links. More than one link is
// a state conflict; it is repaired under the story lock before answering, so
// every caller converges on the same stage.
func (s *BoardServiceImpl) CurrentStage(ctx context.Context, storyID string) (*primary.StageInfo, error) {
	exists, err := s.storyRepo.Exists(ctx, storyID)
	if err != nil {
		return nil, err
	}

	links, err := s.stageStore.LinksFor(ctx, s.stages.Names(), storyID)
	if err != nil {
		return nil, err
	}

	switch len(links) {
	case 0:
		return &primary.StageInfo{StoryID: storyID, Exists: exists}, nil
	case 1:
		return &primary.StageInfo{StoryID: storyID, Stage: links[0].Stage, Exists: exists}, nil
	}

	// Conflict: repair under the story lock.
	release, err := s.locker.Acquire(ctx, secondary.StoryLockName(storyID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	winner, repaired, err := s.repairLocked(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return &primary.StageInfo{StoryID: storyID, Stage: winner, Exists: exists, Repaired: repaired}, nil
}

// Transition atomically moves a story to another stage.
func (s *BoardServiceImpl) Transition(ctx context.Context, req primary.TransitionRequest) (*primary.TransitionResponse, error) {
	exists, err := s.storyRepo.Exists(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fault.Validationf("story %s not found", req.StoryID)
	}

	release, err := s.locker.Acquire(ctx, secondary.StoryLockName(req.StoryID), s.lockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	// Discover (and if needed repair) the current stage while holding the
	// lock, so the from-stage check races with nobody.
	current, _, err := s.repairLocked(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}

	guard := board.CanTransition(board.TransitionContext{
		StoryID:       req.StoryID,
		CurrentStage:  current,
		FromStage:     req.FromStage,
		ToStage:       req.ToStage,
		StagesContain: s.stages.Contains,
	})
	if !guard.Allowed {
		return nil, fault.Validationf("%s", guard.Reason)
	}

	if current == req.ToStage {
		// Idempotent: already there, nothing to change.
		return &primary.TransitionResponse{StoryID: req.StoryID, FromStage: current, ToStage: req.ToStage}, nil
	}

	// Create new, verify it resolves, then remove old. At no instant is the
	// story absent from the board, and an interruption between the two
	// steps leaves a duplicate that repair resolves to the new stage.
	if err := s.stageStore.CreateLink(ctx, req.ToStage, req.StoryID); err != nil {
		return nil, err
	}
	resolves, err := s.stageStore.VerifyLink(ctx, req.ToStage, req.StoryID)
	if err != nil {
		return nil, err
	}
	if !resolves {
		return nil, &fault.StateConflictError{
			StoryID:    req.StoryID,
			Msg:        fmt.Sprintf("new link for %s in %s does not resolve", req.StoryID, req.ToStage),
			Suggestion: "the canonical story file disappeared; restore it or delete the story",
		}
	}
	if current != "" {
		if err := s.stageStore.RemoveLink(ctx, current, req.StoryID); err != nil {
			return nil, err
		}
	}

	if err := s.audit.LogUpdate(ctx, "story", req.StoryID, "stage", current, req.ToStage); err != nil {
		return nil, err
	}
	return &primary.TransitionResponse{StoryID: req.StoryID, FromStage: current, ToStage: req.ToStage}, nil
}

// ListStage resolves every link in a stage back to its story. Dangling links
// are reported alongside the partial results, never thrown.
func (s *BoardServiceImpl) ListStage(ctx context.Context, stage string) (*primary.StageListing, error) {
	if !s.stages.Contains(stage) {
		return nil, fault.Validationf("unknown stage %q. Valid stages: %s",
			stage, strings.Join(s.stages.Names(), ", "))
	}

	entries, err := s.stageStore.ListStage(ctx, stage)
	if err != nil {
		return nil, err
	}

	listing := &primary.StageListing{Stage: stage}
	for _, entry := range entries {
		if entry.Dangling {
			listing.Corruptions = append(listing.Corruptions, primary.Corruption{
				StoryID: entry.StoryID,
				Stage:   stage,
				Detail:  "dangling link: canonical story file is missing",
			})
			continue
		}
		record, err := s.storyRepo.GetByID(ctx, entry.StoryID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			listing.Corruptions = append(listing.Corruptions, primary.Corruption{
				StoryID: entry.StoryID,
				Stage:   stage,
				Detail:  "dangling link: canonical story file is missing",
			})
			continue
		}
		listing.Stories = append(listing.Stories, primary.StoryView{
			ID:      record.ID,
			Title:   record.Title,
			Stage:   stage,
			Created: record.Created,
		})
	}
	return listing, nil
}

// repairLocked re-scans the story's links and removes everything except the
// deterministic winner. Caller must hold the story lock. Returns the current
// stage ("" when unstarted) and the stages whose stale links were removed.
func (s *BoardServiceImpl) repairLocked(ctx context.Context, storyID string) (string, []string, error) {
	stageLinks, err := s.stageStore.LinksFor(ctx, s.stages.Names(), storyID)
	if err != nil {
		return "", nil, err
	}
	if len(stageLinks) == 0 {
		return "", nil, nil
	}
	if len(stageLinks) == 1 {
		return stageLinks[0].Stage, nil, nil
	}

	links := make([]board.Link, len(stageLinks))
	for i, l := range stageLinks {
		links[i] = board.Link{Stage: l.Stage, ModTime: l.ModTime}
	}
	res := board.Resolve(links)

	var repaired []string
	for _, stale := range res.Stale {
		if err := s.stageStore.RemoveLink(ctx, stale.Stage, storyID); err != nil {
			return "", nil, err
		}
		repaired = append(repaired, stale.Stage)
	}
	if err := s.audit.LogUpdate(ctx, "story", storyID, "stage-repair",
		strings.Join(repaired, ","), res.Winner.Stage); err != nil {
		return "", nil, err
	}
	return res.Winner.Stage, repaired, nil
}

// Ensure BoardServiceImpl implements the interface
var _ primary.BoardService = (*BoardServiceImpl)(nil)
