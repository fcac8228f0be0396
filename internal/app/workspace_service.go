package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/example/filter/internal/config"
	"github.com/example/filter/internal/core/story"
	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/primary"
	"github.com/example/filter/internal/ports/secondary"
	"github.com/example/filter/internal/templates"
)

// WorkspaceServiceImpl implements the WorkspaceService interface. Provisioning
// is a resumable state machine persisted in the workspace record: absent ->
// cloning -> ready, with failed as the retryable dead end. Because the record
// is written before any side effect and updated after, a killed process leaves
// a record the next invocation can pick up and drive to ready.
type WorkspaceServiceImpl struct {
	settings    config.Settings
	storyRepo   secondary.StoryRepository
	wsStore     secondary.WorkspaceStore
	git         secondary.GitClient
	configStore secondary.ProjectConfigStore
	locker      secondary.Locker
	audit       secondary.AuditWriter
}

// NewWorkspaceService creates a WorkspaceService with injected dependencies.
func NewWorkspaceService(
	settings config.Settings,
	storyRepo secondary.StoryRepository,
	wsStore secondary.WorkspaceStore,
	git secondary.GitClient,
	configStore secondary.ProjectConfigStore,
	locker secondary.Locker,
	audit secondary.AuditWriter,
) *WorkspaceServiceImpl {
	return &WorkspaceServiceImpl{
		settings:    settings,
		storyRepo:   storyRepo,
		wsStore:     wsStore,
		git:         git,
		configStore: configStore,
		locker:      locker,
		audit:       audit,
	}
}

// Provision materializes the story's working tree. Idempotent: a ready
// workspace is returned unchanged, a failed or interrupted one is retried
// from a clean slate.
func (s *WorkspaceServiceImpl) Provision(ctx context.Context, storyID string) (*primary.WorkspaceView, error) {
	record, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fault.Validationf("story %s not found", storyID)
	}

	repoURL, base, branch, err := s.resolveTarget(ctx, record)
	if err != nil {
		return nil, err
	}

	wait := s.settings.LockTimeout
	if s.settings.NonInteractive {
		wait = 0
	}
	release, err := s.locker.Acquire(ctx, secondary.WorkspaceLockName(storyID), wait)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock: a concurrent provision may have finished.
	ws, err := s.wsStore.Read(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if ws != nil && ws.Status == secondary.WorkspaceReady {
		return workspaceView(ws), nil
	}
	// A cloning record while we hold the lock means its writer died
	// mid-provision; a failed record is an explicit retry invitation.
	// Both paths restart from the top. Partial clones are not trusted: a
	// killed git clone can leave a worktree husk the next clone would skip,
	// so the record's own directory is discarded first. Only paths this
	// service recorded are removed; an unmanaged directory at the target
	// still surfaces as a clone error.
	target := filepath.Join(s.settings.WorkspaceRoot, storyID)
	if ws != nil && ws.Path == target {
		if err := os.RemoveAll(ws.Path); err != nil {
			return nil, fmt.Errorf("failed to discard partial workspace %s: %w", ws.Path, err)
		}
	}

	ws = &secondary.WorkspaceRecord{
		StoryID:   storyID,
		Path:      target,
		RepoURL:   repoURL,
		Branch:    branch,
		Status:    secondary.WorkspaceCloning,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.wsStore.Write(ctx, ws); err != nil {
		return nil, err
	}

	if err := s.provision(ctx, ws, base, record.Title); err != nil {
		ws.Status = secondary.WorkspaceFailed
		ws.LastError = err.Error()
		ws.UpdatedAt = time.Now().UTC()
		if werr := s.wsStore.Write(ctx, ws); werr != nil {
			return nil, fmt.Errorf("recording provisioning failure: %w (original: %v)", werr, err)
		}
		return nil, err
	}

	ws.Status = secondary.WorkspaceReady
	ws.LastError = ""
	ws.UpdatedAt = time.Now().UTC()
	if err := s.wsStore.Write(ctx, ws); err != nil {
		return nil, err
	}
	if err := s.audit.LogCreate(ctx, "workspace", storyID); err != nil {
		return nil, err
	}
	return workspaceView(ws), nil
}

// provision runs the clone-branch-scaffold sequence into ws.Path.
func (s *WorkspaceServiceImpl) provision(ctx context.Context, ws *secondary.WorkspaceRecord, base, title string) error {
	if err := os.MkdirAll(s.settings.WorkspaceRoot, 0755); err != nil {
		return fmt.Errorf("failed to create workspace root: %w", err)
	}

	if err := s.cloneWithRetry(ctx, ws.RepoURL, ws.Path); err != nil {
		return err
	}

	if err := s.git.EnsureBranch(ctx, ws.Path, ws.Branch, base); err != nil {
		return err
	}

	scaffold, err := templates.RenderScaffold(templates.ScaffoldData{
		ID:      ws.StoryID,
		Title:   title,
		Branch:  ws.Branch,
		RepoURL: ws.RepoURL,
	})
	if err != nil {
		return err
	}
	for name, content := range scaffold {
		// Never clobber a file the repository already tracks.
		path := filepath.Join(ws.Path, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to write scaffold file %s: %w", name, err)
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return fmt.Errorf("failed to write scaffold file %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write scaffold file %s: %w", name, err)
		}
	}
	return nil
}

// cloneWithRetry retries the clone with exponential backoff, but only for
// failures that look like transient network trouble. Auth and missing-repo
// failures abort immediately.
func (s *WorkspaceServiceImpl) cloneWithRetry(ctx context.Context, url, dir string) error {
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.settings.CloneTimeout)
		defer cancel()

		err := s.git.CloneIfAbsent(attemptCtx, url, dir)
		if err == nil {
			return nil
		}
		var gitErr *fault.GitError
		if errors.As(err, &gitErr) && gitErr.Transient() {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.settings.CloneRetries)),
		ctx,
	)
	return backoff.Retry(operation, bo)
}

// resolveTarget picks the repository URL, base branch, and branch name for a
// story. The story's own Repository line beats the project repository.
func (s *WorkspaceServiceImpl) resolveTarget(ctx context.Context, record *secondary.StoryRecord) (url, base, branch string, err error) {
	cfg, err := s.configStore.Load(ctx)
	if err != nil {
		return "", "", "", err
	}

	url = story.ExtractRepoURL(record.Content)
	if url == "" {
		url = cfg.RepoURL
	}
	if url == "" {
		return "", "", "", fault.Validationf(
			"story %s has no repository: set repo_url in .filter/config.yml or add a **Repository:** line to the story", record.ID)
	}

	base = s.settings.DefaultBranch

	branch, err = story.BranchName(s.settings.BranchTemplate, story.Story{
		ID:    record.ID,
		Title: record.Title,
	})
	if err != nil {
		return "", "", "", err
	}
	return url, base, branch, nil
}

// Get returns the story's workspace view, or nil, nil when unprovisioned.
func (s *WorkspaceServiceImpl) Get(ctx context.Context, storyID string) (*primary.WorkspaceView, error) {
	ws, err := s.wsStore.Read(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, nil
	}
	return workspaceView(ws), nil
}

// Teardown removes the working tree and the workspace record. Tearing down a
// story without a workspace is a no-op.
func (s *WorkspaceServiceImpl) Teardown(ctx context.Context, storyID string) error {
	wait := s.settings.LockTimeout
	if s.settings.NonInteractive {
		wait = 0
	}
	release, err := s.locker.Acquire(ctx, secondary.WorkspaceLockName(storyID), wait)
	if err != nil {
		return err
	}
	defer release()

	ws, err := s.wsStore.Read(ctx, storyID)
	if err != nil {
		return err
	}
	if ws == nil {
		return nil
	}

	if ws.Path != "" {
		if err := os.RemoveAll(ws.Path); err != nil {
			return fmt.Errorf("failed to remove workspace directory %s: %w", ws.Path, err)
		}
	}
	if err := s.wsStore.Delete(ctx, storyID); err != nil {
		return err
	}
	return s.audit.LogDelete(ctx, "workspace", storyID)
}

// List returns all workspace records for the project.
func (s *WorkspaceServiceImpl) List(ctx context.Context) ([]*primary.WorkspaceView, error) {
	records, err := s.wsStore.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*primary.WorkspaceView, len(records))
	for i, ws := range records {
		views[i] = workspaceView(ws)
	}
	return views, nil
}

func workspaceView(ws *secondary.WorkspaceRecord) *primary.WorkspaceView {
	return &primary.WorkspaceView{
		StoryID:   ws.StoryID,
		Path:      ws.Path,
		RepoURL:   ws.RepoURL,
		Branch:    ws.Branch,
		Status:    ws.Status,
		UpdatedAt: ws.UpdatedAt,
		LastError: ws.LastError,
	}
}

// Ensure WorkspaceServiceImpl implements the interface
var _ primary.WorkspaceService = (*WorkspaceServiceImpl)(nil)
