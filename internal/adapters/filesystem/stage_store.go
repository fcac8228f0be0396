package filesystem

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/filter/internal/ports/secondary"
)

// StageStore implements secondary.StageStore with relative symlinks under
// .filter/kanban/<stage>/. A story's membership in a stage is exactly the
// presence of its link there.
type StageStore struct {
	layout Layout
}

// NewStageStore creates a stage store for the given layout.
func NewStageStore(layout Layout) *StageStore {
	return &StageStore{layout: layout}
}

// EnsureStages creates the stage directories if missing.
func (s *StageStore) EnsureStages(ctx context.Context, stages []string) error {
	for _, stage := range stages {
		if err := os.MkdirAll(s.layout.StageDir(stage), 0755); err != nil {
			return fmt.Errorf("failed to create stage directory %s: %w", stage, err)
		}
	}
	return nil
}

// CreateLink places the story's link in the stage. An already-present link
// is success: transitions replay the create step after interruption.
func (s *StageStore) CreateLink(ctx context.Context, stage, storyID string) error {
	err := os.Symlink(s.layout.LinkTarget(storyID), s.layout.LinkPath(stage, storyID))
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to link %s into %s: %w", storyID, stage, err)
	}
	return nil
}

// VerifyLink reports whether the link resolves to an existing story file.
func (s *StageStore) VerifyLink(ctx context.Context, stage, storyID string) (bool, error) {
	// Stat follows the symlink; failure means dangling or absent.
	_, err := os.Stat(s.layout.LinkPath(stage, storyID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to verify link for %s in %s: %w", storyID, stage, err)
	}
	return true, nil
}

// RemoveLink removes the story's link from the stage. A missing link is
// success: transitions replay the remove step after interruption.
func (s *StageStore) RemoveLink(ctx context.Context, stage, storyID string) error {
	if err := os.Remove(s.layout.LinkPath(stage, storyID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to unlink %s from %s: %w", storyID, stage, err)
	}
	return nil
}

// LinksFor returns every stage link observed for the story. Lstat is used so
// the link's own modification time drives conflict repair, not the target's.
func (s *StageStore) LinksFor(ctx context.Context, stages []string, storyID string) ([]secondary.StageLink, error) {
	var links []secondary.StageLink
	for _, stage := range stages {
		info, err := os.Lstat(s.layout.LinkPath(stage, storyID))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to inspect link for %s in %s: %w", storyID, stage, err)
		}
		links = append(links, secondary.StageLink{Stage: stage, ModTime: info.ModTime()})
	}
	return links, nil
}

// ListStage returns all links in a stage directory, flagging dangling ones.
func (s *StageStore) ListStage(ctx context.Context, stage string) ([]secondary.StageEntry, error) {
	dir := s.layout.StageDir(stage)
	dirEntries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stage %s: %w", stage, err)
	}

	var entries []secondary.StageEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		storyID := strings.TrimSuffix(de.Name(), ".md")

		info, err := os.Lstat(s.layout.LinkPath(stage, storyID))
		if err != nil {
			continue // raced with a concurrent transition
		}

		_, statErr := os.Stat(s.layout.LinkPath(stage, storyID))
		entries = append(entries, secondary.StageEntry{
			StoryID:  storyID,
			Dangling: os.IsNotExist(statErr),
			ModTime:  info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StoryID < entries[j].StoryID })
	return entries, nil
}

// Ensure StageStore implements the interface
var _ secondary.StageStore = (*StageStore)(nil)
