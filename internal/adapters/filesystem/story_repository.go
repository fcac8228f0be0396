package filesystem

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/example/filter/internal/core/story"
	"github.com/example/filter/internal/ports/secondary"
)

// StoryRepository implements secondary.StoryRepository over markdown files
// in .filter/stories/.
type StoryRepository struct {
	layout Layout
}

// NewStoryRepository creates a story repository for the given layout.
func NewStoryRepository(layout Layout) *StoryRepository {
	return &StoryRepository{layout: layout}
}

// Create persists a new story file. The canonical file is the story's single
// source of truth, so an existing file means the ID was already allocated.
func (r *StoryRepository) Create(ctx context.Context, record *secondary.StoryRecord) error {
	path := r.layout.StoryPath(record.ID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("story %s already exists", record.ID)
		}
		return fmt.Errorf("failed to create story file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(record.Content); err != nil {
		return fmt.Errorf("failed to write story file: %w", err)
	}
	return nil
}

// GetByID retrieves a story by its ID. Returns nil, nil when absent.
func (r *StoryRepository) GetByID(ctx context.Context, id string) (*secondary.StoryRecord, error) {
	path := r.layout.StoryPath(id)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", id, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat story %s: %w", id, err)
	}

	content := string(data)
	return &secondary.StoryRecord{
		ID:      id,
		Title:   story.ExtractTitle(content, id),
		Content: content,
		Created: extractCreated(content, info.ModTime()),
		Path:    path,
	}, nil
}

// Exists reports whether the canonical story file exists.
func (r *StoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := os.Stat(r.layout.StoryPath(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check story %s: %w", id, err)
	}
	return true, nil
}

// Delete removes the canonical story file.
func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	if err := os.Remove(r.layout.StoryPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("story %s not found", id)
		}
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	return nil
}

// List retrieves all stories, sorted by ID.
func (r *StoryRepository) List(ctx context.Context) ([]*secondary.StoryRecord, error) {
	entries, err := os.ReadDir(r.layout.StoriesDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	var records []*secondary.StoryRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		record, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// extractCreated parses the "**Created:** <RFC3339>" line written by the
// story template, falling back to the file modification time.
func extractCreated(content string, fallback time.Time) time.Time {
	for _, line := range strings.Split(content, "\n") {
		rest, ok := strings.CutPrefix(line, "**Created:**")
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(rest)); err == nil {
			return t
		}
		break
	}
	return fallback
}

// Ensure StoryRepository implements the interface
var _ secondary.StoryRepository = (*StoryRepository)(nil)
