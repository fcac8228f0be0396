package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/filter/internal/ports/secondary"
)

// WorkspaceStore implements secondary.WorkspaceStore as one JSON file per
// story under .filter/workspaces/. Writes go through a temp file and rename
// so a record is always either the old or the new status, never torn.
type WorkspaceStore struct {
	layout Layout
}

// NewWorkspaceStore creates a workspace store for the given layout.
func NewWorkspaceStore(layout Layout) *WorkspaceStore {
	return &WorkspaceStore{layout: layout}
}

// Read retrieves the record for a story. Returns nil, nil when absent.
func (s *WorkspaceStore) Read(ctx context.Context, storyID string) (*secondary.WorkspaceRecord, error) {
	data, err := os.ReadFile(s.layout.WorkspaceRecordPath(storyID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace record for %s: %w", storyID, err)
	}

	var record secondary.WorkspaceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse workspace record for %s: %w", storyID, err)
	}
	return &record, nil
}

// Write persists the record atomically.
func (s *WorkspaceStore) Write(ctx context.Context, record *secondary.WorkspaceRecord) error {
	if err := os.MkdirAll(s.layout.WorkspacesDir(), 0755); err != nil {
		return fmt.Errorf("failed to create workspaces directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workspace record: %w", err)
	}

	path := s.layout.WorkspaceRecordPath(record.StoryID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace workspace record: %w", err)
	}
	return nil
}

// Delete removes the record. A missing record is not an error.
func (s *WorkspaceStore) Delete(ctx context.Context, storyID string) error {
	if err := os.Remove(s.layout.WorkspaceRecordPath(storyID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workspace record for %s: %w", storyID, err)
	}
	return nil
}

// List returns all workspace records, sorted by story ID.
func (s *WorkspaceStore) List(ctx context.Context) ([]*secondary.WorkspaceRecord, error) {
	entries, err := os.ReadDir(s.layout.WorkspacesDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace records: %w", err)
	}

	var records []*secondary.WorkspaceRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := s.Read(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StoryID < records[j].StoryID })
	return records, nil
}

// Ensure WorkspaceStore implements the interface
var _ secondary.WorkspaceStore = (*WorkspaceStore)(nil)
