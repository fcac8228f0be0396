package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/secondary"
)

// In-memory secondary port implementations shared by the service tests.

type memStoryRepo struct {
	records map[string]*secondary.StoryRecord
}

func newMemStoryRepo() *memStoryRepo {
	return &memStoryRepo{records: make(map[string]*secondary.StoryRecord)}
}

func (m *memStoryRepo) Create(ctx context.Context, record *secondary.StoryRecord) error {
	if _, ok := m.records[record.ID]; ok {
		return fmt.Errorf("story %s already exists", record.ID)
	}
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *memStoryRepo) GetByID(ctx context.Context, id string) (*secondary.StoryRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (m *memStoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.records[id]
	return ok, nil
}

func (m *memStoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("story %s not found", id)
	}
	delete(m.records, id)
	return nil
}

func (m *memStoryRepo) List(ctx context.Context) ([]*secondary.StoryRecord, error) {
	var records []*secondary.StoryRecord
	for _, r := range m.records {
		cp := *r
		records = append(records, &cp)
	}
	return records, nil
}

type memStageStore struct {
	links map[string]map[string]time.Time // stage -> storyID -> link time
	repo  *memStoryRepo                   // for dangling detection
	clock time.Time
}

func newMemStageStore(repo *memStoryRepo) *memStageStore {
	return &memStageStore{
		links: make(map[string]map[string]time.Time),
		repo:  repo,
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStageStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStageStore) EnsureStages(ctx context.Context, stages []string) error {
	for _, stage := range stages {
		if m.links[stage] == nil {
			m.links[stage] = make(map[string]time.Time)
		}
	}
	return nil
}

func (m *memStageStore) CreateLink(ctx context.Context, stage, storyID string) error {
	if m.links[stage] == nil {
		m.links[stage] = make(map[string]time.Time)
	}
	if _, ok := m.links[stage][storyID]; !ok {
		m.links[stage][storyID] = m.tick()
	}
	return nil
}

func (m *memStageStore) VerifyLink(ctx context.Context, stage, storyID string) (bool, error) {
	if _, ok := m.links[stage][storyID]; !ok {
		return false, nil
	}
	_, ok := m.repo.records[storyID]
	return ok, nil
}

func (m *memStageStore) RemoveLink(ctx context.Context, stage, storyID string) error {
	delete(m.links[stage], storyID)
	return nil
}

func (m *memStageStore) LinksFor(ctx context.Context, stages []string, storyID string) ([]secondary.StageLink, error) {
	var links []secondary.StageLink
	for _, stage := range stages {
		if mod, ok := m.links[stage][storyID]; ok {
			links = append(links, secondary.StageLink{Stage: stage, ModTime: mod})
		}
	}
	return links, nil
}

func (m *memStageStore) ListStage(ctx context.Context, stage string) ([]secondary.StageEntry, error) {
	var entries []secondary.StageEntry
	for storyID, mod := range m.links[stage] {
		_, exists := m.repo.records[storyID]
		entries = append(entries, secondary.StageEntry{StoryID: storyID, Dangling: !exists, ModTime: mod})
	}
	return entries, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (m *memLocker) Acquire(ctx context.Context, name string, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		m.mu.Lock()
		if !m.held[name] {
			m.held[name] = true
			m.mu.Unlock()
			return func() {
				m.mu.Lock()
				defer m.mu.Unlock()
				m.held[name] = false
			}, nil
		}
		m.mu.Unlock()

		if wait == 0 {
			return nil, &fault.BusyError{Resource: name}
		}
		if time.Now().After(deadline) {
			return nil, &fault.TimeoutError{Op: "lock " + name, Elapsed: wait}
		}
		select {
		case <-ctx.Done():
			return nil, &fault.TimeoutError{Op: "lock " + name, Elapsed: wait}
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type auditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Field      string
	Old, New   string
}

type memAudit struct {
	entries []auditEntry
}

func (m *memAudit) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, auditEntry{Action: "create", EntityType: entityType, EntityID: entityID})
	return nil
}

func (m *memAudit) LogUpdate(ctx context.Context, entityType, entityID, field, oldValue, newValue string) error {
	m.entries = append(m.entries, auditEntry{
		Action: "update", EntityType: entityType, EntityID: entityID,
		Field: field, Old: oldValue, New: newValue,
	})
	return nil
}

func (m *memAudit) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, auditEntry{Action: "delete", EntityType: entityType, EntityID: entityID})
	return nil
}

type memConfigStore struct {
	record secondary.ProjectConfigRecord
}

func (m *memConfigStore) Load(ctx context.Context) (*secondary.ProjectConfigRecord, error) {
	cp := m.record
	return &cp, nil
}

func (m *memConfigStore) Save(ctx context.Context, record *secondary.ProjectConfigRecord) error {
	m.record = *record
	return nil
}

type memWorkspaceStore struct {
	records map[string]*secondary.WorkspaceRecord
}

func newMemWorkspaceStore() *memWorkspaceStore {
	return &memWorkspaceStore{records: make(map[string]*secondary.WorkspaceRecord)}
}

func (m *memWorkspaceStore) Read(ctx context.Context, storyID string) (*secondary.WorkspaceRecord, error) {
	record, ok := m.records[storyID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (m *memWorkspaceStore) Write(ctx context.Context, record *secondary.WorkspaceRecord) error {
	cp := *record
	m.records[record.StoryID] = &cp
	return nil
}

func (m *memWorkspaceStore) Delete(ctx context.Context, storyID string) error {
	delete(m.records, storyID)
	return nil
}

func (m *memWorkspaceStore) List(ctx context.Context) ([]*secondary.WorkspaceRecord, error) {
	var records []*secondary.WorkspaceRecord
	for _, r := range m.records {
		cp := *r
		records = append(records, &cp)
	}
	return records, nil
}

// fakeGitClient scripts clone outcomes per attempt and records every call.
type fakeGitClient struct {
	cloneErrs    []error // consumed one per CloneIfAbsent call; nil means success
	cloneCalls   int
	branchCalls  []string
	ensureBranch error
}

func (f *fakeGitClient) CloneIfAbsent(ctx context.Context, url, dir string) error {
	idx := f.cloneCalls
	f.cloneCalls++
	if idx < len(f.cloneErrs) && f.cloneErrs[idx] != nil {
		return f.cloneErrs[idx]
	}
	// An existing path satisfies the clone without fetching anything, so a
	// leftover directory is observable as a missing clone marker.
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".cloned"), nil, 0644)
}

func (f *fakeGitClient) IsWorkTree(ctx context.Context, dir string) (bool, error) {
	return true, nil
}

func (f *fakeGitClient) Fetch(ctx context.Context, dir string) error {
	return nil
}

func (f *fakeGitClient) EnsureBranch(ctx context.Context, dir, branch, base string) error {
	f.branchCalls = append(f.branchCalls, branch)
	return f.ensureBranch
}

func (f *fakeGitClient) CurrentBranch(ctx context.Context, dir string) (string, error) {
	if len(f.branchCalls) == 0 {
		return "main", nil
	}
	return f.branchCalls[len(f.branchCalls)-1], nil
}
