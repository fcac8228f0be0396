// Package board contains the pure business logic for the kanban board:
// the configured stage set and the deterministic repair policy for
// conflicting stage links. No filesystem access happens here.
package board

import (
	"fmt"
	"sort"
	"time"
)

// DefaultStages is the stage set created for new projects, in board order.
var DefaultStages = []string{"planning", "in-progress", "testing", "pr", "complete"}

// Stages is the validated, ordered set of stage names for a project.
type Stages struct {
	names []string
	index map[string]int
}

// NewStages validates a configured stage list. Stage names must be non-empty
// and unique.
func NewStages(names []string) (*Stages, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no kanban stages configured")
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("empty stage name at position %d", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate stage name %q", name)
		}
		index[name] = i
	}
	return &Stages{names: append([]string(nil), names...), index: index}, nil
}

// Contains reports whether name is a configured stage.
func (s *Stages) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the stages in board order.
func (s *Stages) Names() []string {
	return append([]string(nil), s.names...)
}

// Initial returns the first stage on the board.
func (s *Stages) Initial() string {
	return s.names[0]
}

// Link is one observed stage link for a story.
type Link struct {
	Stage   string
	ModTime time.Time
}

// Resolution is the outcome of applying the repair policy to a set of links.
type Resolution struct {
	Winner Link
	Stale  []Link // links the repair should remove
}

// Resolve applies the deterministic repair policy to the links observed for
// one story. The most recently modified link wins, which makes an interrupted
// create-new-then-delete-old transition converge on the new stage. When
// modification times are equal the lexicographically smallest stage name
// wins, so repeated repairs agree regardless of scan order.
//
// Panics if links is empty; callers handle the no-link case separately since
// it means "not started" rather than "conflict".
func Resolve(links []Link) Resolution {
	if len(links) == 0 {
		panic("board: Resolve called with no links")
	}
	sorted := append([]Link(nil), links...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ModTime.Equal(sorted[j].ModTime) {
			return sorted[i].ModTime.After(sorted[j].ModTime)
		}
		return sorted[i].Stage < sorted[j].Stage
	})
	return Resolution{Winner: sorted[0], Stale: sorted[1:]}
}

// TransitionContext provides context for transition guards.
type TransitionContext struct {
	StoryID       string
	CurrentStage  string // empty when the story has no stage link
	FromStage     string // optional caller assertion, empty to auto-discover
	ToStage       string
	StagesContain func(string) bool
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// CanTransition evaluates whether a stage transition may proceed.
// Rules:
//   - the target stage must be configured
//   - when the caller asserts a from-stage it must be configured and match
//     the story's current stage
func CanTransition(ctx TransitionContext) GuardResult {
	if !ctx.StagesContain(ctx.ToStage) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown stage %q", ctx.ToStage),
		}
	}
	if ctx.FromStage != "" {
		if !ctx.StagesContain(ctx.FromStage) {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("unknown stage %q", ctx.FromStage),
			}
		}
		if ctx.CurrentStage != ctx.FromStage {
			return GuardResult{
				Allowed: false,
				Reason: fmt.Sprintf("story %s is in stage %q, not %q",
					ctx.StoryID, displayStage(ctx.CurrentStage), ctx.FromStage),
			}
		}
	}
	return GuardResult{Allowed: true}
}

func displayStage(stage string) string {
	if stage == "" {
		return "(unstarted)"
	}
	return stage
}
