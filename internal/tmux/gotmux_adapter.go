// Package tmux contains the gotmux-backed session manager used by
// workspace attach.
package tmux

import (
	"context"
	"fmt"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/filter/internal/ports/secondary"
)

// GotmuxAdapter implements secondary.SessionManager over the gotmux library.
type GotmuxAdapter struct {
	tmux *gotmux.Tmux
}

// NewGotmuxAdapter creates a session manager bound to the default tmux
// socket. Fails when no tmux binary is available.
func NewGotmuxAdapter() (*GotmuxAdapter, error) {
	tmux, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &GotmuxAdapter{tmux: tmux}, nil
}

// SessionName returns the session name for a story's workspace.
func SessionName(storyID string) string {
	return "filter-" + storyID
}

// SessionExists reports whether a session with the given name exists.
func (g *GotmuxAdapter) SessionExists(ctx context.Context, name string) bool {
	sessions, err := g.tmux.ListSessions()
	if err != nil {
		return false
	}
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}

// CreateSession creates a detached session rooted at startDir.
func (g *GotmuxAdapter) CreateSession(ctx context.Context, name, startDir string) error {
	_, err := g.tmux.NewSession(&gotmux.SessionOptions{
		Name:           name,
		StartDirectory: startDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", name, err)
	}
	return nil
}

// KillSession terminates the named session. Unknown sessions are a no-op.
func (g *GotmuxAdapter) KillSession(ctx context.Context, name string) error {
	sessions, err := g.tmux.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, s := range sessions {
		if s.Name == name {
			return s.Kill()
		}
	}
	return nil
}

// AttachInstructions returns the command the user runs to attach.
func (g *GotmuxAdapter) AttachInstructions(name string) string {
	return fmt.Sprintf("Attach with: tmux attach -t %s", name)
}

// Ensure GotmuxAdapter implements the interface
var _ secondary.SessionManager = (*GotmuxAdapter)(nil)
