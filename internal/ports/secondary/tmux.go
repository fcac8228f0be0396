package secondary

import "context"

// SessionManager defines the secondary port for terminal multiplexer
// sessions. filter opens one session per story workspace so attach is
// idempotent: attaching twice lands in the same session.
type SessionManager interface {
	// SessionExists reports whether a session with the given name exists.
	SessionExists(ctx context.Context, name string) bool

	// CreateSession creates a detached session rooted at startDir.
	CreateSession(ctx context.Context, name, startDir string) error

	// KillSession terminates the named session. Unknown sessions are not an
	// error.
	KillSession(ctx context.Context, name string) error

	// AttachInstructions returns the command the user runs to attach.
	AttachInstructions(name string) string
}
