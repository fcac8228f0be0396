package secondary

import (
	"context"
	"time"
)

// Locker defines the secondary port for advisory, per-resource mutual
// exclusion between concurrent filter processes on the same host.
type Locker interface {
	// Acquire takes the named lock, polling up to wait. Returns a release
	// function on success, a fault.TimeoutError when the wait expires, or a
	// fault.BusyError when wait is zero and the lock is held.
	Acquire(ctx context.Context, name string, wait time.Duration) (release func(), err error)
}

// StoryLockName returns the lock name guarding a story's stage links.
func StoryLockName(storyID string) string {
	return "story-" + storyID
}

// WorkspaceLockName returns the lock name guarding a story's workspace.
func WorkspaceLockName(storyID string) string {
	return "ws-" + storyID
}

// ConfigLockName is the lock guarding the story-number counter in config.yml.
const ConfigLockName = "config"
