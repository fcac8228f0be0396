package filesystem

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/secondary"
)

// lockPollInterval is how often lock acquisition is retried while waiting.
const lockPollInterval = 50 * time.Millisecond

// LockManager implements secondary.Locker with flock advisory locks under
// .filter/locks/. Locks are scoped by name (one per story, per workspace,
// plus the config counter), so operations on different stories never block
// each other. Locks vanish with the process, so a killed invocation can
// never wedge the board.
type LockManager struct {
	layout Layout
}

// NewLockManager creates a lock manager for the given layout.
func NewLockManager(layout Layout) *LockManager {
	return &LockManager{layout: layout}
}

// Acquire takes the named lock. With wait == 0 a held lock yields BusyError
// immediately; otherwise acquisition is polled until wait elapses, then
// TimeoutError.
func (m *LockManager) Acquire(ctx context.Context, name string, wait time.Duration) (func(), error) {
	if err := os.MkdirAll(m.layout.LocksDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create locks directory: %w", err)
	}

	fl := flock.New(m.layout.LockPath(name))
	release := func() { _ = fl.Unlock() }

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if locked {
		return release, nil
	}
	if wait == 0 {
		return nil, &fault.BusyError{Resource: name}
	}

	start := time.Now()
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, &fault.TimeoutError{Op: "lock " + name, Elapsed: time.Since(start)}
		case <-deadline.C:
			return nil, &fault.TimeoutError{Op: "lock " + name, Elapsed: time.Since(start)}
		case <-ticker.C:
			locked, err := fl.TryLock()
			if err != nil {
				return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
			}
			if locked {
				return release, nil
			}
		}
	}
}

// Ensure LockManager implements the interface
var _ secondary.Locker = (*LockManager)(nil)
