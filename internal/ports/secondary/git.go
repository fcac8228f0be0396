package secondary

import "context"

// GitClient defines the secondary port for git operations. Every operation
// is safe to invoke twice with identical effect; "already exists" outcomes
// are treated as success, not failure.
type GitClient interface {
	// CloneIfAbsent clones url into dir. When dir already holds a valid
	// working tree for any repository the call is a no-op; when dir exists
	// but is not a working tree the call fails without deleting anything.
	CloneIfAbsent(ctx context.Context, url, dir string) error

	// IsWorkTree reports whether dir is inside a git working tree.
	IsWorkTree(ctx context.Context, dir string) (bool, error)

	// Fetch updates remote refs for the repository at dir.
	Fetch(ctx context.Context, dir string) error

	// EnsureBranch checks out branch in dir, creating it from base when it
	// does not exist locally or on the remote. A remote branch with history
	// that has diverged from base is surfaced as a conflict.
	EnsureBranch(ctx context.Context, dir, branch, base string) error

	// CurrentBranch returns the checked-out branch name for dir.
	CurrentBranch(ctx context.Context, dir string) (string, error)
}
