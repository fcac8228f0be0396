// Package git shells out to the git binary. Every operation is idempotent:
// clone-if-absent, checkout-or-create-branch, fetch. Failures surface git's
// exit code and stderr verbatim as fault.GitError with credentials redacted
// from repository URLs.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/example/filter/internal/fault"
	"github.com/example/filter/internal/ports/secondary"
)

// Client implements secondary.GitClient via the external git binary.
type Client struct{}

// NewClient creates a git client.
func NewClient() *Client {
	return &Client{}
}

// CloneIfAbsent clones url into dir. An existing working tree at dir is
// success; an existing directory that is not a working tree is surfaced and
// never deleted.
func (c *Client) CloneIfAbsent(ctx context.Context, repoURL, dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		isTree, err := c.IsWorkTree(ctx, dir)
		if err != nil {
			return err
		}
		if isTree {
			return nil
		}
		empty, err := dirIsEmpty(dir)
		if err != nil {
			return err
		}
		if !empty {
			return &fault.StateConflictError{
				Msg:        fmt.Sprintf("%s exists but is not a git working tree", dir),
				Suggestion: fmt.Sprintf("move or remove %s, then provision again", dir),
			}
		}
		// empty directory: clone into it
	case err == nil:
		return &fault.StateConflictError{
			Msg:        fmt.Sprintf("%s exists but is not a directory", dir),
			Suggestion: fmt.Sprintf("move or remove %s, then provision again", dir),
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to check clone target: %w", err)
	}

	_, err = c.run(ctx, "", "clone", repoURL, dir)
	return c.classify(err, "clone", repoURL)
}

// IsWorkTree reports whether dir is inside a git working tree.
func (c *Client) IsWorkTree(ctx context.Context, dir string) (bool, error) {
	out, err := c.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, c.classify(err, "rev-parse", "")
	}
	return strings.TrimSpace(out) == "true", nil
}

// Fetch updates remote refs for the repository at dir.
func (c *Client) Fetch(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "fetch", "origin", "--prune")
	return c.classify(err, "fetch", "")
}

// EnsureBranch checks out branch in dir, creating it from base when absent.
// The derivation is deterministic, so repeated provisioning of the same
// story always targets the same branch. A remote branch whose history is not
// based on origin/<base> is a conflict, never force-overwritten.
func (c *Client) EnsureBranch(ctx context.Context, dir, branch, base string) error {
	current, err := c.CurrentBranch(ctx, dir)
	if err == nil && current == branch {
		return nil
	}

	if c.refExists(ctx, dir, "refs/heads/"+branch) {
		_, err := c.run(ctx, dir, "checkout", branch)
		return c.classify(err, "checkout", "")
	}

	if c.refExists(ctx, dir, "refs/remotes/origin/"+branch) {
		// Existing remote branch: only adopt it when it descends from the
		// base branch; anything else means someone pushed divergent work.
		if _, err := c.run(ctx, dir, "merge-base", "--is-ancestor",
			"origin/"+base, "origin/"+branch); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &fault.StateConflictError{
					Msg: fmt.Sprintf("remote branch %s exists with history diverged from origin/%s",
						branch, base),
					Suggestion: fmt.Sprintf("inspect origin/%s and delete or merge it manually", branch),
				}
			}
			return c.classify(err, "merge-base", "")
		}
		_, err := c.run(ctx, dir, "checkout", "--track", "origin/"+branch)
		return c.classify(err, "checkout", "")
	}

	start := "origin/" + base
	if !c.refExists(ctx, dir, "refs/remotes/"+start) {
		start = base
	}
	_, err = c.run(ctx, dir, "checkout", "-b", branch, start)
	return c.classify(err, "checkout", "")
}

// CurrentBranch returns the checked-out branch name for dir.
func (c *Client) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", c.classify(err, "rev-parse", "")
	}
	return strings.TrimSpace(out), nil
}

// refExists checks a fully qualified ref without treating absence as error.
func (c *Client) refExists(ctx context.Context, dir, ref string) bool {
	_, err := c.run(ctx, dir, "show-ref", "--verify", "--quiet", ref)
	return err == nil
}

// gitExecError carries the raw outcome of one git invocation.
type gitExecError struct {
	args     []string
	exitCode int
	stderr   string
	cause    error
}

func (e *gitExecError) Error() string {
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.args, " "), e.cause, e.stderr)
}

func (e *gitExecError) Unwrap() error {
	return e.cause
}

// run executes git with the given arguments, returning stdout.
func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", &fault.TimeoutError{Op: "git " + args[0], Elapsed: time.Since(start)}
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &gitExecError{args: args, exitCode: exitCode, stderr: stderr.String(), cause: err}
	}
	return stdout.String(), nil
}

// classify turns a raw execution error into the structured GitError the rest
// of the system works with. Timeouts pass through unchanged.
func (c *Client) classify(err error, op, repoURL string) error {
	if err == nil {
		return nil
	}
	var timeout *fault.TimeoutError
	if errors.As(err, &timeout) {
		return timeout
	}
	var execErr *gitExecError
	if errors.As(err, &execErr) {
		return &fault.GitError{
			Op:       op,
			URL:      RedactURL(repoURL),
			ExitCode: execErr.exitCode,
			Stderr:   execErr.stderr,
		}
	}
	return err
}

// RedactURL strips userinfo (tokens, passwords) from a repository URL before
// it appears in errors or the audit journal.
func RedactURL(repoURL string) string {
	if repoURL == "" {
		return ""
	}
	u, err := url.Parse(repoURL)
	if err != nil || u.User == nil {
		return repoURL
	}
	u.User = url.User("redacted")
	return u.String()
}

func dirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}

// Ensure Client implements the interface
var _ secondary.GitClient = (*Client)(nil)
