// Package fault defines the error taxonomy shared by all filter services.
// Errors carry enough structure for the CLI layer to pick an exit code and
// render an actionable message without string matching.
package fault

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Exit codes reported by the CLI.
const (
	ExitOK            = 0
	ExitValidation    = 1
	ExitStateConflict = 2
	ExitGit           = 3
	ExitTimeout       = 4
)

// ValidationError reports bad user input: an unknown stage name, a duplicate
// project prefix, a missing story. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError reports state that needs manual intervention: a story
// linked in more than one stage, a dangling stage link, or a remote branch
// whose history diverged from its base. Suggestion describes the manual
// repair when automatic repair was not possible.
type StateConflictError struct {
	Msg        string // general conflict description; preferred when set
	StoryID    string
	Stages     []string
	Suggestion string
}

func (e *StateConflictError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("story %s has conflicting stage state", e.StoryID)
		if len(e.Stages) > 0 {
			msg += fmt.Sprintf(" (linked in: %s)", strings.Join(e.Stages, ", "))
		}
	}
	if e.Suggestion != "" {
		msg += "\nHint: " + e.Suggestion
	}
	return msg
}

// GitError wraps a failed git invocation. URL is stored with credentials
// already redacted; Stderr is git's output verbatim.
type GitError struct {
	Op       string // "clone", "fetch", "checkout", ...
	URL      string
	ExitCode int
	Stderr   string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed (exit %d)", e.Op, e.ExitCode)
	if e.URL != "" {
		msg += " for " + e.URL
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Transient reports whether the failure looks like a transient network
// problem worth retrying. Authentication and missing-repository failures are
// permanent.
func (e *GitError) Transient() bool {
	s := strings.ToLower(e.Stderr)
	for _, marker := range []string{
		"authentication failed",
		"permission denied",
		"repository not found",
		"not found",
		"access denied",
	} {
		if strings.Contains(s, marker) {
			return false
		}
	}
	for _, marker := range []string{
		"connection reset",
		"connection refused",
		"could not resolve host",
		"operation timed out",
		"timed out",
		"early eof",
		"rpc failed",
		"tls handshake timeout",
		"gnutls_handshake",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// BusyError reports that a concurrent invocation holds the lock for the
// resource. The caller decides whether to wait or abort.
type BusyError struct {
	Resource string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s is busy: another filter process holds the lock", e.Resource)
}

// TimeoutError reports that a bounded wait expired. State is left in its
// last well-defined intermediate status.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Elapsed)
}

// StepError attaches the pipeline step name to the failure that aborted it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the CLI exit code contract. Unrecognized errors
// count as validation/user errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		conflict *StateConflictError
		gitErr   *GitError
		timeout  *TimeoutError
		busy     *BusyError
	)
	switch {
	case errors.As(err, &conflict):
		return ExitStateConflict
	case errors.As(err, &timeout):
		return ExitTimeout
	case errors.As(err, &gitErr):
		return ExitGit
	case errors.As(err, &busy):
		return ExitStateConflict
	default:
		return ExitValidation
	}
}
