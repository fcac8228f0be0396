// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvocationKey is the context key for the invocation record.
// Exported so it can be used consistently across packages.
type InvocationKey struct{}

// Invocation identifies one CLI invocation. Every audit entry written during
// the invocation carries its correlation ID. Created at process start,
// discarded at process end.
type Invocation struct {
	ID      string
	Command string
	Started time.Time
}

// NewInvocation creates an invocation record for the given command.
func NewInvocation(command string) Invocation {
	return Invocation{
		ID:      uuid.NewString(),
		Command: command,
		Started: time.Now().UTC(),
	}
}

// WithInvocation returns a context with the invocation embedded.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, InvocationKey{}, inv)
}

// InvocationFromContext returns the invocation from context, or the zero
// value if not set.
func InvocationFromContext(ctx context.Context) Invocation {
	if v := ctx.Value(InvocationKey{}); v != nil {
		return v.(Invocation)
	}
	return Invocation{}
}
