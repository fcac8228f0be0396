package secondary

import "context"

// AuditWriter defines the interface for writing audit journal entries.
// Implementations extract the invocation correlation ID from context.
type AuditWriter interface {
	// LogCreate records a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate records an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete records a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}
