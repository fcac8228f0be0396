// Package sqlite contains the sqlite-backed audit journal adapter.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/filter/internal/ctxutil"
	"github.com/example/filter/internal/ports/secondary"
)

// AuditJournal implements secondary.AuditWriter over the project's
// journal.db. Every entry carries the correlation ID and command of the
// invocation that produced it.
type AuditJournal struct {
	db *sql.DB
}

// NewAuditJournal creates an audit journal over an open database.
func NewAuditJournal(db *sql.DB) *AuditJournal {
	return &AuditJournal{db: db}
}

// LogCreate records a create operation for an entity.
func (j *AuditJournal) LogCreate(ctx context.Context, entityType, entityID string) error {
	return j.write(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate records an update operation for an entity field.
func (j *AuditJournal) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return j.write(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete records a delete operation for an entity.
func (j *AuditJournal) LogDelete(ctx context.Context, entityType, entityID string) error {
	return j.write(ctx, entityType, entityID, "delete", "", "", "")
}

func (j *AuditJournal) write(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	inv := ctxutil.InvocationFromContext(ctx)

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO audit_log (invocation_id, command, entity_type, entity_id, action, field_name, old_value, new_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Command, entityType, entityID, action, fieldName, oldValue, newValue)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Ensure AuditJournal implements the interface
var _ secondary.AuditWriter = (*AuditJournal)(nil)
