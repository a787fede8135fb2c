package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"portal/internal/domain"
)

// AuditLogPG implements domain.AuditLog using PostgreSQL. The core only
// reports events; this table belongs to the audit collaborator.
type AuditLogPG struct {
	pool *pgxpool.Pool
}

func NewAuditLog(pool *pgxpool.Pool) *AuditLogPG {
	return &AuditLogPG{pool: pool}
}

// Record inserts one audit event.
func (r *AuditLogPG) Record(ctx context.Context, event domain.AuditEvent) error {
	query := `
INSERT INTO audit_events (id, action, task_id, actor_id, actor_role, country, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, query,
		uuid.NewString(),
		event.Action,
		event.TaskID,
		event.ActorID,
		event.ActorRole,
		nullableString(event.Country),
		event.Timestamp,
	)
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
