package repository

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRepository is the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*entity.AuditLog, error)
}

type auditRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewAuditRepository(db database.Querier, log *zap.Logger) AuditRepository {
	return &auditRepository{
		db:  db,
		log: log.With(zap.String("repository", "audit")),
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, entity_type, entity_id, actor_id, action, from_state, to_state, reason, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.ActorID,
		entry.Action,
		entry.FromState,
		entry.ToState,
		entry.Reason,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to append audit entry",
			zap.Error(err),
			zap.String("entity_type", string(entry.EntityType)),
			zap.String("entity_id", entry.EntityID.String()),
			zap.String("action", entry.Action),
		)
		return fmt.Errorf("append audit entry %s for %s: %w", entry.Action, entry.EntityID, err)
	}
	return nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, entity_type, entity_id, actor_id, action, from_state, to_state, reason, metadata, created_at
		FROM audit_logs
		WHERE entity_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, entityID)
	if err != nil {
		r.log.Error("Failed to list audit entries", zap.Error(err), zap.String("entity_id", entityID.String()))
		return nil, fmt.Errorf("list audit entries of %s: %w", entityID, err)
	}
	defer rows.Close()

	var entries []*entity.AuditLog
	for rows.Next() {
		var e entity.AuditLog
		err := rows.Scan(
			&e.ID,
			&e.EntityType,
			&e.EntityID,
			&e.ActorID,
			&e.Action,
			&e.FromState,
			&e.ToState,
			&e.Reason,
			&e.Metadata,
			&e.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan audit row", zap.Error(err))
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
