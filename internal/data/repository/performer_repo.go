package repository

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PerformerRepository interface {
	Create(ctx context.Context, performer *entity.Performer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Performer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Performer, error)
}

type performerRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPerformerRepository(db database.Querier, log *zap.Logger) PerformerRepository {
	return &performerRepository{
		db:  db,
		log: log.With(zap.String("repository", "performer")),
	}
}

const performerColumns = `id, user_id, stage_name, bio, category, referral_percent, active, created_at, updated_at`

func scanPerformer(row scanner) (*entity.Performer, error) {
	var p entity.Performer
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.StageName,
		&p.Bio,
		&p.Category,
		&p.ReferralPercent,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *performerRepository) Create(ctx context.Context, performer *entity.Performer) error {
	query := `
		INSERT INTO performers (` + performerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		performer.ID,
		performer.UserID,
		performer.StageName,
		performer.Bio,
		performer.Category,
		performer.ReferralPercent,
		performer.Active,
		performer.CreatedAt,
		performer.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create performer",
			zap.Error(err),
			zap.String("user_id", performer.UserID.String()),
		)
		return fmt.Errorf("create performer for user %s: %w", performer.UserID, err)
	}
	return nil
}

func (r *performerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM performers WHERE id = $1`

	p, err := scanPerformer(r.db.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find performer by ID", zap.Error(err), zap.String("performer_id", id.String()))
		return nil, fmt.Errorf("find performer by ID %s: %w", id, err)
	}
	return p, nil
}

func (r *performerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Performer, error) {
	query := `SELECT ` + performerColumns + ` FROM performers WHERE user_id = $1`

	p, err := scanPerformer(r.db.QueryRow(ctx, query, userID))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find performer by user ID", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find performer by user ID %s: %w", userID, err)
	}
	return p, nil
}
