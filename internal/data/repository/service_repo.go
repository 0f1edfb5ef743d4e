package repository

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceRepository stores the services performers offer.
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.PerformerService) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformerService, error)
	ListByPerformer(ctx context.Context, performerID uuid.UUID, activeOnly bool) ([]*entity.PerformerService, error)
}

type serviceRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewServiceRepository(db database.Querier, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "performer_service")),
	}
}

const serviceColumns = `id, performer_id, name, base_rate, rate_type, min_duration_hours, active, created_at, updated_at`

func scanService(row scanner) (*entity.PerformerService, error) {
	var s entity.PerformerService
	err := row.Scan(
		&s.ID,
		&s.PerformerID,
		&s.Name,
		&s.BaseRate,
		&s.RateType,
		&s.MinDurationHours,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.PerformerService) error {
	query := `
		INSERT INTO performer_services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		service.ID,
		service.PerformerID,
		service.Name,
		service.BaseRate,
		service.RateType,
		service.MinDurationHours,
		service.Active,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create service",
			zap.Error(err),
			zap.String("performer_id", service.PerformerID.String()),
		)
		return fmt.Errorf("create service %s: %w", service.Name, err)
	}
	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PerformerService, error) {
	query := `SELECT ` + serviceColumns + ` FROM performer_services WHERE id = $1`

	s, err := scanService(r.db.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find service by ID", zap.Error(err), zap.String("service_id", id.String()))
		return nil, fmt.Errorf("find service by ID %s: %w", id, err)
	}
	return s, nil
}

func (r *serviceRepository) ListByPerformer(ctx context.Context, performerID uuid.UUID, activeOnly bool) ([]*entity.PerformerService, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM performer_services
		WHERE performer_id = $1 AND ($2 = FALSE OR active)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, performerID, activeOnly)
	if err != nil {
		r.log.Error("Failed to list services", zap.Error(err), zap.String("performer_id", performerID.String()))
		return nil, fmt.Errorf("list services of performer %s: %w", performerID, err)
	}
	defer rows.Close()

	var services []*entity.PerformerService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			r.log.Error("Failed to scan service row", zap.Error(err))
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
