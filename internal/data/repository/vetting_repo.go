package repository

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VettingRepository interface {
	Create(ctx context.Context, app *entity.VettingApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error)
	Update(ctx context.Context, app *entity.VettingApplication) error
	HasPending(ctx context.Context, applicantID uuid.UUID) (bool, error)
	List(ctx context.Context, status entity.VettingStatus, page Page) ([]*entity.VettingApplication, int64, error)
}

type vettingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewVettingRepository(db database.Querier, log *zap.Logger) VettingRepository {
	return &vettingRepository{
		db:  db,
		log: log.With(zap.String("repository", "vetting")),
	}
}

const vettingColumns = `id, applicant_id, stage_name, bio, category, contact_phone, portfolio_links, status,
	reviewer_id, review_notes, reviewed_at, performer_id, created_at, updated_at`

func scanApplication(row scanner) (*entity.VettingApplication, error) {
	var a entity.VettingApplication
	err := row.Scan(
		&a.ID,
		&a.ApplicantID,
		&a.StageName,
		&a.Bio,
		&a.Category,
		&a.ContactPhone,
		&a.PortfolioLinks,
		&a.Status,
		&a.ReviewerID,
		&a.ReviewNotes,
		&a.ReviewedAt,
		&a.PerformerID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *vettingRepository) Create(ctx context.Context, app *entity.VettingApplication) error {
	query := `
		INSERT INTO vetting_applications (` + vettingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	links := app.PortfolioLinks
	if links == nil {
		links = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.ApplicantID,
		app.StageName,
		app.Bio,
		app.Category,
		app.ContactPhone,
		links,
		app.Status,
		app.ReviewerID,
		app.ReviewNotes,
		app.ReviewedAt,
		app.PerformerID,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create vetting application",
			zap.Error(err),
			zap.String("applicant_id", app.ApplicantID.String()),
		)
		return fmt.Errorf("create vetting application: %w", err)
	}
	return nil
}

func (r *vettingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error) {
	return r.findOne(ctx, `SELECT `+vettingColumns+` FROM vetting_applications WHERE id = $1`, id)
}

func (r *vettingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.VettingApplication, error) {
	return r.findOne(ctx, `SELECT `+vettingColumns+` FROM vetting_applications WHERE id = $1 FOR UPDATE`, id)
}

func (r *vettingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.VettingApplication, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vetting application", zap.Error(err), zap.String("application_id", id.String()))
		return nil, fmt.Errorf("find vetting application %s: %w", id, err)
	}
	return app, nil
}

func (r *vettingRepository) Update(ctx context.Context, app *entity.VettingApplication) error {
	query := `
		UPDATE vetting_applications
		SET status = $2, reviewer_id = $3, review_notes = $4, reviewed_at = $5, performer_id = $6, updated_at = $7
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.Status,
		app.ReviewerID,
		app.ReviewNotes,
		app.ReviewedAt,
		app.PerformerID,
		app.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update vetting application", zap.Error(err), zap.String("application_id", app.ID.String()))
		return fmt.Errorf("update vetting application %s: %w", app.ID, err)
	}
	return nil
}

func (r *vettingRepository) HasPending(ctx context.Context, applicantID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM vetting_applications WHERE applicant_id = $1 AND status = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, applicantID, entity.VettingStatusPending).Scan(&exists); err != nil {
		r.log.Error("Failed to check pending application", zap.Error(err))
		return false, fmt.Errorf("check pending application of %s: %w", applicantID, err)
	}
	return exists, nil
}

func (r *vettingRepository) List(ctx context.Context, status entity.VettingStatus, page Page) ([]*entity.VettingApplication, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM vetting_applications WHERE ($1 = '' OR status = $1)`,
		string(status),
	).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count vetting applications", zap.Error(err))
		return nil, 0, fmt.Errorf("count vetting applications: %w", err)
	}

	query := `
		SELECT ` + vettingColumns + `
		FROM vetting_applications
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, string(status), page.Size(), page.Offset)
	if err != nil {
		r.log.Error("Failed to list vetting applications", zap.Error(err))
		return nil, 0, fmt.Errorf("list vetting applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.VettingApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			r.log.Error("Failed to scan vetting application row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan vetting application row: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}
