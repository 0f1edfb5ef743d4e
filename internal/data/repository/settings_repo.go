package repository

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/database"

	"go.uber.org/zap"
)

// SettingsRepository reads and writes the single platform settings row.
type SettingsRepository interface {
	// Get returns nil when no row has been written yet.
	Get(ctx context.Context) (*entity.PlatformSettings, error)
	Save(ctx context.Context, settings *entity.PlatformSettings) error
}

type settingsRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSettingsRepository(db database.Querier, log *zap.Logger) SettingsRepository {
	return &settingsRepository{
		db:  db,
		log: log.With(zap.String("repository", "settings")),
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*entity.PlatformSettings, error) {
	query := `SELECT deposit_percent, referral_percent, updated_by, updated_at FROM platform_settings WHERE id = 1`

	var s entity.PlatformSettings
	err := r.db.QueryRow(ctx, query).Scan(&s.DepositPercent, &s.ReferralPercent, &s.UpdatedBy, &s.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to read platform settings", zap.Error(err))
		return nil, fmt.Errorf("read platform settings: %w", err)
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.PlatformSettings) error {
	query := `
		INSERT INTO platform_settings (id, deposit_percent, referral_percent, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET deposit_percent = EXCLUDED.deposit_percent,
		    referral_percent = EXCLUDED.referral_percent,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, settings.DepositPercent, settings.ReferralPercent, settings.UpdatedBy, settings.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to save platform settings", zap.Error(err))
		return fmt.Errorf("save platform settings: %w", err)
	}
	return nil
}
