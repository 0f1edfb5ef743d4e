package usecase

import (
	"context"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/domain/quote"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// settingsEntityID keys audit entries for the single settings row.
var settingsEntityID = uuid.Nil

type SettingsService interface {
	Get(ctx context.Context, actor access.Principal) (*response.SettingsResponse, error)
	Update(ctx context.Context, actor access.Principal, req *request.UpdateSettingsRequest) (*response.SettingsResponse, error)
}

type settingsService struct {
	*env
	log *zap.Logger
}

func NewSettingsService(e *env) SettingsService {
	return &settingsService{
		env: e,
		log: e.log.With(zap.String("service", "settings")),
	}
}

func (s *settingsService) Get(ctx context.Context, actor access.Principal) (*response.SettingsResponse, error) {
	if err := access.Check(actor, access.OpManageSettings, access.Ownership{}); err != nil {
		return nil, err
	}

	settings, err := s.repo.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		rates := s.defaultRates()
		return &response.SettingsResponse{
			DepositPercent:  rates.DepositPercent,
			ReferralPercent: rates.ReferralPercent,
			Default:         true,
		}, nil
	}
	return settingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, actor access.Principal, req *request.UpdateSettingsRequest) (*response.SettingsResponse, error) {
	if err := access.Check(actor, access.OpManageSettings, access.Ownership{}); err != nil {
		return nil, err
	}
	rates := quote.Rates{DepositPercent: req.DepositPercent, ReferralPercent: req.ReferralPercent}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	updatedBy := actor.UserID
	settings := &entity.PlatformSettings{
		DepositPercent:  rates.DepositPercent,
		ReferralPercent: rates.ReferralPercent,
		UpdatedBy:       &updatedBy,
		UpdatedAt:       s.now(),
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		previous, err := s.rates(ctx, tx, nil)
		if err != nil {
			return err
		}
		if err := tx.Settings.Save(ctx, settings); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntitySettings,
			EntityID:   settingsEntityID,
			ActorID:    actorRef(actor),
			Action:     "settings_updated",
			Metadata: map[string]any{
				"deposit_percent":           rates.DepositPercent.String(),
				"referral_percent":          rates.ReferralPercent.String(),
				"previous_deposit_percent":  previous.DepositPercent.String(),
				"previous_referral_percent": previous.ReferralPercent.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Platform settings updated",
		zap.String("deposit_percent", rates.DepositPercent.String()),
		zap.String("referral_percent", rates.ReferralPercent.String()),
		zap.String("updated_by", updatedBy.String()),
	)
	return settingsResponse(settings), nil
}

func settingsResponse(settings *entity.PlatformSettings) *response.SettingsResponse {
	resp := &response.SettingsResponse{
		DepositPercent:  settings.DepositPercent,
		ReferralPercent: settings.ReferralPercent,
	}
	if settings.UpdatedBy != nil {
		resp.UpdatedBy = settings.UpdatedBy.String()
	}
	if !settings.UpdatedAt.IsZero() {
		at := settings.UpdatedAt.In(time.UTC)
		resp.UpdatedAt = &at
	}
	return resp
}
