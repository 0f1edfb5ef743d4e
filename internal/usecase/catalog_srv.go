package usecase

import (
	"context"
	"strings"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListPerformerServices(ctx context.Context, performerID string) ([]response.ServiceResponse, error)
	CreateService(ctx context.Context, actor access.Principal, req *request.CreateServiceRequest) (*response.ServiceResponse, error)
}

type catalogService struct {
	*env
	log *zap.Logger
}

func NewCatalogService(e *env) CatalogService {
	return &catalogService{
		env: e,
		log: e.log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ListPerformerServices(ctx context.Context, performerID string) ([]response.ServiceResponse, error) {
	id, err := parseID("id", performerID)
	if err != nil {
		return nil, err
	}

	performer, err := s.repo.Performer.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if performer == nil || !performer.Active {
		return nil, domain.NewNotFound(domain.CodeUnknownService, "performer not found")
	}

	services, err := s.repo.Service.ListByPerformer(ctx, id, true)
	if err != nil {
		return nil, err
	}

	out := make([]response.ServiceResponse, len(services))
	for i, svc := range services {
		out[i] = response.NewServiceResponse(svc)
	}
	return out, nil
}

func (s *catalogService) CreateService(ctx context.Context, actor access.Principal, req *request.CreateServiceRequest) (*response.ServiceResponse, error) {
	if err := validateRequest(s.log, "Create service", req); err != nil {
		return nil, err
	}
	if !req.BaseRate.IsPositive() {
		return nil, domain.NewValidation(domain.CodeValidationFailed, "base_rate", "base rate must be greater than zero")
	}
	if req.MinDurationHours.IsNegative() {
		return nil, domain.NewValidation(domain.CodeInvalidDuration, "min_duration_hours", "minimum duration cannot be negative")
	}

	var (
		performer *entity.Performer
		err       error
	)
	if actor.IsAdmin() {
		if req.PerformerID == "" {
			return nil, domain.NewValidation(domain.CodeValidationFailed, "performer_id", "performer_id is required for admins")
		}
		id, err := parseID("performer_id", req.PerformerID)
		if err != nil {
			return nil, err
		}
		performer, err = s.repo.Performer.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
	} else {
		performer, err = s.repo.Performer.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
	}
	if performer == nil {
		return nil, domain.NewNotFound(domain.CodeUnknownService, "performer profile not found")
	}
	if err := access.Check(actor, access.OpManageService, access.Ownership{PerformerUserID: performer.UserID}); err != nil {
		return nil, err
	}

	now := s.now()
	service := &entity.PerformerService{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PerformerID:      performer.ID,
		Name:             strings.TrimSpace(req.Name),
		BaseRate:         req.BaseRate.Round(2),
		RateType:         entity.RateType(req.RateType),
		MinDurationHours: req.MinDurationHours,
		Active:           true,
	}
	if err := s.repo.Service.Create(ctx, service); err != nil {
		s.log.Error("Failed to create service", zap.Error(err), zap.String("performer_id", performer.ID.String()))
		return nil, err
	}

	s.log.Info("Service created",
		zap.String("service_id", service.ID.String()),
		zap.String("performer_id", performer.ID.String()),
		zap.String("rate_type", string(service.RateType)),
	)
	resp := response.NewServiceResponse(service)
	return &resp, nil
}
