package usecase

import (
	"context"
	"fmt"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/quote"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuoteService interface {
	Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error)
}

type quoteService struct {
	*env
	log *zap.Logger
}

func NewQuoteService(e *env) QuoteService {
	return &quoteService{
		env: e,
		log: e.log.With(zap.String("service", "quote")),
	}
}

func (s *quoteService) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	if err := validateRequest(s.log, "Quote", req); err != nil {
		return nil, err
	}

	performerID, err := parseID("performer_id", req.PerformerID)
	if err != nil {
		return nil, err
	}
	serviceID, err := parseID("service_id", req.ServiceID)
	if err != nil {
		return nil, err
	}

	priced, err := s.price(ctx, s.repo, performerID, serviceID, quote.Request{
		DurationHours: req.DurationHours,
		GuestCount:    req.GuestCount,
	})
	if err != nil {
		return nil, err
	}

	return response.NewQuoteResponse(priced.quote, s.currency()), nil
}

type pricing struct {
	quote     quote.Quote
	performer *entity.Performer
	service   *entity.PerformerService
}

// price resolves the performer, service and rates in force, then runs the calculator.
func (e *env) price(ctx context.Context, repo *repository.Repository, performerID, serviceID uuid.UUID, req quote.Request) (*pricing, error) {
	performer, err := repo.Performer.FindByID(ctx, performerID)
	if err != nil {
		return nil, fmt.Errorf("find performer %s: %w", performerID, err)
	}
	if performer == nil || !performer.Active {
		return nil, domain.NewValidation(domain.CodeUnknownService, "performer_id", "performer is not available")
	}

	service, err := repo.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("find service %s: %w", serviceID, err)
	}
	if service != nil && service.PerformerID != performer.ID {
		return nil, domain.NewValidation(domain.CodeUnknownService, "service_id", "service is not offered by this performer")
	}

	rates, err := e.rates(ctx, repo, performer)
	if err != nil {
		return nil, err
	}

	q, err := quote.Calculate(service, req, rates)
	if err != nil {
		return nil, err
	}

	return &pricing{quote: q, performer: performer, service: service}, nil
}
