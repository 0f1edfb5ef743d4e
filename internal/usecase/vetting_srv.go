package usecase

import (
	"context"
	"fmt"
	"strings"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/repository"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"
	"entertainer-booking/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VettingService interface {
	Submit(ctx context.Context, actor access.Principal, req *request.VettingApplicationRequest) (*response.ApplicationResponse, error)

	// Admin endpoints
	List(ctx context.Context, actor access.Principal, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ApplicationResponse], error)
	Approve(ctx context.Context, actor access.Principal, applicationID string, req *request.ReviewApplicationRequest) (*response.ApplicationResponse, error)
	Reject(ctx context.Context, actor access.Principal, applicationID string, req *request.ReviewApplicationRequest) (*response.ApplicationResponse, error)
}

type vettingService struct {
	*env
	log *zap.Logger
}

func NewVettingService(e *env) VettingService {
	return &vettingService{
		env: e,
		log: e.log.With(zap.String("service", "vetting")),
	}
}

func (s *vettingService) Submit(ctx context.Context, actor access.Principal, req *request.VettingApplicationRequest) (*response.ApplicationResponse, error) {
	if err := access.Check(actor, access.OpSubmitApplication, access.Ownership{}); err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Vetting application", req); err != nil {
		return nil, err
	}

	var app *entity.VettingApplication
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		performer, err := tx.Performer.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if performer != nil {
			return domain.NewConflict(domain.CodeDuplicateApplication, "applicant is already a performer")
		}
		pending, err := tx.Vetting.HasPending(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if pending {
			return domain.NewConflict(domain.CodeDuplicateApplication, "an application is already awaiting review")
		}

		now := s.now()
		app = &entity.VettingApplication{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ApplicantID:    actor.UserID,
			StageName:      strings.TrimSpace(req.StageName),
			Bio:            req.Bio,
			Category:       strings.TrimSpace(req.Category),
			ContactPhone:   strings.TrimSpace(req.ContactPhone),
			PortfolioLinks: req.PortfolioLinks,
			Status:         entity.VettingStatusPending,
		}
		if err := tx.Vetting.Create(ctx, app); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityApplication,
			EntityID:   app.ID,
			ActorID:    actorRef(actor),
			Action:     "application_submitted",
			ToState:    string(app.Status),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, s.contact(ctx, actor.UserID), notify.TemplateApplicationSubmitted, map[string]string{
		"stage_name": app.StageName,
	})
	return response.NewApplicationResponse(app), nil
}

func (s *vettingService) List(ctx context.Context, actor access.Principal, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ApplicationResponse], error) {
	if err := access.Check(actor, access.OpReviewApplication, access.Ownership{}); err != nil {
		return nil, err
	}

	var filter entity.VettingStatus
	switch entity.VettingStatus(status) {
	case "":
	case entity.VettingStatusPending, entity.VettingStatusApproved, entity.VettingStatusRejected:
		filter = entity.VettingStatus(status)
	default:
		return nil, domain.NewValidation(domain.CodeValidationFailed, "status", "status must be one of: pending, approved, rejected")
	}

	apps, total, err := s.repo.Vetting.List(ctx, filter, repository.Page{Limit: req.Limit(), Offset: req.Offset()})
	if err != nil {
		s.log.Error("Failed to list applications", zap.Error(err), zap.String("status", status))
		return nil, fmt.Errorf("list applications: %w", err)
	}

	items := make([]response.ApplicationResponse, len(apps))
	for i, a := range apps {
		items[i] = *response.NewApplicationResponse(a)
	}
	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

// Approve runs the approve-vetting saga in one transaction: lock the
// application, create the performer, mark the application approved and audit.
// Any failing step rolls back every earlier one.
func (s *vettingService) Approve(ctx context.Context, actor access.Principal, applicationID string, req *request.ReviewApplicationRequest) (*response.ApplicationResponse, error) {
	app, err := s.review(ctx, actor, applicationID, req, func(tx *repository.Repository, app *entity.VettingApplication) error {
		now := s.now()
		performer := &entity.Performer{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:    app.ApplicantID,
			StageName: app.StageName,
			Bio:       app.Bio,
			Category:  app.Category,
			Active:    true,
		}
		if err := tx.Performer.Create(ctx, performer); err != nil {
			return fmt.Errorf("approve-vetting: create performer: %w", err)
		}

		app.Status = entity.VettingStatusApproved
		app.PerformerID = &performer.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Application approved",
		zap.String("application_id", app.ID.String()),
		zap.String("performer_id", app.PerformerID.String()),
	)
	s.notify(ctx, s.contact(ctx, app.ApplicantID), notify.TemplateApplicationApproved, map[string]string{
		"stage_name": app.StageName,
	})
	return response.NewApplicationResponse(app), nil
}

func (s *vettingService) Reject(ctx context.Context, actor access.Principal, applicationID string, req *request.ReviewApplicationRequest) (*response.ApplicationResponse, error) {
	if strings.TrimSpace(req.Notes) == "" {
		return nil, domain.NewValidation(domain.CodeReasonRequired, "notes", "notes are required to reject an application")
	}

	app, err := s.review(ctx, actor, applicationID, req, func(tx *repository.Repository, app *entity.VettingApplication) error {
		app.Status = entity.VettingStatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, s.contact(ctx, app.ApplicantID), notify.TemplateApplicationRejected, map[string]string{
		"stage_name": app.StageName,
		"notes":      app.ReviewNotes,
	})
	return response.NewApplicationResponse(app), nil
}

// review locks a pending application, lets decide set the outcome, then
// records the reviewer and the audit entry in the same transaction.
func (s *vettingService) review(
	ctx context.Context,
	actor access.Principal,
	applicationID string,
	req *request.ReviewApplicationRequest,
	decide func(tx *repository.Repository, app *entity.VettingApplication) error,
) (*entity.VettingApplication, error) {
	if err := access.Check(actor, access.OpReviewApplication, access.Ownership{}); err != nil {
		return nil, err
	}
	id, err := parseID("id", applicationID)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.log, "Review application", req); err != nil {
		return nil, err
	}

	var app *entity.VettingApplication
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		app, err = tx.Vetting.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if app == nil {
			return domain.NewNotFound(domain.CodeApplicationNotFound, "application not found")
		}
		if app.Status != entity.VettingStatusPending {
			return domain.NewState(domain.CodeAlreadyReviewed, "application was already "+string(app.Status))
		}

		if err := decide(tx, app); err != nil {
			return err
		}

		now := s.now()
		reviewer := actor.UserID
		app.ReviewerID = &reviewer
		app.ReviewNotes = strings.TrimSpace(req.Notes)
		app.ReviewedAt = &now
		app.UpdatedAt = now

		if err := tx.Vetting.Update(ctx, app); err != nil {
			return err
		}
		return s.audit(ctx, tx, entity.AuditLog{
			EntityType: entity.AuditEntityApplication,
			EntityID:   app.ID,
			ActorID:    actorRef(actor),
			Action:     "application_" + string(app.Status),
			FromState:  string(entity.VettingStatusPending),
			ToState:    string(app.Status),
			Reason:     app.ReviewNotes,
		})
	})
	if err != nil {
		s.log.Warn("Application review failed",
			zap.Error(err),
			zap.String("application_id", applicationID),
		)
		return nil, err
	}
	return app, nil
}
