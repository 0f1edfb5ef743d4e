package usecase

import (
	"errors"
	"testing"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func applicationRequest() *request.VettingApplicationRequest {
	return &request.VettingApplicationRequest{
		StageName:      "The Amazing Ren",
		Bio:            "Close-up magic for corporate events.",
		Category:       "magician",
		PortfolioLinks: []string{"https://example.com/ren"},
	}
}

func TestApproveApplicationCreatesPerformer(t *testing.T) {
	f := newFixture(t)
	applicant := f.putUser("Ren", "ren@example.com", "", entity.RoleClient)

	app, err := f.svc.Vetting.Submit(f.ctx, applicant, applicationRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = f.svc.Vetting.Submit(f.ctx, applicant, applicationRequest())
	requireCode(t, err, domain.CodeDuplicateApplication)

	approved, err := f.svc.Vetting.Approve(f.ctx, f.admin, app.ID, &request.ReviewApplicationRequest{Notes: "great showreel"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != "approved" || approved.PerformerID == "" {
		t.Fatalf("unexpected approval %+v", approved)
	}

	performer, err := f.store.Repository().Performer.FindByUserID(f.ctx, applicant.UserID)
	if err != nil || performer == nil {
		t.Fatalf("performer not created: %v", err)
	}
	if performer.ID.String() != approved.PerformerID || performer.StageName != "The Amazing Ren" {
		t.Fatalf("unexpected performer %+v", performer)
	}
	if f.disp.count(notify.TemplateApplicationApproved) == 0 {
		t.Fatal("expected approval notice")
	}

	_, err = f.svc.Vetting.Approve(f.ctx, f.admin, app.ID, &request.ReviewApplicationRequest{})
	requireCode(t, err, domain.CodeAlreadyReviewed)
}

func TestApproveRollsBackEveryStep(t *testing.T) {
	f := newFixture(t)
	applicant := f.putUser("Ren", "ren@example.com", "", entity.RoleClient)
	app, err := f.svc.Vetting.Submit(f.ctx, applicant, applicationRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	f.store.FailAudit(errors.New("audit store down"))
	_, err = f.svc.Vetting.Approve(f.ctx, f.admin, app.ID, &request.ReviewApplicationRequest{})
	f.store.FailAudit(nil)
	if err == nil {
		t.Fatal("expected approval to fail")
	}

	performer, _ := f.store.Repository().Performer.FindByUserID(f.ctx, applicant.UserID)
	if performer != nil {
		t.Fatal("performer row survived a failed approval")
	}
	stored, _ := f.store.Repository().Vetting.FindByID(f.ctx, uuid.MustParse(app.ID))
	if stored.Status != entity.VettingStatusPending {
		t.Fatalf("expected application still pending, got %s", stored.Status)
	}
}

func TestRejectApplication(t *testing.T) {
	f := newFixture(t)
	applicant := f.putUser("Ren", "ren@example.com", "", entity.RoleClient)
	app, err := f.svc.Vetting.Submit(f.ctx, applicant, applicationRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err = f.svc.Vetting.Reject(f.ctx, f.admin, app.ID, &request.ReviewApplicationRequest{})
	requireCode(t, err, domain.CodeReasonRequired)

	_, err = f.svc.Vetting.Reject(f.ctx, applicant, app.ID, &request.ReviewApplicationRequest{Notes: "self review"})
	requireKind(t, err, domain.KindForbidden)

	rejected, err := f.svc.Vetting.Reject(f.ctx, f.admin, app.ID, &request.ReviewApplicationRequest{Notes: "portfolio too thin"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != "rejected" || rejected.ReviewNotes != "portfolio too thin" {
		t.Fatalf("unexpected rejection %+v", rejected)
	}

	list, err := f.svc.Vetting.List(f.ctx, f.admin, "rejected", &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Pagination.Total != 1 {
		t.Fatalf("expected 1 rejected application, got %d", list.Pagination.Total)
	}
}

func TestExistingPerformerCannotApply(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Vetting.Submit(f.ctx, f.performerUser, applicationRequest())
	requireCode(t, err, domain.CodeDuplicateApplication)
}

func TestSettingsDriveNewQuotes(t *testing.T) {
	f := newFixture(t)

	current, err := f.svc.Settings.Get(f.ctx, f.admin)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !current.Default || !current.DepositPercent.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected configured defaults, got %+v", current)
	}

	_, err = f.svc.Settings.Update(f.ctx, f.admin, &request.UpdateSettingsRequest{
		DepositPercent:  decimal.NewFromInt(101),
		ReferralPercent: decimal.NewFromInt(10),
	})
	requireCode(t, err, domain.CodeInvalidRatePercent)

	_, err = f.svc.Settings.Update(f.ctx, f.client, &request.UpdateSettingsRequest{})
	requireKind(t, err, domain.KindForbidden)

	updated, err := f.svc.Settings.Update(f.ctx, f.admin, &request.UpdateSettingsRequest{
		DepositPercent:  decimal.NewFromInt(25),
		ReferralPercent: decimal.NewFromInt(0),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Default || updated.UpdatedBy != f.admin.UserID.String() {
		t.Fatalf("unexpected settings %+v", updated)
	}

	q, err := f.svc.Quote.Quote(f.ctx, &request.QuoteRequest{
		PerformerID:   f.performer.ID.String(),
		ServiceID:     f.service.ID.String(),
		DurationHours: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.TotalAmount.Equal(decimal.NewFromInt(300)) || !q.DepositAmount.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected 300/75 under new settings, got %s/%s", q.TotalAmount, q.DepositAmount)
	}
}

func TestPerformerReferralOverride(t *testing.T) {
	f := newFixture(t)
	f.performer.ReferralPercent = decimal.NewNullDecimal(decimal.NewFromInt(20))
	f.store.PutPerformer(f.performer)

	q, err := f.svc.Quote.Quote(f.ctx, &request.QuoteRequest{
		PerformerID:   f.performer.ID.String(),
		ServiceID:     f.service.ID.String(),
		DurationHours: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !q.ReferralAmount.Equal(decimal.NewFromInt(60)) || !q.TotalAmount.Equal(decimal.NewFromInt(360)) {
		t.Fatalf("expected referral 60 total 360, got %s/%s", q.ReferralAmount, q.TotalAmount)
	}
}

func TestCreateService(t *testing.T) {
	f := newFixture(t)

	svc, err := f.svc.Catalog.CreateService(f.ctx, f.performerUser, &request.CreateServiceRequest{
		Name:             "Wedding set",
		BaseRate:         decimal.NewFromInt(900),
		RateType:         "flat",
		MinDurationHours: decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.PerformerID != f.performer.ID.String() {
		t.Fatalf("service attached to %s", svc.PerformerID)
	}

	list, err := f.svc.Catalog.ListPerformerServices(f.ctx, f.performer.ID.String())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 services, got %d", len(list))
	}

	_, err = f.svc.Catalog.CreateService(f.ctx, f.client, &request.CreateServiceRequest{
		Name:     "Sneaky",
		BaseRate: decimal.NewFromInt(1),
		RateType: "flat",
	})
	requireKind(t, err, domain.KindNotFound)

	_, err = f.svc.Catalog.CreateService(f.ctx, f.admin, &request.CreateServiceRequest{
		Name:     "Missing performer",
		BaseRate: decimal.NewFromInt(1),
		RateType: "flat",
	})
	requireKind(t, err, domain.KindValidation)
}
