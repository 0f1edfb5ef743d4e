package usecase

import (
	"errors"
	"testing"
	"time"

	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateBookingPricesAndAudits(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	checks := map[string][2]decimal.Decimal{
		"base":     {b.Quote.BaseAmount, decimal.RequireFromString("300.00")},
		"referral": {b.Quote.ReferralAmount, decimal.RequireFromString("30.00")},
		"total":    {b.Quote.TotalAmount, decimal.RequireFromString("330.00")},
		"deposit":  {b.Quote.DepositAmount, decimal.RequireFromString("165.00")},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s: expected %s, got %s", name, c[1], c[0])
		}
	}
	if b.Reference != "FE-20260302-0001" {
		t.Errorf("unexpected reference %s", b.Reference)
	}
	if b.Status != string(entity.BookingStatusPending) || b.PaymentStatus != string(entity.BookingPaymentUnpaid) {
		t.Errorf("unexpected initial state %s/%s", b.Status, b.PaymentStatus)
	}

	trail, err := f.svc.Booking.AuditTrail(f.ctx, f.admin, b.ID)
	if err != nil {
		t.Fatalf("audit trail: %v", err)
	}
	if len(trail) != 1 || trail[0].Action != "booking_created" {
		t.Fatalf("unexpected audit trail %+v", trail)
	}

	// client by email and sms, performer by email
	if n := f.disp.count(notify.TemplateBookingCreated); n != 3 {
		t.Fatalf("expected 3 booking created messages, got %d", n)
	}

	second := f.createBooking()
	if second.Reference != "FE-20260302-0002" {
		t.Fatalf("expected second reference of the day, got %s", second.Reference)
	}
}

func TestCreateBookingRejectsShortNotice(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Booking.CreateBooking(f.ctx, f.client, &request.CreateBookingRequest{
		PerformerID:   f.performer.ID.String(),
		ServiceID:     f.service.ID.String(),
		EventDate:     f.now.Add(2 * time.Hour),
		DurationHours: decimal.NewFromInt(2),
		VenueAddress:  "12 Harbour St, Sydney",
	})
	requireCode(t, err, domain.CodeEventTooSoon)
}

func TestCreateBookingUnknownService(t *testing.T) {
	f := newFixture(t)

	other := entity.Performer{UserID: uuid.New(), StageName: "Other", Active: true}
	other.ID = uuid.New()
	f.store.PutPerformer(other)

	inactive := f.service
	inactive.ID = uuid.New()
	inactive.Active = false
	f.store.PutService(inactive)

	tests := []struct {
		name        string
		performerID uuid.UUID
		serviceID   uuid.UUID
	}{
		{"service of another performer", other.ID, f.service.ID},
		{"inactive service", f.performer.ID, inactive.ID},
		{"missing service", f.performer.ID, uuid.New()},
		{"missing performer", uuid.New(), f.service.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Booking.CreateBooking(f.ctx, f.client, &request.CreateBookingRequest{
				PerformerID:   tt.performerID.String(),
				ServiceID:     tt.serviceID.String(),
				EventDate:     f.now.Add(72 * time.Hour),
				DurationHours: decimal.NewFromInt(2),
				VenueAddress:  "12 Harbour St, Sydney",
			})
			requireCode(t, err, domain.CodeUnknownService)
		})
	}
}

func TestCreateBookingRequiresClient(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Booking.CreateBooking(f.ctx, f.performerUser, &request.CreateBookingRequest{})
	requireKind(t, err, domain.KindForbidden)
}

func TestQuoteBookingWithCustomBase(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()
	base := decimal.RequireFromString("420")

	quoted, err := f.svc.Booking.QuoteBooking(f.ctx, f.admin, b.ID, &request.QuoteBookingRequest{BaseAmount: &base, Note: "travel included"})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quoted.Quote.TotalAmount.Equal(decimal.RequireFromString("462")) {
		t.Fatalf("expected total 462, got %s", quoted.Quote.TotalAmount)
	}
	if !quoted.Quote.DepositAmount.Equal(decimal.RequireFromString("231")) {
		t.Fatalf("expected deposit 231, got %s", quoted.Quote.DepositAmount)
	}
	if quoted.StatusReason != "travel included" {
		t.Fatalf("expected note as status reason, got %q", quoted.StatusReason)
	}
}

func TestQuoteBookingAdminOnly(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	_, err := f.svc.Booking.QuoteBooking(f.ctx, f.client, b.ID, &request.QuoteBookingRequest{})
	requireKind(t, err, domain.KindForbidden)
	if got := f.booking(b.ID); got.Status != entity.BookingStatusPending {
		t.Fatalf("status changed to %s", got.Status)
	}
}

func TestTransitionOutsideTableLeavesBookingUnchanged(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()
	before := f.booking(b.ID)

	for _, to := range []entity.BookingStatus{
		entity.BookingStatusConfirmed,
		entity.BookingStatusInProgress,
		entity.BookingStatusCompleted,
	} {
		_, err := f.svc.Booking.Transition(f.ctx, f.admin, b.ID, &request.TransitionRequest{Status: string(to), Reason: "x"})
		requireCode(t, err, domain.CodeInvalidTransition)

		after := f.booking(b.ID)
		if after.Status != before.Status || after.Version != before.Version {
			t.Fatalf("booking changed after refused move to %s: %s v%d", to, after.Status, after.Version)
		}
	}
}

func TestCompletedBookingRejectsEveryTransition(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	stored := f.booking(b.ID)
	stored.Status = entity.BookingStatusCompleted
	f.store.PutBooking(*stored)

	for _, to := range []entity.BookingStatus{
		entity.BookingStatusCancelled,
		entity.BookingStatusInProgress,
		entity.BookingStatusQuoteSent,
		entity.BookingStatusRejected,
	} {
		_, err := f.svc.Booking.Transition(f.ctx, f.admin, b.ID, &request.TransitionRequest{Status: string(to), Reason: "late"})
		requireCode(t, err, domain.CodeInvalidTransition)
	}
	if got := f.booking(b.ID); got.Status != entity.BookingStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	_, err := f.svc.Booking.Transition(f.ctx, f.admin, b.ID, &request.TransitionRequest{Status: "rejected"})
	requireCode(t, err, domain.CodeReasonRequired)

	out, err := f.svc.Booking.Transition(f.ctx, f.admin, b.ID, &request.TransitionRequest{Status: "rejected", Reason: "double booked"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if out.NewStatus != "rejected" || out.PreviousStatus != "pending" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestTransitionAbortsWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()
	sent := f.disp.count("")

	f.store.FailAudit(errors.New("audit store down"))
	_, err := f.svc.Booking.Transition(f.ctx, f.client, b.ID, &request.TransitionRequest{Status: "quote_requested"})
	if err == nil {
		t.Fatal("expected transition to fail with the audit write")
	}
	f.store.FailAudit(nil)

	if got := f.booking(b.ID); got.Status != entity.BookingStatusPending || got.Version != 1 {
		t.Fatalf("transition survived audit failure: %s v%d", got.Status, got.Version)
	}
	if f.disp.count("") != sent {
		t.Fatal("notification sent for an aborted transition")
	}
}

func TestBookingHiddenFromOtherClients(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	_, err := f.svc.Booking.GetBooking(f.ctx, f.otherClient, b.ID)
	requireCode(t, err, domain.CodeBookingNotFound)

	_, err = f.svc.Booking.Transition(f.ctx, f.otherClient, b.ID, &request.TransitionRequest{Status: "cancelled"})
	requireCode(t, err, domain.CodeBookingNotFound)

	got, err := f.svc.Booking.GetBooking(f.ctx, f.performerUser, b.ID)
	if err != nil {
		t.Fatalf("performer should see own booking: %v", err)
	}
	if len(got.AllowedTransitions) == 0 {
		t.Fatal("expected allowed transitions on a pending booking")
	}
}

func TestListBookingsScopesByRole(t *testing.T) {
	f := newFixture(t)
	f.createBooking()
	f.createBooking()

	page := request.PaginatedRequest{Page: 1, PerPage: 10}

	mine, err := f.svc.Booking.ListBookings(f.ctx, f.client, &request.BookingListRequest{PaginatedRequest: page})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if mine.Pagination.Total != 2 {
		t.Fatalf("client expected 2 bookings, got %d", mine.Pagination.Total)
	}

	other, err := f.svc.Booking.ListBookings(f.ctx, f.otherClient, &request.BookingListRequest{PaginatedRequest: page})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if other.Pagination.Total != 0 || other.Data == nil {
		t.Fatalf("other client expected an empty page, got %+v", other)
	}

	perf, err := f.svc.Booking.ListBookings(f.ctx, f.performerUser, &request.BookingListRequest{PaginatedRequest: page, Status: "pending"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if perf.Pagination.Total != 2 {
		t.Fatalf("performer expected 2 bookings, got %d", perf.Pagination.Total)
	}
}

func TestLateClientCancellationNeedsAdminDecision(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	// event is 72h out; move the clock to 12h before it
	f.now = f.now.Add(60 * time.Hour)

	out, err := f.svc.Booking.Transition(f.ctx, f.client, b.ID, &request.TransitionRequest{Status: "cancelled", Reason: "venue flooded"})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !out.FlaggedForReview || out.NewStatus != "pending" {
		t.Fatalf("expected flag without status change, got %+v", out)
	}
	if f.disp.count(notify.TemplateCancellationReview) == 0 {
		t.Fatal("expected cancellation review notice")
	}

	_, err = f.svc.Booking.Transition(f.ctx, f.client, b.ID, &request.TransitionRequest{Status: "cancelled"})
	requireCode(t, err, domain.CodeInvalidTransition)

	_, err = f.svc.Booking.DecideCancellation(f.ctx, f.client, b.ID, &request.CancellationDecisionRequest{Approve: true})
	requireKind(t, err, domain.KindForbidden)

	decided, err := f.svc.Booking.DecideCancellation(f.ctx, f.admin, b.ID, &request.CancellationDecisionRequest{Approve: true})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.NewStatus != "cancelled" {
		t.Fatalf("expected cancelled, got %s", decided.NewStatus)
	}
	if got := f.booking(b.ID); got.CancellationReview {
		t.Fatal("review flag should clear once cancelled")
	}
}

func TestDeniedCancellationClearsFlag(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()
	f.now = f.now.Add(60 * time.Hour)

	if _, err := f.svc.Booking.Transition(f.ctx, f.client, b.ID, &request.TransitionRequest{Status: "cancelled"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	out, err := f.svc.Booking.DecideCancellation(f.ctx, f.admin, b.ID, &request.CancellationDecisionRequest{Reason: "inside notice window"})
	if err != nil {
		t.Fatalf("deny: %v", err)
	}
	if out.NewStatus != "pending" {
		t.Fatalf("expected status unchanged, got %s", out.NewStatus)
	}
	got := f.booking(b.ID)
	if got.CancellationReview || got.CancellationRequestedBy != nil {
		t.Fatal("expected review flag cleared")
	}

	_, err = f.svc.Booking.DecideCancellation(f.ctx, f.admin, b.ID, &request.CancellationDecisionRequest{})
	requireCode(t, err, domain.CodeInvalidTransition)
}

func TestUpdateBookingDetailsRequotes(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()
	hours := decimal.NewFromInt(3)

	updated, err := f.svc.Booking.UpdateBookingDetails(f.ctx, f.client, b.ID, &request.UpdateBookingRequest{DurationHours: &hours})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Quote.TotalAmount.Equal(decimal.RequireFromString("495")) {
		t.Fatalf("expected total 495, got %s", updated.Quote.TotalAmount)
	}

	if _, err := f.svc.Booking.QuoteBooking(f.ctx, f.admin, b.ID, &request.QuoteBookingRequest{}); err != nil {
		t.Fatalf("quote: %v", err)
	}
	_, err = f.svc.Booking.UpdateBookingDetails(f.ctx, f.client, b.ID, &request.UpdateBookingRequest{DurationHours: &hours})
	requireCode(t, err, domain.CodeInvalidTransition)
}

func TestStartDueBookings(t *testing.T) {
	f := newFixture(t)
	b := f.createBooking()

	stored := f.booking(b.ID)
	stored.Status = entity.BookingStatusConfirmed
	stored.PaymentStatus = entity.BookingPaymentDepositPaid
	f.store.PutBooking(*stored)

	n, err := f.svc.Booking.StartDueBookings(f.ctx)
	if err != nil || n != 0 {
		t.Fatalf("nothing is due yet: n=%d err=%v", n, err)
	}

	f.now = stored.EventDate.Add(time.Minute)
	n, err = f.svc.Booking.StartDueBookings(f.ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 started, got %d", n)
	}
	if got := f.booking(b.ID); got.Status != entity.BookingStatusInProgress {
		t.Fatalf("expected in_progress, got %s", got.Status)
	}

	trail, _ := f.svc.Booking.AuditTrail(f.ctx, f.admin, b.ID)
	last := trail[len(trail)-1]
	if last.ToState != "in_progress" || last.ActorID != "" {
		t.Fatalf("expected system audit entry, got %+v", last)
	}
}
