package adaptor

import (
	"net/http"

	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// ListBookings handles GET /api/bookings and GET /api/admin/bookings (protected)
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.BookingListRequest{
		PaginatedRequest:   paginationFromQuery(r),
		Status:             query.Get("status"),
		CancellationReview: query.Get("cancellation_review") == "true",
	}

	bookings, err := h.service.ListBookings(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// UpdateBooking handles PATCH /api/bookings/{id} (protected)
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateBookingDetails(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking")
		return
	}

	utils.ResponseSuccess(w, "Booking updated", booking)
}

// Transition handles POST /api/bookings/{id}/transitions (protected)
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.TransitionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.Transition(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "transition booking")
		return
	}

	if out.FlaggedForReview {
		utils.ResponseAccepted(w, "CancellationReview", "Cancellation is inside the notice window and awaits admin review", out)
		return
	}
	utils.ResponseSuccess(w, "Booking status updated", out)
}

// QuoteBooking handles POST /api/admin/bookings/{id}/quote (admin)
func (h *BookingHandler) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.QuoteBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	booking, err := h.service.QuoteBooking(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote booking")
		return
	}

	utils.ResponseSuccess(w, "Quote sent", booking)
}

// DecideCancellation handles POST /api/admin/bookings/{id}/cancellation (admin)
func (h *BookingHandler) DecideCancellation(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.CancellationDecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.service.DecideCancellation(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "decide cancellation")
		return
	}

	utils.ResponseSuccess(w, "Cancellation decided", out)
}

// AuditTrail handles GET /api/admin/audit/{entityId} (admin)
func (h *BookingHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	entries, err := h.service.AuditTrail(r.Context(), actor, chi.URLParam(r, "entityId"))
	if err != nil {
		handleServiceError(w, h.log, err, "audit trail")
		return
	}

	utils.ResponseSuccess(w, "success", entries)
}
