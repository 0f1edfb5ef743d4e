package adaptor

import (
	"net/http"

	"entertainer-booking/internal/domain"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// RequestReceiptUpload handles POST /api/bookings/{id}/receipts (protected)
func (h *PaymentHandler) RequestReceiptUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.ReceiptUploadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upload, err := h.service.RequestReceiptUpload(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request receipt upload")
		return
	}

	utils.ResponseCreated(w, "Upload ready", upload)
}

// SubmitPayment handles POST /api/bookings/{id}/payments (protected, rate limited)
func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.SubmitPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payment, err := h.service.SubmitPayment(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit payment")
		return
	}

	utils.ResponseCreated(w, "Payment submitted for verification", payment)
}

// ListForBooking handles GET /api/bookings/{id}/payments (protected)
func (h *PaymentHandler) ListForBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListForBooking(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list booking payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// VerifyPayment handles POST /api/admin/payments/{id}/verify (admin)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.VerifyPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify payment")
		return
	}

	if result.Code == string(domain.CodeAmountMismatch) {
		utils.ResponseAccepted(w, result.Code, "Payment recorded but does not match the expected amount; flagged for review", result)
		return
	}
	utils.ResponseSuccess(w, "Payment verification recorded", result)
}

// ResolvePaymentFlag handles POST /api/admin/payments/{id}/resolve (admin)
func (h *PaymentHandler) ResolvePaymentFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.ResolvePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payment, err := h.service.ResolvePaymentFlag(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "resolve payment flag")
		return
	}

	utils.ResponseSuccess(w, "Review flag cleared", payment)
}

// Queue handles GET /api/admin/payments/queue (admin)
func (h *PaymentHandler) Queue(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	payments, err := h.service.Queue(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "payment queue")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// Flagged handles GET /api/admin/payments/flagged (admin)
func (h *PaymentHandler) Flagged(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	payments, err := h.service.Flagged(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "flagged payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}
