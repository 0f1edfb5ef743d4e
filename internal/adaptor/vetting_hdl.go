package adaptor

import (
	"context"
	"net/http"

	"entertainer-booking/internal/domain/access"
	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/dto/response"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VettingHandler struct {
	service usecase.VettingService
	log     *zap.Logger
}

func NewVettingHandler(service usecase.VettingService, log *zap.Logger) *VettingHandler {
	return &VettingHandler{
		service: service,
		log:     log.With(zap.String("handler", "vetting")),
	}
}

// Submit handles POST /api/vetting/applications (protected)
func (h *VettingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.VettingApplicationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	app, err := h.service.Submit(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit application")
		return
	}

	utils.ResponseCreated(w, "Application submitted", app)
}

// List handles GET /api/admin/vetting (admin)
func (h *VettingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	req := paginationFromQuery(r)
	apps, err := h.service.List(r.Context(), actor, r.URL.Query().Get("status"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list applications")
		return
	}

	utils.ResponseSuccess(w, "success", apps)
}

// Approve handles POST /api/admin/vetting/{id}/approve (admin)
func (h *VettingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve application", h.service.Approve)
}

// Reject handles POST /api/admin/vetting/{id}/reject (admin)
func (h *VettingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject application", h.service.Reject)
}

type reviewFunc = func(ctx context.Context, actor access.Principal, id string, req *request.ReviewApplicationRequest) (*response.ApplicationResponse, error)

func (h *VettingHandler) review(w http.ResponseWriter, r *http.Request, operation string, decide reviewFunc) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.ReviewApplicationRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	app, err := decide(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "Application "+app.Status, app)
}
