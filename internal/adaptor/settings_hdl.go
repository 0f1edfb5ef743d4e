package adaptor

import (
	"net/http"

	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

type SettingsHandler struct {
	service usecase.SettingsService
	log     *zap.Logger
}

func NewSettingsHandler(service usecase.SettingsService, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		log:     log.With(zap.String("handler", "settings")),
	}
}

// Get handles GET /api/admin/settings (admin)
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	settings, err := h.service.Get(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "get settings")
		return
	}

	utils.ResponseSuccess(w, "success", settings)
}

// Update handles PUT /api/admin/settings (admin)
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.UpdateSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	settings, err := h.service.Update(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update settings")
		return
	}

	utils.ResponseSuccess(w, "Settings updated", settings)
}
