package adaptor

import (
	"net/http"

	"entertainer-booking/internal/dto/request"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/utils"

	"go.uber.org/zap"
)

type QuoteHandler struct {
	service usecase.QuoteService
	log     *zap.Logger
}

func NewQuoteHandler(service usecase.QuoteService, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		service: service,
		log:     log.With(zap.String("handler", "quote")),
	}
}

// Quote handles POST /api/quotes (public)
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote")
		return
	}

	utils.ResponseSuccess(w, "success", q)
}
