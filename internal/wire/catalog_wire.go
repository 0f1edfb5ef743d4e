package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCatalog(
	r chi.Router,
	quoteHandler *adaptor.QuoteHandler,
	catalogHandler *adaptor.CatalogHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/quotes", quoteHandler.Quote)
	r.Get("/api/performers/{id}/services", catalogHandler.ListServices)

	// ==================== PERFORMER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))
		r.Use(middleware.RequireRole(log, string(entity.RolePerformer), string(entity.RoleAdmin)))

		// POST /api/performer/services - performers add to their own catalogue
		r.Post("/api/performer/services", catalogHandler.CreateService)
	})
}
