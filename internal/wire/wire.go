// internal/wire/wire.go
package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface
type App struct {
	Router *chi.Mux
}

// Wiring builds handlers on top of the service layer and mounts every route
func Wiring(service *usecase.Service, checks map[string]adaptor.HealthCheck, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)
	health := adaptor.NewHealthHandler(checks, logger)

	router := setupRouter(handler, health, config, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	health *adaptor.HealthHandler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	if config.App.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireCatalog(r, handler.Quote, handler.Catalog, config, logger)
	wireBooking(r, handler.Booking, config, logger)
	wirePayment(r, handler.Payment, config, logger)
	wireVetting(r, handler.Vetting, config, logger)
	wireAdmin(r, handler.Settings, handler.Booking, config, logger)

	r.Get("/health", health.Health)

	return r
}
