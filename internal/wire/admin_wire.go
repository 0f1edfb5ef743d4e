package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	settingsHandler *adaptor.SettingsHandler,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))
		r.Use(middleware.RequireRole(log, string(entity.RoleAdmin)))

		// Platform-wide deposit and referral percentages
		r.Get("/api/admin/settings", settingsHandler.Get)
		r.Put("/api/admin/settings", settingsHandler.Update)

		// GET /api/admin/audit/{entityId} - audit trail of a booking, payment or application
		r.Get("/api/admin/audit/{entityId}", bookingHandler.AuditTrail)
	})
}
