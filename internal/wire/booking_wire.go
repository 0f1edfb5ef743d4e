package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))

		// Clients create, performers and admins read and move bookings
		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings", bookingHandler.ListBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Patch("/api/bookings/{id}", bookingHandler.UpdateBooking)
		r.Post("/api/bookings/{id}/transitions", bookingHandler.Transition)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))
		r.Use(middleware.RequireRole(log, string(entity.RoleAdmin)))

		// GET /api/admin/bookings?status=&cancellation_review=true
		r.Get("/", bookingHandler.ListBookings)

		// POST /api/admin/bookings/{id}/quote - send (or override) the quote
		r.Post("/{id}/quote", bookingHandler.QuoteBooking)

		// POST /api/admin/bookings/{id}/cancellation - approve or deny a late cancellation
		r.Post("/{id}/cancellation", bookingHandler.DecideCancellation)
	})
}
