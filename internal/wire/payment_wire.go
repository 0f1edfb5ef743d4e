package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))

		r.Post("/api/bookings/{id}/receipts", paymentHandler.RequestReceiptUpload)
		r.Get("/api/bookings/{id}/payments", paymentHandler.ListForBooking)

		// Receipt submission is throttled per client IP
		r.With(middleware.RateLimit(config.RateLimit.PaymentsPerMinute, config.RateLimit.Burst, log)).
			Post("/api/bookings/{id}/payments", paymentHandler.SubmitPayment)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))
		r.Use(middleware.RequireRole(log, string(entity.RoleAdmin)))

		r.Get("/queue", paymentHandler.Queue)
		r.Get("/flagged", paymentHandler.Flagged)
		r.Post("/{id}/verify", paymentHandler.VerifyPayment)
		r.Post("/{id}/resolve", paymentHandler.ResolvePaymentFlag)
	})
}
