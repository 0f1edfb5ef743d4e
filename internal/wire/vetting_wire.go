package wire

import (
	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireVetting(
	r chi.Router,
	vettingHandler *adaptor.VettingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Any signed-in user may apply to perform
	r.With(middleware.Authenticate(config.Auth, log)).
		Post("/api/vetting/applications", vettingHandler.Submit)

	r.Route("/api/admin/vetting", func(r chi.Router) {
		r.Use(middleware.Authenticate(config.Auth, log))
		r.Use(middleware.RequireRole(log, string(entity.RoleAdmin)))

		r.Get("/", vettingHandler.List)
		r.Post("/{id}/approve", vettingHandler.Approve)
		r.Post("/{id}/reject", vettingHandler.Reject)
	})
}
