package adaptor

import (
	"entertainer-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Quote    *QuoteHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
	Vetting  *VettingHandler
	Catalog  *CatalogHandler
	Settings *SettingsHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Quote:    NewQuoteHandler(service.Quote, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Payment:  NewPaymentHandler(service.Payment, log),
		Vetting:  NewVettingHandler(service.Vetting, log),
		Catalog:  NewCatalogHandler(service.Catalog, log),
		Settings: NewSettingsHandler(service.Settings, log),
	}
}
