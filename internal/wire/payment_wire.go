package wire

import (
	"cinema-showtime/internal/adaptor"
	"cinema-showtime/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, log *zap.Logger) {
	// Called by the webhook relay after signature verification.
	r.Post("/api/payments/confirm", paymentHandler.ConfirmPayment)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(log))

		r.Put("/api/bookings/{id}/payment-link", paymentHandler.AttachPaymentLink)
	})
}
