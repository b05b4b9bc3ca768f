package wire

import (
	"event-booking/internal/adaptor"
	"event-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity())

		// POST /api/payments/create-intent - Register intent with the provider
		r.Post("/api/payments/create-intent", paymentHandler.CreateIntent)

		// POST /api/payments/confirm - Confirm a completed payment
		r.Post("/api/payments/confirm", paymentHandler.ConfirmPayment)
	})

	// ==================== PROVIDER CALLBACK ====================
	// Authenticated by signature, not by user identity
	r.Post("/api/payments/webhook", paymentHandler.HandleWebhook)
}
