package wire

import (
	"event-booking/internal/adaptor"
	"event-booking/internal/usecase"
	"event-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity())

		// POST /api/bookings - Book a slot on an event
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// DELETE /api/bookings/{id} - Cancel own booking
		r.Delete("/api/bookings/{id}", bookingHandler.CancelBooking)

		// GET /api/user/bookings - View own booking history
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.Identity())
		r.Use(middleware.RequireRole(usecase.RoleAdmin))

		// POST /api/admin/bookings/sweep - Force an expiry sweep now
		r.Post("/sweep", bookingHandler.SweepExpired)
	})
}
