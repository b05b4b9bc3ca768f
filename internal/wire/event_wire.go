package wire

import (
	"event-booking/internal/adaptor"
	"event-booking/internal/usecase"
	"event-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireEvent(r chi.Router, eventHandler *adaptor.EventHandler) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/events - Browse approved open events
	r.Get("/api/events", eventHandler.ListEvents)

	// GET /api/events/{id} - Event details
	r.Get("/api/events/{id}", eventHandler.GetEvent)

	// ==================== HOST ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity())
		r.Use(middleware.RequireRole(usecase.RoleHost, usecase.RoleAdmin))

		// POST /api/events - Create event (pending admin approval)
		r.Post("/api/events", eventHandler.CreateEvent)

		// PATCH /api/events/{id}/status - Cancel or complete own event
		r.Patch("/api/events/{id}/status", eventHandler.UpdateEventStatus)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/events", func(r chi.Router) {
		r.Use(middleware.Identity())
		r.Use(middleware.RequireRole(usecase.RoleAdmin))

		// POST /api/admin/events/{id}/approve - Approve event for bookings
		r.Post("/{id}/approve", eventHandler.ApproveEvent)
	})
}
