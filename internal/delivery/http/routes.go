package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the booking API under /api/v1.
func (h *HTTPHandler) NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.l))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.HealthCheck)
		r.Post("/sessions", h.CreateSession)
		r.Get("/catalog", h.Catalog)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(h.sessionSvc, h.l))

			r.Delete("/sessions/current", h.ResetSession)

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", h.GetTickets)
				r.Get("/slots", h.AvailableSlots)
				r.Put("/date", h.SelectDate)
				r.Put("/slot", h.SelectSlot)
				r.Post("/continue", h.ContinueTickets)
				r.Post("/{ticketType}/increment", h.IncrementTicket)
				r.Post("/{ticketType}/decrement", h.DecrementTicket)
			})

			r.Route("/lockers", func(r chi.Router) {
				r.Get("/", h.GetLockers)
				r.Post("/opt-in", h.OptInLockers)
				r.Post("/opt-out", h.OptOutLockers)
				r.Post("/count/increment", h.IncrementLockers)
				r.Post("/count/decrement", h.DecrementLockers)
				r.Put("/duration", h.SelectLockerDuration)
				r.Post("/continue", h.ContinueLockers)
			})

			r.Get("/summary", h.GetSummary)
			r.Get("/checkout", h.GetCheckout)
			r.Post("/checkout", h.SubmitCheckout)
			r.Get("/confirmation", h.GetConfirmation)
			r.Get("/my-bookings", h.MyBookings)
		})
	})

	return r
}
