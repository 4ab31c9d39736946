package wire

import (
	"cinema-showtime/internal/adaptor"
	"cinema-showtime/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShow(r chi.Router, showHandler *adaptor.ShowHandler, log *zap.Logger) {
	// Seat maps are public.
	r.Get("/api/shows/{id}/seats", showHandler.GetShowSeats)

	r.Route("/api/admin/shows", func(r chi.Router) {
		r.Use(middleware.Admin(log))

		r.Post("/", showHandler.CreateShow)
		r.Post("/bulk", showHandler.CreateShows)
	})
}
