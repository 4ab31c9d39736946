package wire

import (
	"net/http"

	"cinema-showtime/internal/adaptor"
	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/database"
	"cinema-showtime/pkg/middleware"
	"cinema-showtime/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds handlers over the services and mounts every route.
func Wiring(service *usecase.Service, db database.PgxIface, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, db, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Identity(logger))

	wireShow(r, handler.Show, logger)
	wireBooking(r, handler.Booking, logger)
	wirePayment(r, handler.Payment, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unreachable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", map[string]string{"app": config.App.Name})
	})

	return r
}
