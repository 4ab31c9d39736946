package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-showtime/internal/dto/request"
	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowHandler struct {
	service usecase.ShowService
	log     *zap.Logger
}

func NewShowHandler(service usecase.ShowService, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service: service,
		log:     log.With(zap.String("handler", "show")),
	}
}

// CreateShows handles POST /api/admin/shows/bulk (admin only)
func (h *ShowHandler) CreateShows(w http.ResponseWriter, r *http.Request) {
	var req request.BulkCreateShowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.CreateShows(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create shows")
		return
	}

	utils.ResponseCreated(w, "Shows created", result)
}

// CreateShow handles POST /api/admin/shows (admin only)
func (h *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	show, err := h.service.CreateShow(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create show")
		return
	}

	utils.ResponseCreated(w, "Show created", show)
}

// GetShowSeats handles GET /api/shows/{id}/seats
func (h *ShowHandler) GetShowSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.GetShowSeats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err, "get show seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}
