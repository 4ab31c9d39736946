package adaptor

import (
	"errors"
	"net/http"

	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps the usecase error taxonomy onto HTTP responses.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var (
		invalid  *usecase.ValidationError
		conflict *usecase.SeatConflictError
	)

	switch {
	case errors.As(err, &invalid):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", invalid.Fields)

	case errors.As(err, &conflict):
		log.Info(operation+" failed - seats taken", zap.Strings("seats", conflict.Seats))
		utils.ResponseConflict(w, "Seats already taken", map[string][]string{"seats": conflict.Seats})

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		log.Warn(operation+" failed - upstream unavailable", zap.Error(err))
		utils.ResponseBadGateway(w, "Movie catalog is unavailable")

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
