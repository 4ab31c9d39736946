package adaptor

import (
	"encoding/json"
	"net/http"

	"cinema-showtime/internal/dto/request"
	"cinema-showtime/internal/dto/response"
	"cinema-showtime/internal/usecase"
	"cinema-showtime/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// ConfirmPayment handles POST /api/payments/confirm. The caller is the
// payment webhook relay, which has already verified the provider signature.
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req request.PaymentConfirmedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.ConfirmPayment(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "confirm payment")
		return
	}

	// Absorbed signals still get a 2xx so the provider stops retrying.
	if result.Outcome == response.PaymentAbsorbed {
		utils.ResponseAccepted(w, "Payment signal ignored", result)
		return
	}
	utils.ResponseSuccess(w, "Payment confirmed", result)
}

// AttachPaymentLink handles PUT /api/bookings/{id}/payment-link (protected)
func (h *PaymentHandler) AttachPaymentLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.PaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.AttachPaymentLink(r.Context(), userID, chi.URLParam(r, "id"), &req); err != nil {
		writeServiceError(w, h.log, err, "attach payment link")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
