package handlers

import (
	"context"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/models"

	"github.com/rs/zerolog"
)

type statusNotifier interface {
	StatusChanged(ctx context.Context, order *models.Order)
}

type AdminHandler struct {
	orders        orderStore
	notifications statusNotifier
	logger        zerolog.Logger
}

func NewAdminHandler(orders orderStore, notifications statusNotifier, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:        orders,
		notifications: notifications,
		logger:        logger,
	}
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "Invalid order ID")
	if !ok {
		return
	}

	order, err := h.orders.FindByID(r.Context(), orderID)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "Invalid order ID")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if identity, ok := middleware.GetIdentity(r); ok {
		h.logger.Info().
			Int64("admin_id", identity.UserID).
			Int64("order_id", order.ID).
			Str("status", string(order.Status)).
			Msg("Admin changed order status")
	}

	if h.notifications != nil {
		h.notifications.StatusChanged(r.Context(), order)
	}
	respondWithJSON(w, http.StatusOK, order)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
