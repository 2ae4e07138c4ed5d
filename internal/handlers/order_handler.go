package handlers

import (
	"context"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/models"

	"github.com/rs/zerolog"
)

type orderStore interface {
	FindAll(ctx context.Context) ([]*models.Order, error)
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	FindForUser(ctx context.Context, userID int64, email string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

type OrderHandler struct {
	orders orderStore
	logger zerolog.Logger
}

func NewOrderHandler(orders orderStore, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// MyOrders lists the caller's orders.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	orders, err := h.orders.FindForUser(r.Context(), identity.UserID, identity.Email)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}
