package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Email     string          `json:"email"`
	Status    OrderStatus     `json:"status"`
	ProductID *int64          `json:"productId,omitempty"`
	UserID    *int64          `json:"userId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusRefunded OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// PaidCharge is a successful gateway charge as reported by the webhook or
// the verify endpoint.
type PaidCharge struct {
	Reference string
	Amount    decimal.Decimal
	Email     string
	ProductID *int64
	UserID    *int64
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed refunded"`
}

type CheckoutRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Reference string          `json:"reference" validate:"omitempty,max=100"`
}

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	Message          string `json:"message"`
}

type OrderStats struct {
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PaidOrders     int             `json:"paidOrders"`
	PendingOrders  int             `json:"pendingOrders"`
	FailedOrders   int             `json:"failedOrders"`
	RefundedOrders int             `json:"refundedOrders"`
}
