package services

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/notify"
)

// OrderNotifications fires order notifications without waiting for them.
type OrderNotifications struct {
	notifier   notify.Notifier
	dispatcher *notify.Dispatcher
}

func NewOrderNotifications(n notify.Notifier, d *notify.Dispatcher) *OrderNotifications {
	return &OrderNotifications{notifier: n, dispatcher: d}
}

// Paid sends the order confirmation and the payment receipt as two
// independent sends.
func (o *OrderNotifications) Paid(ctx context.Context, order *models.Order) {
	if o == nil {
		return
	}
	snapshot := *order
	o.dispatcher.Go(ctx, "order_confirmation", order.Reference, func(ctx context.Context) error {
		return o.notifier.OrderConfirmation(ctx, &snapshot)
	})
	o.dispatcher.Go(ctx, "payment_receipt", order.Reference, func(ctx context.Context) error {
		return o.notifier.PaymentReceipt(ctx, &snapshot)
	})
}

func (o *OrderNotifications) StatusChanged(ctx context.Context, order *models.Order) {
	if o == nil {
		return
	}
	snapshot := *order
	o.dispatcher.Go(ctx, "status_changed", order.Reference, func(ctx context.Context) error {
		return o.notifier.StatusChanged(ctx, &snapshot)
	})
}
