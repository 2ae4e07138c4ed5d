// Package notify delivers best-effort order notifications: email to the
// buyer and order events on the message bus.
package notify

import (
	"context"
	"errors"

	"storefront/internal/models"

	"github.com/rs/zerolog"
)

type Notifier interface {
	OrderConfirmation(ctx context.Context, order *models.Order) error
	PaymentReceipt(ctx context.Context, order *models.Order) error
	StatusChanged(ctx context.Context, order *models.Order) error
}

// Multi sends every notification to each notifier in turn.
type Multi []Notifier

func (m Multi) OrderConfirmation(ctx context.Context, order *models.Order) error {
	return m.each(func(n Notifier) error { return n.OrderConfirmation(ctx, order) })
}

func (m Multi) PaymentReceipt(ctx context.Context, order *models.Order) error {
	return m.each(func(n Notifier) error { return n.PaymentReceipt(ctx, order) })
}

func (m Multi) StatusChanged(ctx context.Context, order *models.Order) error {
	return m.each(func(n Notifier) error { return n.StatusChanged(ctx, order) })
}

func (m Multi) each(fn func(Notifier) error) error {
	var errs []error
	for _, n := range m {
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier only logs. Used when no mail transport is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) OrderConfirmation(_ context.Context, order *models.Order) error {
	l.log(order, "order_confirmation")
	return nil
}

func (l *LogNotifier) PaymentReceipt(_ context.Context, order *models.Order) error {
	l.log(order, "payment_receipt")
	return nil
}

func (l *LogNotifier) StatusChanged(_ context.Context, order *models.Order) error {
	l.log(order, "status_changed")
	return nil
}

func (l *LogNotifier) log(order *models.Order, kind string) {
	l.logger.Info().
		Str("notification", kind).
		Str("reference", order.Reference).
		Str("email", order.Email).
		Str("status", string(order.Status)).
		Msg("Notification (mail transport not configured)")
}
