package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/paystack"

	"github.com/rs/zerolog"
)

// WebhookService ingests Paystack callbacks.
type WebhookService struct {
	secret        string
	orders        paymentRecorder
	notifications *OrderNotifications
	logger        zerolog.Logger
}

func NewWebhookService(secret string, orders paymentRecorder, notifications *OrderNotifications, logger zerolog.Logger) *WebhookService {
	return &WebhookService{
		secret:        secret,
		orders:        orders,
		notifications: notifications,
		logger:        logger,
	}
}

type WebhookResult struct {
	Event   string
	Order   *models.Order
	Created bool
}

// HandlePaystack authenticates body against signature and records
// successful charges. Only a missing secret, an empty body and a bad
// signature are returned as errors; anything that goes wrong after the
// signature check is logged and acknowledged so Paystack does not retry.
func (s *WebhookService) HandlePaystack(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.secret == "" {
		s.logger.Error().Msg("Webhook received but PAYSTACK_SECRET_KEY is not set")
		return nil, fmt.Errorf("%w: payment gateway secret key is not set", ErrConfiguration)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty webhook body", ErrBadRequest)
	}
	if !paystack.VerifySignature(s.secret, body, signature) {
		s.logger.Warn().Bool("signature_present", signature != "").Msg("Webhook signature mismatch")
		return nil, fmt.Errorf("%w: invalid signature", ErrUnauthorized)
	}

	result := &WebhookResult{}

	ev, err := paystack.ParseEvent(body)
	if err != nil {
		s.logger.Error().Err(err).Msg("Webhook payload could not be decoded")
		return result, nil
	}
	result.Event = ev.Event

	if ev.Event != paystack.EventChargeSuccess {
		s.logger.Info().Str("event", ev.Event).Msg("Ignoring webhook event")
		return result, nil
	}
	if ev.Data.Reference == "" {
		s.logger.Warn().Msg("charge.success without reference")
		return result, nil
	}

	order, created, err := s.orders.RecordPayment(ctx, chargeFromTransaction(&ev.Data))
	if err != nil {
		s.logger.Error().Err(err).Str("reference", ev.Data.Reference).Msg("Failed to record order from webhook")
		return result, nil
	}
	result.Order = order
	result.Created = created

	if created {
		s.notifications.Paid(ctx, order)
	}
	return result, nil
}
