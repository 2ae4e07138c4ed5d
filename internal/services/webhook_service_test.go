package services

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/paystack"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "sk_test_webhook"

const chargeSuccessBody = `{
	"event": "charge.success",
	"data": {
		"reference": "T-100",
		"amount": 500000,
		"status": "success",
		"currency": "NGN",
		"customer": {"email": "Buyer@Example.com"},
		"metadata": {"productId": "4", "userId": 9}
	}
}`

func TestWebhookRejections(t *testing.T) {
	body := []byte(chargeSuccessBody)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		signature string
		want      error
	}{
		{name: "missing secret", secret: "", body: body, signature: paystack.Sign(webhookSecret, body), want: ErrConfiguration},
		{name: "empty body", secret: webhookSecret, body: nil, signature: "", want: ErrBadRequest},
		{name: "missing signature", secret: webhookSecret, body: body, signature: "", want: ErrUnauthorized},
		{name: "signed with other key", secret: webhookSecret, body: body, signature: paystack.Sign("other", body), want: ErrUnauthorized},
		{
			name:      "tampered body",
			secret:    webhookSecret,
			body:      []byte(`{"event":"charge.success","data":{"reference":"T-100","amount":1}}`),
			signature: paystack.Sign(webhookSecret, body),
			want:      ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{created: true}
			s := NewWebhookService(tt.secret, rec, nil, nopLogger)

			_, err := s.HandlePaystack(context.Background(), tt.body, tt.signature)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, rec.charges)
		})
	}
}

func TestWebhookRecordsChargeSuccess(t *testing.T) {
	body := []byte(chargeSuccessBody)
	rec := &fakeRecorder{created: true}
	notifications, notifier, dispatcher := newTestNotifications()
	s := NewWebhookService(webhookSecret, rec, notifications, nopLogger)

	result, err := s.HandlePaystack(context.Background(), body, paystack.Sign(webhookSecret, body))
	require.NoError(t, err)
	dispatcher.Wait()

	assert.True(t, result.Created)
	require.Len(t, rec.charges, 1)
	charge := rec.charges[0]
	assert.Equal(t, "T-100", charge.Reference)
	assert.Equal(t, "5000.00", charge.Amount.StringFixed(2))
	assert.Equal(t, "buyer@example.com", charge.Email)
	assert.Equal(t, int64(4), *charge.ProductID)
	assert.Equal(t, int64(9), *charge.UserID)
	assert.ElementsMatch(t, []string{"confirmation:T-100", "receipt:T-100"}, notifier.Calls())
}

func TestWebhookDuplicateDeliveryDoesNotNotify(t *testing.T) {
	body := []byte(chargeSuccessBody)
	notifications, notifier, dispatcher := newTestNotifications()
	s := NewWebhookService(webhookSecret, &fakeRecorder{created: false}, notifications, nopLogger)

	result, err := s.HandlePaystack(context.Background(), body, paystack.Sign(webhookSecret, body))
	require.NoError(t, err)
	dispatcher.Wait()

	assert.False(t, result.Created)
	assert.NotNil(t, result.Order)
	assert.Empty(t, notifier.Calls())
}

func TestWebhookAcknowledgesWithoutRecording(t *testing.T) {
	tests := map[string]string{
		"other event":       `{"event":"transfer.success","data":{"reference":"T-1","amount":100}}`,
		"missing reference": `{"event":"charge.success","data":{"amount":100}}`,
		"malformed json":    `{"event":`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			body := []byte(raw)
			rec := &fakeRecorder{created: true}
			s := NewWebhookService(webhookSecret, rec, nil, nopLogger)

			result, err := s.HandlePaystack(context.Background(), body, paystack.Sign(webhookSecret, body))

			require.NoError(t, err)
			assert.Nil(t, result.Order)
			assert.Empty(t, rec.charges)
		})
	}
}

func TestWebhookLedgerFailureIsAcknowledged(t *testing.T) {
	body := []byte(chargeSuccessBody)
	s := NewWebhookService(webhookSecret, &fakeRecorder{err: errors.New("db down")}, nil, nopLogger)

	result, err := s.HandlePaystack(context.Background(), body, paystack.Sign(webhookSecret, body))

	require.NoError(t, err)
	assert.False(t, result.Created)
}
