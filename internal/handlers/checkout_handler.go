package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/paystack"
	"storefront/internal/services"

	"github.com/rs/zerolog"
)

type checkoutFlow interface {
	InitiatePayment(ctx context.Context, caller models.Identity, req *models.CheckoutRequest) (*models.CheckoutResponse, error)
	ConfirmRedirect(ctx context.Context, reference string) (*services.PaymentConfirmation, error)
}

type webhookIngester interface {
	HandlePaystack(ctx context.Context, body []byte, signature string) (*services.WebhookResult, error)
}

type CheckoutHandler struct {
	checkout   checkoutFlow
	webhooks   webhookIngester
	successURL string
	logger     zerolog.Logger
}

func NewCheckoutHandler(checkout checkoutFlow, webhooks webhookIngester, successURL string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:   checkout,
		webhooks:   webhooks,
		successURL: successURL,
		logger:     logger,
	}
}

func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.CheckoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.checkout.InitiatePayment(r.Context(), *identity, &req)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// Success is where Paystack sends the payer after checkout. Without a
// frontend URL configured the outcome is returned as JSON instead.
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		reference = r.URL.Query().Get("trxref")
	}

	confirmation, err := h.checkout.ConfirmRedirect(r.Context(), reference)
	if err != nil {
		if h.successURL == "" || errors.Is(err, services.ErrValidation) {
			respondWithServiceError(w, h.logger, err)
			return
		}
		h.logger.Error().Err(err).Str("reference", reference).Msg("Payment verification failed")
		h.redirect(w, r, reference, "error")
		return
	}

	if h.successURL == "" {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"reference": confirmation.Reference,
			"status":    confirmation.Status,
			"order":     confirmation.Order,
		})
		return
	}
	h.redirect(w, r, confirmation.Reference, confirmation.Status)
}

func (h *CheckoutHandler) redirect(w http.ResponseWriter, r *http.Request, reference, status string) {
	target, err := url.Parse(h.successURL)
	if err != nil {
		h.logger.Error().Err(err).Msg("FRONTEND_SUCCESS_URL is not a valid URL")
		respondWithError(w, http.StatusInternalServerError, "configuration_error", "Frontend URL is invalid")
		return
	}
	q := target.Query()
	q.Set("reference", reference)
	q.Set("status", status)
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// PaystackWebhook reads the body untouched; the signature covers the raw
// bytes.
func (h *CheckoutHandler) PaystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Could not read request body")
		return
	}

	signature := strings.TrimSpace(r.Header.Get(paystack.SignatureHeader))
	result, err := h.webhooks.HandlePaystack(r.Context(), body, signature)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	if result.Order != nil {
		h.logger.Info().
			Str("event", result.Event).
			Str("reference", result.Order.Reference).
			Bool("created", result.Created).
			Msg("Webhook processed")
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
