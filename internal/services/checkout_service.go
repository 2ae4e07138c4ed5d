package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/paystack"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentGateway is the payment processor the storefront charges through.
type PaymentGateway interface {
	Configured() bool
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type productFinder interface {
	FindByID(ctx context.Context, productID int64) (*models.Product, error)
}

type paymentRecorder interface {
	RecordPayment(ctx context.Context, charge models.PaidCharge) (*models.Order, bool, error)
}

type CheckoutService struct {
	gateway       PaymentGateway
	products      productFinder
	orders        paymentRecorder
	notifications *OrderNotifications
	callbackURL   string
	logger        zerolog.Logger
	newReference  func() string
}

func NewCheckoutService(
	gateway PaymentGateway,
	products productFinder,
	orders paymentRecorder,
	notifications *OrderNotifications,
	callbackURL string,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway:       gateway,
		products:      products,
		orders:        orders,
		notifications: notifications,
		callbackURL:   callbackURL,
		logger:        logger,
		newReference:  func() string { return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]) },
	}
}

// InitiatePayment opens a Paystack checkout session for the caller.
func (s *CheckoutService) InitiatePayment(ctx context.Context, caller models.Identity, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if !s.gateway.Configured() {
		s.logger.Error().Msg("PAYSTACK_SECRET_KEY is not set")
		return nil, fmt.Errorf("%w: payment gateway secret key is not set", ErrConfiguration)
	}
	if s.callbackURL == "" {
		s.logger.Error().Msg("Paystack callback URL is not set")
		return nil, fmt.Errorf("%w: payment callback URL is not set", ErrConfiguration)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}

	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = s.newReference()
	}

	productID, userID := req.ProductID, caller.UserID
	res, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       normalizeEmail(req.Email),
		Amount:      models.ToMinorUnits(req.Amount),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata: paystack.Metadata{
			ProductID: paystack.NewFlexibleID(&productID),
			UserID:    paystack.NewFlexibleID(&userID),
		},
	})
	if err != nil {
		var apiErr *paystack.APIError
		if errors.As(err, &apiErr) {
			s.logger.Warn().Str("reference", reference).Int("status", apiErr.StatusCode).Str("message", apiErr.Message).Msg("Paystack rejected payment initialization")
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, apiErr.Message)
		}
		s.logger.Error().Err(err).Str("reference", reference).Msg("Payment initialization failed")
		return nil, fmt.Errorf("payment initialization failed: %w", err)
	}

	s.logger.Info().
		Str("reference", res.Reference).
		Int64("user_id", caller.UserID).
		Int64("product_id", req.ProductID).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("Payment initialized")

	return &models.CheckoutResponse{
		AuthorizationURL: res.AuthorizationURL,
		Reference:        res.Reference,
		Message:          "Payment link generated successfully",
	}, nil
}

type PaymentConfirmation struct {
	Reference string
	Status    string
	Order     *models.Order
}

// ConfirmRedirect checks the transaction the payer returned from. A
// successful charge is recorded through the same idempotent path as the
// webhook, whichever of the two arrives first.
func (s *CheckoutService) ConfirmRedirect(ctx context.Context, reference string) (*PaymentConfirmation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrValidation)
	}
	if !s.gateway.Configured() {
		return nil, fmt.Errorf("%w: payment gateway secret key is not set", ErrConfiguration)
	}

	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		var apiErr *paystack.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, apiErr.Message)
		}
		return nil, fmt.Errorf("verify transaction: %w", err)
	}

	confirmation := &PaymentConfirmation{Reference: reference, Status: tx.Status}
	if !tx.Successful() {
		s.logger.Info().Str("reference", reference).Str("status", tx.Status).Msg("Payer returned from unsuccessful transaction")
		return confirmation, nil
	}

	order, created, err := s.orders.RecordPayment(ctx, chargeFromTransaction(tx))
	if err != nil {
		return nil, err
	}
	if created {
		s.notifications.Paid(ctx, order)
	}
	confirmation.Order = order
	return confirmation, nil
}

func chargeFromTransaction(tx *paystack.Transaction) models.PaidCharge {
	return models.PaidCharge{
		Reference: tx.Reference,
		Amount:    models.FromMinorUnits(tx.Amount),
		Email:     normalizeEmail(tx.Customer.Email),
		ProductID: tx.Metadata.ProductID.Ptr(),
		UserID:    tx.Metadata.UserID.Ptr(),
	}
}
