package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = "id, reference, amount, email, status, product_id, user_id, created_at"

// OrderService is the order ledger. Orders are keyed by the gateway
// reference, which the orders table holds unique.
type OrderService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewOrderService(db *sql.DB, logger zerolog.Logger) *OrderService {
	return &OrderService{
		db:     db,
		logger: logger,
	}
}

// RecordPayment stores a paid order for charge unless one already exists
// for its reference. created is false when the order was already there,
// including when a concurrent writer won the insert.
func (s *OrderService) RecordPayment(ctx context.Context, charge models.PaidCharge) (order *models.Order, created bool, err error) {
	if charge.Reference == "" {
		return nil, false, fmt.Errorf("%w: reference is required", ErrValidation)
	}

	existing, err := s.FindByReference(ctx, charge.Reference)
	if err == nil {
		s.logger.Info().Str("reference", charge.Reference).Int64("order_id", existing.ID).Msg("Order already recorded")
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	result, err := s.insertPaidOrder(ctx, charge)
	if db.IsForeignKeyViolation(err) {
		// Older schemas enforce the product and user references. The
		// payment is kept and the stale ids are dropped.
		s.logger.Warn().Err(err).Str("reference", charge.Reference).Msg("Order references unknown product or user, recording without them")
		charge.ProductID, charge.UserID = nil, nil
		result, err = s.insertPaidOrder(ctx, charge)
	}
	if db.IsDuplicateKey(err) {
		s.logger.Info().Str("reference", charge.Reference).Msg("Concurrent delivery already recorded order")
		existing, err := s.FindByReference(ctx, charge.Reference)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("reference", charge.Reference).Msg("Error creating order")
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get order ID: %w", err)
	}

	order, err = s.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("reference", order.Reference).
		Str("amount", order.Amount.StringFixed(2)).
		Msg("Order recorded")

	return order, true, nil
}

func (s *OrderService) insertPaidOrder(ctx context.Context, charge models.PaidCharge) (sql.Result, error) {
	return s.db.ExecContext(ctx,
		"INSERT INTO orders (reference, amount, email, status, product_id, user_id) VALUES (?, ?, ?, ?, ?, ?)",
		charge.Reference, charge.Amount.StringFixed(2), charge.Email, string(models.OrderStatusPaid),
		nullInt64(charge.ProductID), nullInt64(charge.UserID),
	)
}

func (s *OrderService) FindByID(ctx context.Context, orderID int64) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("Error fetching order")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

func (s *OrderService) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE reference = ?", reference)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, reference)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("Error fetching order")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

func (s *OrderService) FindAll(ctx context.Context) ([]*models.Order, error) {
	return s.queryOrders(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, id DESC")
}

// FindForUser lists the orders placed by a user, matched by account id or
// by the payer email the gateway reported.
func (s *OrderService) FindForUser(ctx context.Context, userID int64, email string) ([]*models.Order, error) {
	return s.queryOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? OR email = ? ORDER BY created_at DESC, id DESC",
		userID, normalizeEmail(email),
	)
}

// UpdateStatus changes an order's status under a row lock so concurrent
// admin edits apply one at a time.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of: pending, paid, failed, refunded", ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ? FOR UPDATE", orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("Error fetching order")
		return nil, fmt.Errorf("database error: %w", err)
	}
	previous := order.Status

	if _, err := tx.ExecContext(ctx, "UPDATE orders SET status = ? WHERE id = ?", string(status), orderID); err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("Error updating order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	order.Status = status

	s.logger.Info().
		Int64("order_id", orderID).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("Order status updated")

	return order, nil
}

func (s *OrderService) Stats(ctx context.Context) (*models.OrderStats, error) {
	orders, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeOrders(orders), nil
}

// SummarizeOrders counts orders per status; revenue only includes paid
// orders.
func SummarizeOrders(orders []*models.Order) *models.OrderStats {
	stats := &models.OrderStats{TotalRevenue: decimal.Zero}
	for _, o := range orders {
		stats.TotalOrders++
		switch o.Status {
		case models.OrderStatusPaid:
			stats.PaidOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(o.Amount)
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusFailed:
			stats.FailedOrders++
		case models.OrderStatusRefunded:
			stats.RefundedOrders++
		}
	}
	return stats
}

func (s *OrderService) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching orders")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order             models.Order
		status            string
		productID, userID sql.NullInt64
	)

	err := row.Scan(
		&order.ID, &order.Reference, &order.Amount, &order.Email, &status,
		&productID, &userID, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatus(status)
	if productID.Valid {
		val := productID.Int64
		order.ProductID = &val
	}
	if userID.Valid {
		val := userID.Int64
		order.UserID = &val
	}
	return &order, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
