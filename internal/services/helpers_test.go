package services

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/notify"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	nopLogger = zerolog.New(io.Discard)
	fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var orderColumnNames = []string{"id", "reference", "amount", "email", "status", "product_id", "user_id", "created_at"}

// recordingNotifier is safe for use from dispatcher goroutines.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingNotifier) record(kind string, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, kind+":"+order.Reference)
	return nil
}

func (r *recordingNotifier) OrderConfirmation(_ context.Context, o *models.Order) error {
	return r.record("confirmation", o)
}

func (r *recordingNotifier) PaymentReceipt(_ context.Context, o *models.Order) error {
	return r.record("receipt", o)
}

func (r *recordingNotifier) StatusChanged(_ context.Context, o *models.Order) error {
	return r.record("status", o)
}

func (r *recordingNotifier) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestNotifications() (*OrderNotifications, *recordingNotifier, *notify.Dispatcher) {
	rec := &recordingNotifier{}
	d := notify.NewDispatcher(nopLogger)
	return NewOrderNotifications(rec, d), rec, d
}

// fakeRecorder stands in for the order ledger.
type fakeRecorder struct {
	charges []models.PaidCharge
	created bool
	err     error
}

func (f *fakeRecorder) RecordPayment(_ context.Context, charge models.PaidCharge) (*models.Order, bool, error) {
	f.charges = append(f.charges, charge)
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Order{
		ID:        1,
		Reference: charge.Reference,
		Amount:    charge.Amount,
		Email:     charge.Email,
		Status:    models.OrderStatusPaid,
		ProductID: charge.ProductID,
		UserID:    charge.UserID,
		CreatedAt: fixedTime,
	}, f.created, nil
}
