package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/paystack"
	"storefront/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectUserByID = "SELECT id, email, password_hash, first_name, last_name, role, is_active, created_at FROM users WHERE id = ?"

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "role", "is_active", "created_at"}

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      "router-secret",
		JWTExpiresIn:   time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	return newRouterWithConfig(t, testConfig())
}

func newRouterWithConfig(t *testing.T, cfg config.Config) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	r := SetupRouter(Dependencies{
		Config: cfg,
		DB:     database,
		Logger: zerolog.New(io.Discard),
	})
	return r, mock
}

func bearer(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.NewAuthService("router-secret", time.Hour, zerolog.New(io.Discard)).GenerateToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, mock := newTestRouter(t)

	for _, path := range []string{"/admin/orders", "/admin/orders/1", "/admin/stats", "/orders", "/auth/profile"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	r, mock := newTestRouter(t)
	token := bearer(t, &models.User{ID: 2, Email: "c@x.co", Role: models.RoleUser})

	mock.ExpectQuery(selectUserByID).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "c@x.co", "h", nil, nil, "user", true, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminStatsForAdmin(t *testing.T) {
	r, mock := newTestRouter(t)
	token := bearer(t, &models.User{ID: 1, Email: "a@x.co", Role: models.RoleAdmin})

	mock.ExpectQuery(selectUserByID).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "a@x.co", "h", nil, nil, "admin", true, time.Now()))
	mock.ExpectQuery("SELECT id, reference, amount, email, status, product_id, user_id, created_at FROM orders ORDER BY created_at DESC, id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "amount", "email", "status", "product_id", "user_id", "created_at"}).
			AddRow(1, "T-1", "5000.00", "b@x.co", "paid", nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paidOrders":1`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"connected"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWebhookRouteWithoutSecret(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/webhook/paystack", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitedClientRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	r, _ := newRouterWithConfig(t, cfg)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestWebhookBypassesRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 2
	cfg.PaystackSecretKey = "sk_test_router"
	r, _ := newRouterWithConfig(t, cfg)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	}

	body := []byte(`{"event":"transfer.success","data":{"reference":"TRF-1"}}`)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout/webhook/paystack", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(paystack.SignatureHeader, paystack.Sign(cfg.PaystackSecretKey, body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}
