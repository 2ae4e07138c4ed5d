package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	productID, userID := int64(3), int64(9)
	c := NewClient(srv.URL, "sk_test")
	res, err := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email:       "buyer@example.com",
		Amount:      500000,
		CallbackURL: "https://shop.ng/checkout/success",
		Metadata:    Metadata{ProductID: NewFlexibleID(&productID), UserID: NewFlexibleID(&userID)},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
	assert.Equal(t, "ref-1", res.Reference)
	assert.Equal(t, float64(500000), got["amount"])
	assert.Equal(t, map[string]any{"productId": float64(3), "userId": float64(9)}, got["metadata"])
	assert.NotContains(t, got, "reference")
}

func TestInitializeTransactionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "sk_test").InitializeTransaction(context.Background(), InitializeRequest{Email: "a@b.c", Amount: 100})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Duplicate Transaction Reference", apiErr.Message)
}

func TestClientWithoutSecret(t *testing.T) {
	_, err := NewClient("", "").VerifyTransaction(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-42", r.URL.Path)
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"ref-42","amount":500000,"status":"success","currency":"NGN","customer":{"email":"buyer@example.com"},"metadata":{"productId":"7","userId":12}}}`))
	}))
	defer srv.Close()

	tx, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "ref-42")
	require.NoError(t, err)

	assert.True(t, tx.Successful())
	assert.Equal(t, int64(500000), tx.Amount)
	assert.Equal(t, "buyer@example.com", tx.Customer.Email)
	require.NotNil(t, tx.Metadata.ProductID.Ptr())
	assert.Equal(t, int64(7), *tx.Metadata.ProductID.Ptr())
	assert.Equal(t, int64(12), *tx.Metadata.UserID.Ptr())
}

func TestVerifyTransactionEmptyMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"message":"ok","data":{"reference":"r","amount":100,"status":"abandoned","customer":{"email":"x@y.z"},"metadata":""}}`))
	}))
	defer srv.Close()

	tx, err := NewClient(srv.URL, "sk_test").VerifyTransaction(context.Background(), "r")
	require.NoError(t, err)

	assert.False(t, tx.Successful())
	assert.Nil(t, tx.Metadata.ProductID.Ptr())
	assert.Nil(t, tx.Metadata.UserID.Ptr())
}
