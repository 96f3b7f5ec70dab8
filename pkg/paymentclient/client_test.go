package paymentclient

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

func TestClient_CreatePayment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/payments", r.URL.Path)
		assert.Equal(t, "order-1-42", r.Header.Get("Idempotence-Key"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)

		var in CreatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "250.00", in.Amount.Value)
		assert.Equal(t, "order-1", in.Metadata["order_id"])

		_ = json.NewEncoder(w).Encode(Payment{
			ID:           "pay-1",
			Status:       "pending",
			Amount:       in.Amount,
			Confirmation: &Confirmation{Type: "redirect", ConfirmationURL: "https://pay/confirm"},
			Metadata:     in.Metadata,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v3", "shop", "secret")
	p, err := c.CreatePayment(context.Background(), "order-1-42", CreatePaymentRequest{
		Amount:       Amount{Value: "250.00", Currency: "RUB"},
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: "https://shop/return"},
		Metadata:     map[string]string{"order_id": "order-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-1", p.ID)
	require.NotNil(t, p.Confirmation)
	assert.Equal(t, "https://pay/confirm", p.Confirmation.ConfirmationURL)
}

func TestClient_GetPayment_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/missing", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","code":"not_found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "shop", "secret")
	_, err := c.GetPayment(context.Background(), "missing")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Body, "not_found")
}
