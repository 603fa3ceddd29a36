package services

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

func newPaystackService(baseURL string) *PaystackService {
	return NewPaystackService(&config.PaymentConfig{
		BaseURL:       baseURL,
		SecretKey:     "sk_test_secret",
		WebhookSecret: "sk_test_secret",
		CallbackURL:   "https://hotel.example/payment/callback",
	}, testLogger())
}

func TestInitialize(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

			var req paystackInitRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(14850000), req.Amount)
			assert.Equal(t, "NGN", req.Currency)
			assert.Equal(t, "BK-2026-000001", req.Reference)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  true,
				"message": "Authorization URL created",
				"data": map[string]string{
					"authorization_url": "https://checkout.paystack.com/abc123",
					"access_code":       "abc123",
					"reference":         req.Reference,
				},
			})
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		result, err := svc.Initialize("BK-2026-000001",
			models.GatewayCustomer{Name: "Ada Obi", Email: "ada@example.com"},
			money.FromMajor(148500), "NGN")
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
		assert.Equal(t, "BK-2026-000001", result.Reference)
	})

	t.Run("Gateway Rejects Transaction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  false,
				"message": "Invalid email address",
			})
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		_, err := svc.Initialize("BK-2026-000002", models.GatewayCustomer{}, money.FromMajor(1000), "NGN")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email address")
	})

	t.Run("Server Error Is Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		_, err := svc.Initialize("BK-2026-000003", models.GatewayCustomer{}, money.FromMajor(1000), "NGN")
		var unreachable *models.GatewayUnreachableError
		assert.ErrorAs(t, err, &unreachable)
	})

	t.Run("Network Error Is Unreachable", func(t *testing.T) {
		svc := newPaystackService("http://127.0.0.1:1")
		_, err := svc.Initialize("BK-2026-000004", models.GatewayCustomer{}, money.FromMajor(1000), "NGN")
		var unreachable *models.GatewayUnreachableError
		assert.ErrorAs(t, err, &unreachable)
	})
}

func TestVerify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/BK-2026-000001", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]interface{}{
					"status":    "success",
					"reference": "BK-2026-000001",
					"amount":    14850000,
					"currency":  "NGN",
					"channel":   "card",
				},
			})
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		verification, err := svc.Verify("BK-2026-000001")
		require.NoError(t, err)
		assert.True(t, verification.Succeeded())
		assert.Equal(t, money.Amount(14850000), verification.Amount)
		assert.Equal(t, "card", verification.Channel)
	})

	t.Run("Abandoned Transaction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]interface{}{
					"status":    "abandoned",
					"reference": "BK-2026-000002",
					"amount":    0,
					"currency":  "NGN",
				},
			})
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		verification, err := svc.Verify("BK-2026-000002")
		require.NoError(t, err)
		assert.False(t, verification.Succeeded())
		assert.Equal(t, "abandoned", verification.Status)
	})

	t.Run("Unknown Reference", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  false,
				"message": "Transaction reference not found",
			})
		}))
		defer server.Close()

		svc := newPaystackService(server.URL)
		_, err := svc.Verify("BK-2026-999999")
		var verr *models.VerificationFailedError
		require.ErrorAs(t, err, &verr)
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := newPaystackService("http://unused")
	body := []byte(`{"event":"charge.success","data":{"reference":"BK-2026-000001"}}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifyWebhookSignature(body, valid))
	assert.False(t, svc.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, svc.VerifyWebhookSignature([]byte(`tampered`), valid))
}
