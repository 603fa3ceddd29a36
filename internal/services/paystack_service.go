package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// PaymentGateway is the server-side contract with the card processor. The
// coordinator talks only to this interface; PaystackService is the live
// implementation.
type PaymentGateway interface {
	Initialize(reference string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error)
	Verify(reference string) (*models.GatewayVerification, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

// PaystackService handles payment gateway integration with Paystack
type PaystackService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// paystackInitRequest is the body for POST /transaction/initialize.
// Amount is in kobo, matching our internal representation exactly.
type paystackInitRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string     `json:"status"` // "success", "failed", "abandoned", "pending"
		Reference       string     `json:"reference"`
		Amount          int64      `json:"amount"` // kobo
		Currency        string     `json:"currency"`
		PaidAt          *time.Time `json:"paid_at"`
		Channel         string     `json:"channel"`
		GatewayResponse string     `json:"gateway_response"`
	} `json:"data"`
}

// PaystackWebhookEvent is the envelope Paystack posts to the webhook URL
type PaystackWebhookEvent struct {
	Event string `json:"event"` // "charge.success" etc.
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// NewPaystackService creates a new Paystack payment service
func NewPaystackService(cfg *config.PaymentConfig, logger *logrus.Logger) *PaystackService {
	return &PaystackService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Initialize opens a transaction with Paystack and returns the hosted
// payment page URL the guest is redirected to.
func (s *PaystackService) Initialize(reference string, customer models.GatewayCustomer, amount money.Amount, currency string) (*models.GatewayInitResult, error) {
	reqBody := paystackInitRequest{
		Email:       customer.Email,
		Amount:      int64(amount),
		Currency:    currency,
		Reference:   reference,
		CallbackURL: s.config.CallbackURL,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.config.BaseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &models.GatewayUnreachableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.GatewayUnreachableError{Err: err}
	}

	if resp.StatusCode >= 500 {
		return nil, &models.GatewayUnreachableError{
			Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var initResp paystackInitResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return nil, &models.GatewayUnreachableError{
			Err: fmt.Errorf("unparseable gateway response: %w", err),
		}
	}

	if !initResp.Status {
		return nil, fmt.Errorf("gateway rejected transaction: %s", initResp.Message)
	}

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"amount":    int64(amount),
	}).Info("Gateway transaction initialized")

	return &models.GatewayInitResult{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

// Verify asks Paystack for the authoritative result of a transaction. The
// client-side redirect is never trusted; this call is.
func (s *PaystackService) Verify(reference string) (*models.GatewayVerification, error) {
	httpReq, err := http.NewRequest(http.MethodGet, s.config.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &models.GatewayUnreachableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.GatewayUnreachableError{Err: err}
	}

	if resp.StatusCode >= 500 {
		return nil, &models.GatewayUnreachableError{
			Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var verifyResp paystackVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, &models.GatewayUnreachableError{
			Err: fmt.Errorf("unparseable gateway response: %w", err),
		}
	}

	if !verifyResp.Status {
		return nil, &models.VerificationFailedError{
			Reference: reference,
			Reason:    verifyResp.Message,
		}
	}

	return &models.GatewayVerification{
		Reference: verifyResp.Data.Reference,
		Status:    verifyResp.Data.Status,
		Amount:    money.Amount(verifyResp.Data.Amount),
		Currency:  verifyResp.Data.Currency,
		PaidAt:    verifyResp.Data.PaidAt,
		Channel:   verifyResp.Data.Channel,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: HMAC-SHA512
// of the raw body keyed with the webhook secret, hex encoded.
func (s *PaystackService) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(s.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
