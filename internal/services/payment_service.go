package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ErrPaymentNotConfigured reports a checkout attempted without a payment
// provider configured. Callers fall back to a pending, unpaid purchase.
var ErrPaymentNotConfigured = errors.New("payment provider is not configured")

// PaymentService creates payment intents against an external provider.
type PaymentService struct {
	baseURL   string
	secretKey string
	client    *http.Client
	log       zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(baseURL, secretKey string, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log,
	}
}

type paymentIntentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type paymentIntentResponse struct {
	ID string `json:"id"`
}

// CreateIntent registers a payment intent for the given amount and returns
// the provider's intent id. Amounts are sent in minor units.
func (s *PaymentService) CreateIntent(amount float64, currency, description string) (string, error) {
	if s.baseURL == "" || s.secretKey == "" {
		return "", ErrPaymentNotConfigured
	}

	payload, err := json.Marshal(paymentIntentRequest{
		Amount:      int64(math.Round(amount * 100)),
		Currency:    strings.ToLower(currency),
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("payment intent marshal: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/payment_intents", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("payment intent request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment intent request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment intent failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed paymentIntentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("payment intent unmarshal: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("payment intent: empty id")
	}

	s.log.Debug().Str("intentId", parsed.ID).Msg("payment intent created")
	return parsed.ID, nil
}
