package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// StripeConfig holds Stripe API configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// StripeService talks to the Stripe payment-intents API. Requests are plain
// form-encoded HTTP calls, responses JSON.
type StripeService struct {
	config     *StripeConfig
	httpClient *http.Client
	baseURL    string
}

var (
	stripeService *StripeService
	stripeOnce    sync.Once
)

// GetStripeService returns singleton instance of StripeService
func GetStripeService() *StripeService {
	stripeOnce.Do(func() {
		secretKey := os.Getenv("STRIPE_SECRET_KEY")
		webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		currency := os.Getenv("STRIPE_CURRENCY")
		if currency == "" {
			currency = "usd"
		}

		stripeService = NewStripeService(&StripeConfig{
			SecretKey:     secretKey,
			WebhookSecret: webhookSecret,
			Currency:      currency,
		}, "https://api.stripe.com")
	})
	return stripeService
}

// NewStripeService builds a client against the given base URL. Tests point
// it at a local httptest server.
func NewStripeService(config *StripeConfig, baseURL string) *StripeService {
	return &StripeService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// ValidateConfig validates Stripe configuration
func (ss *StripeService) ValidateConfig() error {
	if ss.config.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	if ss.config.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	return nil
}

// PaymentIntent is the provider-side intent. Metadata carries the settlement
// snapshot (order ids and every monetary component as strings).
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// CreatePaymentIntent creates an intent for the given amount in the smallest
// currency unit.
func (ss *StripeService) CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if currency == "" {
		currency = ss.config.Currency
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	return ss.doIntentRequest(http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
}

// RetrievePaymentIntent fetches the current state of an intent.
func (ss *StripeService) RetrievePaymentIntent(intentID string) (*PaymentIntent, error) {
	return ss.doIntentRequest(http.MethodGet, "/v1/payment_intents/"+intentID, nil)
}

func (ss *StripeService) doIntentRequest(method, path string, body io.Reader) (*PaymentIntent, error) {
	req, err := http.NewRequest(method, ss.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+ss.config.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := ss.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Stripe API error: %s", string(respBody))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	return &intent, nil
}

// ValidateSignature checks a Stripe-Signature webhook header against the raw
// payload. The header carries a timestamp and one or more v1 signatures; the
// signed payload is "<timestamp>.<body>" under HMAC-SHA256.
func (ss *StripeService) ValidateSignature(payload []byte, sigHeader string) bool {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(ss.config.WebhookSecret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}

// IntentSucceeded reports whether the provider considers the intent paid.
func IntentSucceeded(status string) bool {
	return status == "succeeded"
}
