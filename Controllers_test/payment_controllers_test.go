package Controllers_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/tableside-app/controllers"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/services"
)

// stripeStub emulates the payment-intents API: create echoes the form back as
// an intent, retrieve returns it with whatever status the test set.
type stripeStub struct {
	mu      sync.Mutex
	intents map[string]map[string]interface{}
	nextID  int
}

func newStripeStub() (*stripeStub, *httptest.Server) {
	stub := &stripeStub{intents: make(map[string]map[string]interface{})}
	server := httptest.NewServer(http.HandlerFunc(stub.handle))
	return stub, server
}

func (s *stripeStub) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost && r.URL.Path == "/v1/payment_intents" {
		r.ParseForm()
		metadata := make(map[string]string)
		for key, values := range r.PostForm {
			if strings.HasPrefix(key, "metadata[") && strings.HasSuffix(key, "]") {
				metadata[key[len("metadata["):len(key)-1]] = values[0]
			}
		}
		amount, _ := strconv.ParseInt(r.PostForm.Get("amount"), 10, 64)

		s.nextID++
		id := fmt.Sprintf("pi_stub_%d", s.nextID)
		intent := map[string]interface{}{
			"id":            id,
			"client_secret": id + "_secret",
			"status":        "requires_payment_method",
			"amount":        amount,
			"currency":      r.PostForm.Get("currency"),
			"metadata":      metadata,
		}
		s.intents[id] = intent
		json.NewEncoder(w).Encode(intent)
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/payment_intents/") {
		id := strings.TrimPrefix(r.URL.Path, "/v1/payment_intents/")
		intent, ok := s.intents[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"message": "No such payment_intent"}}`)
			return
		}
		json.NewEncoder(w).Encode(intent)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (s *stripeStub) succeed(intentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intentID]["status"] = "succeeded"
}

const testWebhookSecret = "whsec_test"

func setupPaymentRouter(db *gorm.DB, tableID uint, serverURL string) *gin.Engine {
	stripe := services.NewStripeService(&services.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Currency:      "usd",
	}, serverURL)

	billing := services.NewBillingService(db, &notify.NopNotifier{})
	payments := services.NewPaymentService(db, billing, stripe, &notify.NopNotifier{})
	paymentCtrl := controllers.NewPaymentController(payments, stripe)

	router := gin.Default()
	guest := router.Group("/t", fakeTableAuth(tableID))
	guest.POST("/payments/intent", paymentCtrl.CreateIntent)
	guest.POST("/payments/intent/:intent_id/confirm", paymentCtrl.ConfirmIntent)

	router.POST("/payments/webhook", paymentCtrl.HandleWebhook)
	return router
}

func TestCreateAndConfirmIntent(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "E1")
	order := seedBillableOrder(t, db, table.ID, 100.00)

	stub, server := newStripeStub()
	defer server.Close()
	router := setupPaymentRouter(db, table.ID, server.URL)

	w := perform(router, "POST", "/t/payments/intent", map[string]interface{}{
		"discount_type":  "percent",
		"discount_value": 20,
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	intentID := data["intent_id"].(string)
	assert.NotEmpty(t, data["client_secret"])
	assert.EqualValues(t, 8800, data["amount"])

	// Confirm before the provider saw a payment.
	w = perform(router, "POST", "/t/payments/intent/"+intentID+"/confirm", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	stub.succeed(intentID)
	w = perform(router, "POST", "/t/payments/intent/"+intentID+"/confirm", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	bill := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 88.00, bill["total_amount"])
	assert.Equal(t, models.PaymentMethodCard, bill["payment_method"])

	var settled models.Order
	assert.NoError(t, db.First(&settled, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, settled.PaymentStatus)

	// A retried confirm returns the same bill.
	w = perform(router, "POST", "/t/payments/intent/"+intentID+"/confirm", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	again := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, bill["id"], again["id"])

	var billCount int64
	db.Model(&models.Bill{}).Count(&billCount)
	assert.EqualValues(t, 1, billCount)
}

func TestConfirmAfterCashSettlement(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "E4")
	seedBillableOrder(t, db, table.ID, 100.00)

	stub, server := newStripeStub()
	defer server.Close()
	router := setupPaymentRouter(db, table.ID, server.URL)

	w := perform(router, "POST", "/t/payments/intent", nil, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	intentID := decodeResponse(t, w)["data"].(map[string]interface{})["intent_id"].(string)

	// Staff takes cash at the counter while the intent is still open.
	billing := services.NewBillingService(db, &notify.NopNotifier{})
	_, err := billing.Settle(table.ID, nil, models.PaymentMethodCash, "", 0)
	assert.NoError(t, err)

	stub.succeed(intentID)
	w = perform(router, "POST", "/t/payments/intent/"+intentID+"/confirm", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var billCount int64
	db.Model(&models.Bill{}).Count(&billCount)
	assert.EqualValues(t, 1, billCount)
}

func TestCreateIntentNoOutstandingOrders(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "E2")

	_, server := newStripeStub()
	defer server.Close()
	router := setupPaymentRouter(db, table.ID, server.URL)

	w := perform(router, "POST", "/t/payments/intent", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func signTestWebhook(timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookSignatureEnforced(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "E3")

	_, server := newStripeStub()
	defer server.Close()
	router := setupPaymentRouter(db, table.ID, server.URL)

	payload := []byte(`{"type": "payment_intent.succeeded", "data": {"object": {"id": "pi_hook_1"}}}`)

	req, _ := http.NewRequest("POST", "/payments/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1=deadbeef")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest("POST", "/payments/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", "t=1700000000,v1="+signTestWebhook("1700000000", payload))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Webhook received", decodeResponse(t, w)["message"])

	// Webhooks never settle on their own.
	var billCount int64
	db.Model(&models.Bill{}).Count(&billCount)
	assert.EqualValues(t, 0, billCount)
}
