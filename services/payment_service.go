package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

// PaymentProvider is the external payment service the reconciler talks to.
type PaymentProvider interface {
	CreatePaymentIntent(amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrievePaymentIntent(intentID string) (*PaymentIntent, error)
}

// PaymentService bridges the settlement engine to the payment provider.
// The intent's metadata snapshot is what Confirm trusts, so create and
// confirm never need to agree about order state that may have changed in
// between.
type PaymentService struct {
	DB       *gorm.DB
	Billing  *BillingService
	Provider PaymentProvider
	Notifier notify.Notifier
}

func NewPaymentService(db *gorm.DB, billing *BillingService, provider PaymentProvider, notifier notify.Notifier) *PaymentService {
	return &PaymentService{DB: db, Billing: billing, Provider: provider, Notifier: notifier}
}

// IntentResult is what the client needs to drive the provider's checkout.
type IntentResult struct {
	IntentID     string       `json:"intent_id"`
	ClientSecret string       `json:"client_secret"`
	Amount       int64        `json:"amount"`
	Preview      *BillPreview `json:"preview"`
}

// CreateIntent previews the bill and opens a payment intent for it. Every
// computed monetary component goes into the intent metadata as strings.
func (s *PaymentService) CreateIntent(tableID uint, discountType string, discountValue float64) (*IntentResult, error) {
	preview, err := s.Billing.PreviewBill(tableID, discountType, discountValue)
	if err != nil {
		return nil, err
	}
	if preview.FinalAmount <= 0 {
		return nil, ErrNothingToCharge
	}

	orderIDs := make([]string, len(preview.OrderIDs))
	for i, id := range preview.OrderIDs {
		orderIDs[i] = strconv.FormatUint(uint64(id), 10)
	}

	metadata := map[string]string{
		"table_id":        strconv.FormatUint(uint64(tableID), 10),
		"order_ids":       strings.Join(orderIDs, ","),
		"subtotal":        formatAmount(preview.Subtotal),
		"discount_type":   preview.DiscountType,
		"discount_value":  formatAmount(preview.DiscountValue),
		"discount_amount": formatAmount(preview.DiscountAmount),
		"tax_amount":      formatAmount(preview.TaxAmount),
		"final_amount":    formatAmount(preview.FinalAmount),
	}

	amount := int64(math.Round(preview.FinalAmount * 100))
	intent, err := s.Provider.CreatePaymentIntent(amount, "", metadata)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Payment intent %s created for table %d, amount %d", intent.ID, tableID, amount)
	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Preview:      preview,
	}, nil
}

// Confirm settles the table from a succeeded intent. The bill amounts come
// from the intent metadata, not a fresh preview. Confirming the same intent
// twice returns the bill the first call produced; an intent whose orders were
// already settled another way is refused with ErrNoUnpaidOrders.
func (s *PaymentService) Confirm(intentID string, userID *uint) (*models.Bill, error) {
	if bill, ok := s.existingBill(s.DB, intentID); ok {
		return bill, nil
	}

	intent, err := s.Provider.RetrievePaymentIntent(intentID)
	if err != nil {
		return nil, err
	}
	if !IntentSucceeded(intent.Status) {
		return nil, ErrPaymentNotSucceeded
	}

	preview, err := previewFromMetadata(intent.Metadata)
	if err != nil {
		return nil, err
	}

	var bill models.Bill
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-check under the transaction; a concurrent confirm may have won.
		if existing, ok := s.existingBill(tx, intentID); ok {
			bill = *existing
			return nil
		}

		// A cash settlement since the intent was created leaves no
		// PaymentRef behind, so re-verify that every order the intent
		// snapshotted is still outstanding before billing it again.
		var outstanding int64
		if err := tx.Model(&models.Order{}).
			Where("id IN ? AND payment_status = ?", preview.OrderIDs, models.PaymentStatusUnpaid).
			Count(&outstanding).Error; err != nil {
			return err
		}
		if outstanding != int64(len(preview.OrderIDs)) {
			return ErrNoUnpaidOrders
		}

		committed, err := s.Billing.settleTx(tx, preview, userID, models.PaymentMethodCard)
		if err != nil {
			return err
		}
		bill = *committed

		ref := models.PaymentRef{IntentID: intentID, BillID: bill.ID}
		return tx.Create(&ref).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Intent %s confirmed, bill %d for table %d", intentID, bill.ID, bill.TableID)
	s.Notifier.TableSettled(bill.TableID, bill)
	return &bill, nil
}

// HandleWebhook observes provider-pushed events. Settlement stays client
// driven through Confirm; the webhook only logs and fans the event out.
func (s *PaymentService) HandleWebhook(eventType, intentID string) {
	switch eventType {
	case "payment_intent.succeeded":
		utils.InfoLogger.Printf("Webhook: intent %s succeeded", intentID)
	case "payment_intent.payment_failed":
		utils.ErrorLogger.Printf("Webhook: intent %s failed", intentID)
	default:
		utils.InfoLogger.Printf("Webhook: unhandled event %s for intent %s", eventType, intentID)
	}
	s.Notifier.PaymentEvent(eventType, intentID)
}

func (s *PaymentService) existingBill(tx *gorm.DB, intentID string) (*models.Bill, bool) {
	var ref models.PaymentRef
	if err := tx.Where("intent_id = ?", intentID).First(&ref).Error; err != nil {
		return nil, false
	}
	var bill models.Bill
	if err := tx.First(&bill, ref.BillID).Error; err != nil {
		return nil, false
	}
	return &bill, true
}

func previewFromMetadata(metadata map[string]string) (*BillPreview, error) {
	tableID, err := strconv.ParseUint(metadata["table_id"], 10, 64)
	if err != nil {
		return nil, errors.New("intent metadata missing table_id")
	}

	var orderIDs []uint
	for _, raw := range strings.Split(metadata["order_ids"], ",") {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.New("intent metadata has malformed order_ids")
		}
		orderIDs = append(orderIDs, uint(id))
	}
	if len(orderIDs) == 0 {
		return nil, errors.New("intent metadata missing order_ids")
	}

	preview := &BillPreview{
		TableID:        uint(tableID),
		OrderIDs:       orderIDs,
		DiscountType:   metadata["discount_type"],
		Subtotal:       parseAmount(metadata["subtotal"]),
		DiscountValue:  parseAmount(metadata["discount_value"]),
		DiscountAmount: parseAmount(metadata["discount_amount"]),
		TaxAmount:      parseAmount(metadata["tax_amount"]),
		FinalAmount:    parseAmount(metadata["final_amount"]),
	}
	return preview, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseAmount(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}
