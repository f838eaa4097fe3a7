package services

import (
	"time"

	"github.com/yeremiapane/tableside-app/config"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillingService aggregates a table's outstanding orders into one bill and
// commits payment. Settlement is a single transaction; a half-settled bill is
// never observable.
type BillingService struct {
	DB       *gorm.DB
	Notifier notify.Notifier
}

func NewBillingService(db *gorm.DB, notifier notify.Notifier) *BillingService {
	return &BillingService{DB: db, Notifier: notifier}
}

// BillLine is one flattened order item with its true unit price re-derived
// from the stored snapshots.
type BillLine struct {
	OrderID    uint    `json:"order_id"`
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
}

type BillPreview struct {
	TableID        uint       `json:"table_id"`
	OrderIDs       []uint     `json:"order_ids"`
	Lines          []BillLine `json:"lines"`
	Subtotal       float64    `json:"subtotal"`
	DiscountType   string     `json:"discount_type,omitempty"`
	DiscountValue  float64    `json:"discount_value"`
	DiscountAmount float64    `json:"discount_amount"`
	TaxRate        float64    `json:"tax_rate"`
	TaxAmount      float64    `json:"tax_amount"`
	FinalAmount    float64    `json:"final_amount"`
}

// PreviewBill computes the bill without side effects. Unit prices are
// re-derived as base price plus modifier prices even though the order rows
// already store subtotals, to tolerate historical schema drift.
func (s *BillingService) PreviewBill(tableID uint, discountType string, discountValue float64) (*BillPreview, error) {
	return s.previewTx(s.DB, tableID, discountType, discountValue, false)
}

func (s *BillingService) previewTx(tx *gorm.DB, tableID uint, discountType string, discountValue float64, lock bool) (*BillPreview, error) {
	q := tx.Preload("OrderItems.Modifiers").
		Where("table_id = ? AND payment_status = ? AND status != ?",
			tableID, models.PaymentStatusUnpaid, models.OrderStatusRejected)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoUnpaidOrders
	}

	preview := BillPreview{
		TableID:       tableID,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		TaxRate:       config.TaxRate(),
	}

	for _, order := range orders {
		preview.OrderIDs = append(preview.OrderIDs, order.ID)
		for _, item := range order.OrderItems {
			if item.Status == models.OrderItemStatusRejected {
				continue
			}
			unit := item.Price
			for _, mod := range item.Modifiers {
				unit += mod.Price
			}
			lineTotal := unit * float64(item.Quantity)
			preview.Lines = append(preview.Lines, BillLine{
				OrderID:    order.ID,
				MenuItemID: item.MenuItemID,
				Name:       item.Name,
				UnitPrice:  unit,
				Quantity:   item.Quantity,
				LineTotal:  lineTotal,
			})
			preview.Subtotal += lineTotal
		}
	}

	switch discountType {
	case models.DiscountTypePercent:
		preview.DiscountAmount = preview.Subtotal * discountValue / 100
	case models.DiscountTypeFixed:
		preview.DiscountAmount = discountValue
	}
	if preview.DiscountAmount < 0 {
		preview.DiscountAmount = 0
	}
	if preview.DiscountAmount > preview.Subtotal {
		preview.DiscountAmount = preview.Subtotal
	}

	preview.TaxAmount = (preview.Subtotal - preview.DiscountAmount) * preview.TaxRate
	preview.FinalAmount = preview.Subtotal - preview.DiscountAmount + preview.TaxAmount
	return &preview, nil
}

// Settle recomputes the preview (never trusting a client total), writes the
// bill, marks the orders paid, closes the table's sessions and cancels open
// bill requests, all in one transaction. A concurrent second settler finds no
// unpaid orders left and gets ErrNoUnpaidOrders instead of a double charge.
func (s *BillingService) Settle(tableID uint, userID *uint, method, discountType string, discountValue float64) (*models.Bill, error) {
	var bill models.Bill

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		preview, err := s.previewTx(tx, tableID, discountType, discountValue, true)
		if err != nil {
			return err
		}

		committed, err := s.settleTx(tx, preview, userID, method)
		if err != nil {
			return err
		}
		bill = *committed
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d settled, bill %d total %.2f via %s",
		tableID, bill.ID, bill.TotalAmount, bill.PaymentMethod)
	s.Notifier.TableSettled(tableID, bill)
	return &bill, nil
}

// settleTx performs the settlement steps for an already-computed preview.
// Shared by cash settlement and by payment-intent confirmation, which sources
// its amounts from the intent metadata instead of a fresh preview.
func (s *BillingService) settleTx(tx *gorm.DB, preview *BillPreview, userID *uint, method string) (*models.Bill, error) {
	bill := models.Bill{
		TableID:        preview.TableID,
		Subtotal:       preview.Subtotal,
		DiscountType:   preview.DiscountType,
		DiscountValue:  preview.DiscountValue,
		DiscountAmount: preview.DiscountAmount,
		TaxAmount:      preview.TaxAmount,
		TotalAmount:    preview.FinalAmount,
		PaymentMethod:  method,
		CreatedBy:      userID,
	}
	if err := tx.Create(&bill).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&models.Order{}).
		Where("id IN ?", preview.OrderIDs).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.OrderStatusCompleted,
			"bill_id":        bill.ID,
		}).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&models.Table{}).
		Where("id = ?", preview.TableID).
		Update("current_session_id", nil).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	if err := tx.Model(&models.TableSession{}).
		Where("table_id = ? AND status = ?", preview.TableID, models.SessionStatusActive).
		Updates(map[string]interface{}{
			"status":   models.SessionStatusClosed,
			"ended_at": now,
		}).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&models.BillRequest{}).
		Where("table_id = ? AND status IN ?", preview.TableID,
			[]string{models.BillRequestStatusPending, models.BillRequestStatusAcknowledged}).
		Update("status", models.BillRequestStatusCancelled).Error; err != nil {
		return nil, err
	}

	return &bill, nil
}

// RequestBill records a guest's "call for bill" and pings the front of house.
func (s *BillingService) RequestBill(tableID uint, sessionID *uint, note string) (*models.BillRequest, error) {
	req := models.BillRequest{
		TableID:   tableID,
		SessionID: sessionID,
		Note:      note,
		Status:    models.BillRequestStatusPending,
	}
	if err := s.DB.Create(&req).Error; err != nil {
		return nil, err
	}

	s.Notifier.BillRequested(req)
	return &req, nil
}

// HandleBillRequest moves a request to acknowledged, completed or cancelled.
func (s *BillingService) HandleBillRequest(requestID uint, status string, handledBy *uint) (*models.BillRequest, error) {
	var req models.BillRequest
	if err := s.DB.First(&req, requestID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = status
	req.HandledBy = handledBy
	req.HandledAt = &now
	if err := s.DB.Save(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}
