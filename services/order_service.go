package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderService converts a submission into an immutable, server-priced order.
// Client-supplied prices are never trusted; every line is repriced from the
// current catalog inside one transaction.
type OrderService struct {
	DB       *gorm.DB
	Notifier notify.Notifier
}

func NewOrderService(db *gorm.DB, notifier notify.Notifier) *OrderService {
	return &OrderService{DB: db, Notifier: notifier}
}

// OrderLineInput is a requested line. Any price the client attached to its
// payload was already discarded by the handler.
type OrderLineInput struct {
	MenuItemID uint
	Quantity   int
	OptionIDs  []uint
	Note       string
}

// PlaceOrder creates the order, its items and their modifier snapshots in a
// single transaction, then notifies the kitchen.
func (s *OrderService) PlaceOrder(tableID uint, lines []OrderLineInput, note, guestName string, sessionID *uint) (*models.Order, error) {
	var order models.Order

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		placed, err := s.placeOrderTx(tx, tableID, lines, note, guestName, sessionID)
		if err != nil {
			return err
		}
		order = *placed
		return nil
	})
	if err != nil {
		return nil, err
	}

	full, err := s.loadOrder(order.ID)
	if err != nil {
		return nil, err
	}
	s.Notifier.OrderCreated(*full)
	return full, nil
}

// SubmitCart places an order from the table's active cart and clears the
// cart, all or nothing.
func (s *OrderService) SubmitCart(tableID uint, note, guestName string, sessionID *uint) (*models.Order, error) {
	var order models.Order

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items.Modifiers").
			Where("table_id = ? AND status = ?", tableID, models.CartStatusActive).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}

		lines := make([]OrderLineInput, 0, len(cart.Items))
		for _, item := range cart.Items {
			optionIDs := make([]uint, 0, len(item.Modifiers))
			for _, mod := range item.Modifiers {
				optionIDs = append(optionIDs, mod.ModifierOptionID)
			}
			lines = append(lines, OrderLineInput{
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
				OptionIDs:  optionIDs,
				Note:       item.Note,
			})
		}

		placed, err := s.placeOrderTx(tx, tableID, lines, note, guestName, sessionID)
		if err != nil {
			return err
		}
		order = *placed

		return clearCart(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	full, err := s.loadOrder(order.ID)
	if err != nil {
		return nil, err
	}
	s.Notifier.OrderCreated(*full)
	return full, nil
}

func (s *OrderService) placeOrderTx(tx *gorm.DB, tableID uint, lines []OrderLineInput, note, guestName string, sessionID *uint) (*models.Order, error) {
	var table models.Table
	if err := tx.First(&table, tableID).Error; err != nil {
		return nil, err
	}
	if table.Status != models.TableStatusActive {
		return nil, ErrTableInactive
	}

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	order := models.Order{
		TableID:       tableID,
		SessionID:     sessionID,
		GuestName:     guestName,
		Note:          note,
		Status:        models.OrderStatusReceived,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	var grandTotal float64
	for _, line := range lines {
		var item models.MenuItem
		if err := tx.First(&item, line.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemUnavailable
			}
			return nil, err
		}
		if !item.IsAvailable {
			return nil, ErrItemUnavailable
		}

		// Re-fetch each modifier by id; one that vanished from the catalog
		// since the guest selected it is skipped, not a hard failure.
		var mods []models.ModifierOption
		for _, optionID := range line.OptionIDs {
			var option models.ModifierOption
			if err := tx.First(&option, optionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			mods = append(mods, option)
		}

		unitPrice := item.Price
		for _, mod := range mods {
			unitPrice += mod.PriceAdjustment
		}
		subtotal := unitPrice * float64(line.Quantity)
		grandTotal += subtotal

		orderItem := models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   line.Quantity,
			Subtotal:   subtotal,
			Note:       line.Note,
			Status:     models.OrderItemStatusPending,
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			return nil, err
		}

		for _, mod := range mods {
			snapshot := models.OrderItemModifier{
				OrderItemID:      orderItem.ID,
				ModifierOptionID: mod.ID,
				Name:             mod.Name,
				Price:            mod.PriceAdjustment,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return nil, err
			}
		}
	}

	order.TotalAmount = grandTotal
	if err := tx.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// AcceptItem marks a pending item accepted.
func (s *OrderService) AcceptItem(itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error; err != nil {
			return err
		}
		var order models.Order
		if err := tx.First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if order.PaymentStatus != models.PaymentStatusUnpaid {
			return ErrOrderSettled
		}
		if item.Status != models.OrderItemStatusPending {
			return fmt.Errorf("item %d is not pending", item.ID)
		}
		item.Status = models.OrderItemStatusAccepted
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RejectItem marks an item rejected and subtracts exactly its subtotal from
// the order total. A compensating delta, not a recompute, so accepted lines
// are never touched. When every item ends up rejected the whole order is.
// Items on a settled order are frozen; their bill is immutable.
func (s *OrderService) RejectItem(itemID uint) (*models.Order, error) {
	var orderID uint

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error; err != nil {
			return err
		}
		if item.Status == models.OrderItemStatusRejected {
			orderID = item.OrderID
			return nil
		}

		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, item.OrderID).Error; err != nil {
			return err
		}
		if order.PaymentStatus != models.PaymentStatusUnpaid {
			return ErrOrderSettled
		}
		orderID = order.ID

		item.Status = models.OrderItemStatusRejected
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		order.TotalAmount -= item.Subtotal
		if order.TotalAmount < 0 {
			order.TotalAmount = 0
		}

		var remaining int64
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND status != ?", order.ID, models.OrderItemStatusRejected).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			order.Status = models.OrderStatusRejected
		}

		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	full, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	s.Notifier.OrderStatusChanged(*full)
	return full, nil
}

var orderTransitions = map[string]string{
	models.OrderStatusReceived:  models.OrderStatusPreparing,
	models.OrderStatusPreparing: models.OrderStatusReady,
	models.OrderStatusReady:     models.OrderStatusCompleted,
}

// UpdateStatus advances an order along received -> preparing -> ready ->
// completed. Anything else is refused.
func (s *OrderService) UpdateStatus(orderID uint, newStatus string) (*models.Order, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			return err
		}

		if orderTransitions[order.Status] != newStatus {
			return fmt.Errorf("cannot move order from %s to %s", order.Status, newStatus)
		}

		order.Status = newStatus
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	full, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d moved to %s", full.ID, full.Status)
	s.Notifier.OrderStatusChanged(*full)
	return full, nil
}

func (s *OrderService) loadOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("OrderItems.Modifiers").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
