package services

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/yeremiapane/tableside-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService holds the unsubmitted basket for a table. Several phones can
// point at the same table, so every mutation is a locked read-modify-write:
// two concurrent "add one" calls must both land in the final quantity.
type CartService struct {
	DB *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{DB: db}
}

// ModifierKey builds the canonical line identity for a modifier selection.
// Order independent: sorted option ids joined with dashes. Stored on the
// line so merges never re-normalize on read.
func ModifierKey(optionIDs []uint) string {
	if len(optionIDs) == 0 {
		return ""
	}
	ids := make([]uint, len(optionIDs))
	copy(ids, optionIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, "-")
}

// GetOrCreateActiveCart lazily creates the table's cart row. First touch is
// serialized on the table row so two phones racing the create cannot each
// open a cart.
func (s *CartService) GetOrCreateActiveCart(tableID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, tableID).Error; err != nil {
			return err
		}

		err := tx.Where("table_id = ? AND status = ?", tableID, models.CartStatusActive).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{TableID: tableID, Status: models.CartStatusActive}
			return tx.Create(&cart).Error
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.Preload("Items.Modifiers").First(&cart, cart.ID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertLine adds a selection to the cart. If a line with the same
// (menu_item_id, modifier set) identity exists, its quantity is summed with
// the new one; a non-positive quantity on such an update deletes the line.
func (s *CartService) UpsertLine(cartID, menuItemID uint, quantity int, optionIDs []uint, note string) (*models.CartItem, error) {
	key := ModifierKey(optionIDs)
	var line models.CartItem

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", cartID, models.CartStatusActive).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartNotFound
			}
			return err
		}

		var existing models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND menu_item_id = ? AND modifier_key = ?", cartID, menuItemID, key).
			First(&existing).Error

		if err == nil {
			if quantity <= 0 {
				line = existing
				return deleteLine(tx, &existing)
			}
			existing.Quantity += quantity
			if note != "" {
				existing.Note = note
			}
			line = existing
			return tx.Save(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if quantity <= 0 {
			return ErrInvalidQuantity
		}

		line = models.CartItem{
			CartID:      cartID,
			MenuItemID:  menuItemID,
			ModifierKey: key,
			Quantity:    quantity,
			Note:        note,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		for _, optionID := range optionIDs {
			mod := models.CartItemModifier{CartItemID: line.ID, ModifierOptionID: optionID}
			if err := tx.Create(&mod).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &line, nil
}

// SetLineQuantity overwrites a line's quantity; zero or less deletes the line.
func (s *CartService) SetLineQuantity(lineID uint, quantity int) (*models.CartItem, error) {
	var line models.CartItem

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&line, lineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		if quantity <= 0 {
			return deleteLine(tx, &line)
		}

		line.Quantity = quantity
		return tx.Save(&line).Error
	})
	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (s *CartService) RemoveLine(lineID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var line models.CartItem
		if err := tx.First(&line, lineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}
		return deleteLine(tx, &line)
	})
}

// Clear removes every line from the cart, keeping the cart row itself.
func (s *CartService) Clear(cartID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return clearCart(tx, cartID)
	})
}

func clearCart(tx *gorm.DB, cartID uint) error {
	var lineIDs []uint
	if err := tx.Model(&models.CartItem{}).Where("cart_id = ?", cartID).
		Pluck("id", &lineIDs).Error; err != nil {
		return err
	}
	if len(lineIDs) == 0 {
		return nil
	}
	if err := tx.Where("cart_item_id IN ?", lineIDs).
		Delete(&models.CartItemModifier{}).Error; err != nil {
		return err
	}
	return tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func deleteLine(tx *gorm.DB, line *models.CartItem) error {
	if err := tx.Where("cart_item_id = ?", line.ID).
		Delete(&models.CartItemModifier{}).Error; err != nil {
		return err
	}
	return tx.Delete(line).Error
}
