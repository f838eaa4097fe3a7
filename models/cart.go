package models

import "time"

const CartStatusActive = "active"

// Cart is the unsubmitted basket for a table. It is created lazily on the
// first line add and replaced once its contents are submitted as an order.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TableID   uint       `gorm:"not null;index" json:"table_id"`
	Table     Table      `gorm:"foreignKey:TableID" json:"-"`
	UserID    *uint      `json:"user_id,omitempty"`
	Status    string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

// CartItem is one merged line. ModifierKey is the canonical order-independent
// identity of the selected modifier set (sorted option ids); two lines with the
// same (menu_item_id, modifier_key) must never coexist in one cart.
type CartItem struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	CartID      uint               `gorm:"not null;index:idx_cart_line_identity,unique" json:"cart_id"`
	Cart        Cart               `gorm:"foreignKey:CartID" json:"-"`
	MenuItemID  uint               `gorm:"not null;index:idx_cart_line_identity,unique" json:"menu_item_id"`
	ModifierKey string             `gorm:"type:varchar(255);not null;default:'';index:idx_cart_line_identity,unique" json:"modifier_key"`
	Quantity    int                `gorm:"not null" json:"quantity"`
	Note        string             `gorm:"type:text" json:"note"`
	Modifiers   []CartItemModifier `gorm:"foreignKey:CartItemID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"modifiers"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

type CartItemModifier struct {
	ID               uint `gorm:"primaryKey" json:"id"`
	CartItemID       uint `gorm:"not null;index" json:"cart_item_id"`
	ModifierOptionID uint `gorm:"not null" json:"modifier_option_id"`
}
