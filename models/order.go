package models

import "time"

// Order status flow: received -> preparing -> ready -> completed.
// rejected is terminal and only reached when every item is rejected.
const (
	OrderStatusReceived  = "received"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusRejected  = "rejected"
)

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Item acceptance flow, separate from the order status.
const (
	OrderItemStatusPending  = "pending"
	OrderItemStatusAccepted = "accepted"
	OrderItemStatusRejected = "rejected"
)

// Order is immutable after creation except for status transitions and the
// settlement fields (payment_status, bill_id). All price fields are snapshots
// taken at order time.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TableID       uint        `gorm:"not null;index" json:"table_id"`
	Table         Table       `gorm:"foreignKey:TableID" json:"-"`
	SessionID     *uint       `gorm:"index" json:"session_id,omitempty"`
	GuestName     string      `gorm:"type:varchar(100)" json:"guest_name"`
	Note          string      `gorm:"type:text" json:"note"`
	Status        string      `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	PaymentStatus string      `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	BillID        *uint       `gorm:"index" json:"bill_id,omitempty"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

// OrderItem captures the catalog name and base price at order time.
// Subtotal = (price + modifier prices) * quantity, fixed at creation.
type OrderItem struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	OrderID    uint                `gorm:"not null;index" json:"order_id"`
	Order      Order               `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint                `gorm:"not null" json:"menu_item_id"`
	Name       string              `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64             `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int                 `gorm:"not null" json:"quantity"`
	Subtotal   float64             `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Note       string              `gorm:"type:text" json:"note"`
	Status     string              `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Modifiers  []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers"`
	CreatedAt  time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"not null" json:"updated_at"`
}

type OrderItemModifier struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	OrderItemID      uint    `gorm:"not null;index" json:"order_item_id"`
	ModifierOptionID uint    `gorm:"not null" json:"modifier_option_id"`
	Name             string  `gorm:"type:varchar(100);not null" json:"name"`
	Price            float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}
