package models

import "time"

const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Bill is created exactly once per settlement act and never mutated after.
// The orders it settles point back at it via orders.bill_id.
type Bill struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableID        uint      `gorm:"not null;index" json:"table_id"`
	Table          Table     `gorm:"foreignKey:TableID" json:"-"`
	Subtotal       float64   `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountType   string    `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue  float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_value"`
	DiscountAmount float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	TaxAmount      float64   `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount    float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod  string    `gorm:"type:varchar(20);not null" json:"payment_method"`
	CreatedBy      *uint     `json:"created_by,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
