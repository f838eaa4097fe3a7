package models

import "time"

// PaymentRef maps a provider payment-intent id to the bill it produced.
// A second confirm for the same intent finds the row and returns the
// existing bill instead of settling the table twice.
type PaymentRef struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IntentID  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"intent_id"`
	BillID    uint      `gorm:"not null;index" json:"bill_id"`
	Bill      Bill      `gorm:"foreignKey:BillID" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
