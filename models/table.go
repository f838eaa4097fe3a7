package models

import "time"

const (
	TableStatusActive   = "active"
	TableStatusInactive = "inactive"
)

// Table is a physical table. The current QR token is stored denormalized here:
// rotation overwrites it, which implicitly invalidates every older token.
// The previous token and rotation timestamp are kept for replay monitoring.
type Table struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TableNumber      string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"table_number"`
	Capacity         int        `gorm:"not null;default:2" json:"capacity"`
	Location         string     `gorm:"type:varchar(100)" json:"location"`
	Status           string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CurrentQRToken   string     `gorm:"type:text" json:"-"`
	PreviousQRToken  string     `gorm:"type:text" json:"-"`
	QRRotatedAt      *time.Time `json:"qr_rotated_at,omitempty"`
	CurrentSessionID *uint      `gorm:"index" json:"current_session_id,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}
