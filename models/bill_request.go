package models

import "time"

const (
	BillRequestStatusPending      = "pending"
	BillRequestStatusAcknowledged = "acknowledged"
	BillRequestStatusCompleted    = "completed"
	BillRequestStatusCancelled    = "cancelled"
)

// BillRequest is the guest-facing "please come collect payment" signal.
// Settlement cancels any still-open requests for the table.
type BillRequest struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TableID   uint       `gorm:"not null;index" json:"table_id"`
	Table     Table      `gorm:"foreignKey:TableID" json:"-"`
	SessionID *uint      `gorm:"index" json:"session_id,omitempty"`
	Note      string     `gorm:"type:text" json:"note"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	HandledBy *uint      `json:"handled_by,omitempty"`
	HandledAt *time.Time `json:"handled_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
