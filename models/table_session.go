package models

import "time"

const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// TableSession is one dining episode at a table. At most one session per table
// may be active at a time; the first valid QR scan opens it and later scans of
// the same table reuse it.
type TableSession struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TableID      uint       `gorm:"not null;index" json:"table_id"`
	Table        Table      `gorm:"foreignKey:TableID" json:"-"`
	UserID       *uint      `gorm:"index" json:"user_id,omitempty"`
	SessionToken string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"session_token"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
