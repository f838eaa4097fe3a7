package models

import (
	"time"

	"gorm.io/gorm"
)

// Catalog models. Managed by the admin subsystem; this core only reads them,
// always at order time, never cached across requests.

type MenuCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    MenuCategory    `gorm:"foreignKey:CategoryID" json:"-"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	Groups      []ModifierGroup `gorm:"foreignKey:MenuItemID" json:"modifier_groups"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

type ModifierGroup struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	MenuItemID uint             `gorm:"not null;index" json:"menu_item_id"`
	Name       string           `gorm:"type:varchar(100);not null" json:"name"`
	Options    []ModifierOption `gorm:"foreignKey:GroupID" json:"options"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null" json:"updated_at"`
}

type ModifierOption struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	GroupID         uint      `gorm:"not null;index" json:"group_id"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	PriceAdjustment float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"price_adjustment"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
