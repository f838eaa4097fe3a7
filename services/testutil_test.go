package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB gives every test its own named in-memory SQLite database so
// seeded rows never leak between tests.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Cart{},
		&models.CartItem{},
		&models.CartItemModifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.Bill{},
		&models.BillRequest{},
		&models.PaymentRef{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedTable(t *testing.T, db *gorm.DB, number string) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Capacity: 2, Status: models.TableStatusActive}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return table
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price float64, available bool) models.MenuItem {
	t.Helper()
	category := models.MenuCategory{Name: "Mains"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	item := models.MenuItem{
		CategoryID:  category.ID,
		Name:        name,
		Price:       price,
		IsAvailable: available,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed menu item: %v", err)
	}
	return item
}

func seedModifierOption(t *testing.T, db *gorm.DB, item models.MenuItem, name string, price float64) models.ModifierOption {
	t.Helper()
	group := models.ModifierGroup{MenuItemID: item.ID, Name: "Extras"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("failed to seed modifier group: %v", err)
	}
	option := models.ModifierOption{GroupID: group.ID, Name: name, PriceAdjustment: price}
	if err := db.Create(&option).Error; err != nil {
		t.Fatalf("failed to seed modifier option: %v", err)
	}
	return option
}

// seedUnpaidOrder inserts an order with one accepted item of the given unit
// price and quantity, bypassing the order service.
func seedUnpaidOrder(t *testing.T, db *gorm.DB, tableID uint, unitPrice float64, quantity int) models.Order {
	t.Helper()
	order := models.Order{
		TableID:       tableID,
		Status:        models.OrderStatusReceived,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   unitPrice * float64(quantity),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	item := models.OrderItem{
		OrderID:    order.ID,
		MenuItemID: 1,
		Name:       "Seeded item",
		Price:      unitPrice,
		Quantity:   quantity,
		Subtotal:   unitPrice * float64(quantity),
		Status:     models.OrderItemStatusAccepted,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed order item: %v", err)
	}
	return order
}
