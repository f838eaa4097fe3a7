package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/tableside-app/controllers"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/services"
)

func setupOrderRouter(db *gorm.DB, tableID uint) *gin.Engine {
	orders := services.NewOrderService(db, &notify.NopNotifier{})
	orderCtrl := controllers.NewOrderController(db, orders)

	router := gin.Default()
	guest := router.Group("/t", fakeTableAuth(tableID))
	guest.POST("/orders", orderCtrl.PlaceOrder)
	guest.GET("/orders", orderCtrl.GetTableOrders)

	router.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	router.POST("/order-items/:item_id/reject", orderCtrl.RejectItem)
	return router
}

// A forged price in the payload changes nothing; the server reprices every
// line from the catalog.
func TestPlaceOrderIgnoresClientPrices(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "B1")
	item := seedMenu(t, db, "Steak", 32.00)

	router := setupOrderRouter(db, table.ID)
	w := perform(router, "POST", "/t/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{
				"menu_item_id": item.ID,
				"quantity":     1,
				"price":        0.01,
				"subtotal":     0.01,
			},
		},
	}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "Order created", response["message"])

	data := response["data"].(map[string]interface{})
	assert.EqualValues(t, 32.00, data["total_amount"])

	orderItems := data["order_items"].([]interface{})
	assert.Len(t, orderItems, 1)
	assert.EqualValues(t, 32.00, orderItems[0].(map[string]interface{})["price"])
}

func TestPlaceOrderUnavailableItem(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "B2")
	item := seedMenu(t, db, "Eighty-six special", 18.00)
	db.Model(&models.MenuItem{}).Where("id = ?", item.ID).Update("is_available", false)

	router := setupOrderRouter(db, table.ID)
	w := perform(router, "POST", "/t/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": item.ID, "quantity": 1},
		},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "B3")

	router := setupOrderRouter(db, table.ID)
	w := perform(router, "POST", "/t/orders", map[string]interface{}{
		"items": []map[string]interface{}{},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatusFlow(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "B4")
	item := seedMenu(t, db, "Pasta", 14.00)

	router := setupOrderRouter(db, table.ID)
	w := perform(router, "POST", "/t/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": item.ID, "quantity": 1},
		},
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeResponse(t, w)["data"].(map[string]interface{})["id"].(float64))

	// Skipping a step is refused.
	w = perform(router, "PATCH", fmt.Sprintf("/orders/%d/status", orderID),
		map[string]string{"status": models.OrderStatusReady}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, status := range []string{
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusCompleted,
	} {
		w = perform(router, "PATCH", fmt.Sprintf("/orders/%d/status", orderID),
			map[string]string{"status": status}, nil)
		assert.Equal(t, http.StatusOK, w.Code, "transition to %s", status)
	}
}

func TestRejectItemAdjustsOrderTotal(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "B5")
	pasta := seedMenu(t, db, "Pasta", 20.00)

	category := models.MenuCategory{Name: "Drinks"}
	db.Create(&category)
	soda := models.MenuItem{CategoryID: category.ID, Name: "Soda", Price: 5.00, IsAvailable: true}
	db.Create(&soda)

	router := setupOrderRouter(db, table.ID)
	w := perform(router, "POST", "/t/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_item_id": pasta.ID, "quantity": 1},
			{"menu_item_id": soda.ID, "quantity": 1},
		},
	}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	orderID := int(decodeResponse(t, w)["data"].(map[string]interface{})["id"].(float64))

	var sodaItem models.OrderItem
	assert.NoError(t, db.Where("order_id = ? AND menu_item_id = ?", orderID, soda.ID).First(&sodaItem).Error)

	w = perform(router, "POST", fmt.Sprintf("/order-items/%d/reject", sodaItem.ID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 20.00, data["total_amount"])
	assert.Equal(t, models.OrderStatusReceived, data["status"])
}
