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

func setupBillingRouter(db *gorm.DB, tableID uint) *gin.Engine {
	billing := services.NewBillingService(db, &notify.NopNotifier{})
	billingCtrl := controllers.NewBillingController(db, billing)

	router := gin.Default()
	router.GET("/tables/:table_id/bill/preview", billingCtrl.PreviewBill)
	router.POST("/tables/:table_id/settle", billingCtrl.Settle)
	router.GET("/bills/:bill_id", billingCtrl.GetBillByID)
	router.GET("/bill-requests", billingCtrl.ListBillRequests)
	router.PATCH("/bill-requests/:request_id", billingCtrl.HandleBillRequest)

	guest := router.Group("/t", fakeTableAuth(tableID))
	guest.POST("/bill-requests", billingCtrl.RequestBill)
	return router
}

func seedBillableOrder(t *testing.T, db *gorm.DB, tableID uint, total float64) models.Order {
	t.Helper()
	order := models.Order{
		TableID:       tableID,
		Status:        models.OrderStatusReceived,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   total,
	}
	assert.NoError(t, db.Create(&order).Error)
	item := models.OrderItem{
		OrderID:  order.ID,
		Name:     "Seeded item",
		Price:    total,
		Quantity: 1,
		Subtotal: total,
		Status:   models.OrderItemStatusAccepted,
	}
	assert.NoError(t, db.Create(&item).Error)
	return order
}

func TestPreviewBillEndpoint(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "C1")
	seedBillableOrder(t, db, table.ID, 100.00)

	router := setupBillingRouter(db, table.ID)
	w := perform(router, "GET",
		fmt.Sprintf("/tables/%d/bill/preview?discount_type=percent&discount_value=20", table.ID),
		nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "Bill preview", response["message"])

	data := response["data"].(map[string]interface{})
	assert.EqualValues(t, 100.00, data["subtotal"])
	assert.EqualValues(t, 20.00, data["discount_amount"])
	assert.EqualValues(t, 8.00, data["tax_amount"])
	assert.EqualValues(t, 88.00, data["final_amount"])

	// Previewing leaves the orders untouched.
	var unpaid int64
	db.Model(&models.Order{}).
		Where("table_id = ? AND payment_status = ?", table.ID, models.PaymentStatusUnpaid).
		Count(&unpaid)
	assert.EqualValues(t, 1, unpaid)
}

func TestSettleEndpointExactlyOnce(t *testing.T) {
	t.Setenv("TAX_RATE", "0.10")
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "C2")
	seedBillableOrder(t, db, table.ID, 100.00)

	router := setupBillingRouter(db, table.ID)
	w := perform(router, "POST", fmt.Sprintf("/tables/%d/settle", table.ID),
		map[string]interface{}{"payment_method": "cash"}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "Table settled", response["message"])
	data := response["data"].(map[string]interface{})
	assert.EqualValues(t, 110.00, data["total_amount"])
	billID := int(data["id"].(float64))

	w = perform(router, "GET", fmt.Sprintf("/bills/%d", billID), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Settling again must conflict, not double charge.
	w = perform(router, "POST", fmt.Sprintf("/tables/%d/settle", table.ID),
		map[string]interface{}{"payment_method": "cash"}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSettleRequiresPaymentMethod(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "C3")
	seedBillableOrder(t, db, table.ID, 50.00)

	router := setupBillingRouter(db, table.ID)
	w := perform(router, "POST", fmt.Sprintf("/tables/%d/settle", table.ID),
		map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	table := seedActiveTable(t, db, "C4")

	router := setupBillingRouter(db, table.ID)

	w := perform(router, "POST", "/t/bill-requests",
		map[string]string{"note": "we are in a hurry"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	requestID := int(decodeResponse(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = perform(router, "GET", "/bill-requests", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	pending := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, pending, 1)

	w = perform(router, "PATCH", fmt.Sprintf("/bill-requests/%d", requestID),
		map[string]string{"status": models.BillRequestStatusAcknowledged}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, "PATCH", fmt.Sprintf("/bill-requests/%d", requestID),
		map[string]string{"status": "escalated"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
