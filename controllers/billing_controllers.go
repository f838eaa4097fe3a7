package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

type BillingController struct {
	DB      *gorm.DB
	Billing *services.BillingService
}

func NewBillingController(db *gorm.DB, billing *services.BillingService) *BillingController {
	return &BillingController{DB: db, Billing: billing}
}

type discountReq struct {
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
}

// PreviewBill -> side-effect-free bill computation for a table
func (bc *BillingController) PreviewBill(c *gin.Context) {
	tableIDStr := c.Param("table_id")
	tableID, err := strconv.Atoi(tableIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	discountType := c.Query("discount_type")
	discountValue, _ := strconv.ParseFloat(c.Query("discount_value"), 64)

	preview, err := bc.Billing.PreviewBill(uint(tableID), discountType, discountValue)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill preview", preview)
}

// Settle -> staff commits a cash/card-at-counter settlement
func (bc *BillingController) Settle(c *gin.Context) {
	tableIDStr := c.Param("table_id")
	tableID, err := strconv.Atoi(tableIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		discountReq
		PaymentMethod string `json:"payment_method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	bill, err := bc.Billing.Settle(uint(tableID), contextUserID(c), body.PaymentMethod,
		body.DiscountType, body.DiscountValue)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Table settled", bill)
}

// GetBillByID -> one bill with its orders
func (bc *BillingController) GetBillByID(c *gin.Context) {
	billIDStr := c.Param("bill_id")
	billID, err := strconv.Atoi(billIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var bill models.Bill
	if err := bc.DB.First(&bill, billID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var orders []models.Order
	bc.DB.Preload("OrderItems").Where("bill_id = ?", bill.ID).Find(&orders)

	utils.RespondJSON(c, http.StatusOK, "Bill detail", gin.H{
		"bill":   bill,
		"orders": orders,
	})
}

// RequestBill -> guest calls for the bill
func (bc *BillingController) RequestBill(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	req, err := bc.Billing.RequestBill(tableID, contextSessionID(c), body.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Bill requested", req)
}

// ListBillRequests -> staff view of open requests
func (bc *BillingController) ListBillRequests(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = models.BillRequestStatusPending
	}

	var requests []models.BillRequest
	if err := bc.DB.Where("status = ?", status).
		Order("created_at asc").
		Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill requests", requests)
}

// HandleBillRequest -> staff acknowledges/completes/cancels a request
func (bc *BillingController) HandleBillRequest(c *gin.Context) {
	requestIDStr := c.Param("request_id")
	requestID, err := strconv.Atoi(requestIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch body.Status {
	case models.BillRequestStatusAcknowledged,
		models.BillRequestStatusCompleted,
		models.BillRequestStatusCancelled:
	default:
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"invalid bill request status"})
		return
	}

	req, err := bc.Billing.HandleBillRequest(uint(requestID), body.Status, contextUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill request updated", req)
}
