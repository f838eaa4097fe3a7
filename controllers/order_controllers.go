package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

func contextSessionID(c *gin.Context) *uint {
	if v, exists := c.Get("session_id"); exists {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}

// PlaceOrder -> direct submission of items, repriced server-side. Any price
// in the payload is ignored.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	type ItemReq struct {
		MenuItemID uint   `json:"menu_item_id"`
		Quantity   int    `json:"quantity"`
		OptionIDs  []uint `json:"modifier_option_ids"`
		Note       string `json:"note"`
	}
	var body struct {
		Items     []ItemReq `json:"items" binding:"required"`
		Note      string    `json:"note"`
		GuestName string    `json:"guest_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	lines := make([]services.OrderLineInput, 0, len(body.Items))
	for _, item := range body.Items {
		lines = append(lines, services.OrderLineInput{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			OptionIDs:  item.OptionIDs,
			Note:       item.Note,
		})
	}

	order, err := oc.Orders.PlaceOrder(tableID, lines, body.Note, body.GuestName, contextSessionID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d placed for table %d, total %.2f", order.ID, tableID, order.TotalAmount)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// SubmitCart -> turn the table's cart into an order and clear the cart
func (oc *OrderController) SubmitCart(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var body struct {
		Note      string `json:"note"`
		GuestName string `json:"guest_name"`
	}
	// Body is optional for cart submission.
	_ = c.ShouldBindJSON(&body)

	order, err := oc.Orders.SubmitCart(tableID, body.Note, body.GuestName, contextSessionID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail of one order with items
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems.Modifiers").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetTableOrders -> orders of the scanned table, newest first
func (oc *OrderController) GetTableOrders(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems.Modifiers").
		Where("table_id = ?", tableID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetAllOrders -> staff view of all orders
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus -> advance along received -> preparing -> ready -> completed
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderIDStr := c.Param("order_id")
	orderID, err := strconv.Atoi(orderIDStr)
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

	order, err := oc.Orders.UpdateStatus(uint(orderID), body.Status)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// AcceptItem -> kitchen accepts one item
func (oc *OrderController) AcceptItem(c *gin.Context) {
	itemIDStr := c.Param("item_id")
	itemID, err := strconv.Atoi(itemIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := oc.Orders.AcceptItem(uint(itemID))
	if err != nil {
		if errors.Is(err, services.ErrOrderSettled) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item accepted", item)
}

// RejectItem -> kitchen rejects one item; the order total drops by exactly
// that item's subtotal
func (oc *OrderController) RejectItem(c *gin.Context) {
	itemIDStr := c.Param("item_id")
	itemID, err := strconv.Atoi(itemIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.RejectItem(uint(itemID))
	if err != nil {
		if errors.Is(err, services.ErrOrderSettled) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item rejected", order)
}

// GetKitchenDisplay -> orders the kitchen still has to act on
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.Preload("OrderItems.Modifiers").
		Where("status IN ?", []string{
			models.OrderStatusReceived,
			models.OrderStatusPreparing,
			models.OrderStatusReady,
		}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display orders", orders)
}
