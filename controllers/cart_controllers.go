package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

// CartController serves the table-scoped basket. Every route sits behind the
// table-token middleware, so the table id always comes from the validated
// QR credential, never from the request body.
type CartController struct {
	DB    *gorm.DB
	Carts *services.CartService
}

func NewCartController(db *gorm.DB, carts *services.CartService) *CartController {
	return &CartController{DB: db, Carts: carts}
}

// GetCart -> current merged line items for the table
func (cc *CartController) GetCart(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	cart, err := cc.Carts.GetOrCreateActiveCart(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart detail", cart)
}

// AddLine -> add a selection; same item+modifier set merges into one line
func (cc *CartController) AddLine(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var req struct {
		MenuItemID uint   `json:"menu_item_id" binding:"required"`
		Quantity   int    `json:"quantity" binding:"required"`
		OptionIDs  []uint `json:"modifier_option_ids"`
		Note       string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cart, err := cc.Carts.GetOrCreateActiveCart(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	line, err := cc.Carts.UpsertLine(cart.ID, req.MenuItemID, req.Quantity, req.OptionIDs, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart updated", line)
}

// SetLineQuantity -> overwrite quantity; zero or negative deletes the line
func (cc *CartController) SetLineQuantity(c *gin.Context) {
	lineIDStr := c.Param("line_id")
	lineID, err := strconv.Atoi(lineIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	line, err := cc.Carts.SetLineQuantity(uint(lineID), req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Quantity <= 0 {
		utils.RespondJSON(c, http.StatusOK, "Line removed", gin.H{"line_id": lineID})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Quantity updated", line)
}

// RemoveLine -> drop one line
func (cc *CartController) RemoveLine(c *gin.Context) {
	lineIDStr := c.Param("line_id")
	lineID, err := strconv.Atoi(lineIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := cc.Carts.RemoveLine(uint(lineID)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Line removed", gin.H{"line_id": lineID})
}

// ClearCart -> empty the table's cart
func (cc *CartController) ClearCart(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	cart, err := cc.Carts.GetOrCreateActiveCart(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := cc.Carts.Clear(cart.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cart cleared", gin.H{"cart_id": cart.ID})
}
