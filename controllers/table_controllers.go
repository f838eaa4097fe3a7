package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/models"
	"github.com/yeremiapane/tableside-app/notify"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB       *gorm.DB
	QR       *services.QRService
	Notifier notify.Notifier
}

func NewTableController(db *gorm.DB, qr *services.QRService, notifier notify.Notifier) *TableController {
	return &TableController{DB: db, QR: qr, Notifier: notifier}
}

// CreateTable -> adds a table and issues its first QR token
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
		Location    string `json:"location"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Status:      models.TableStatusActive,
	}
	if table.Capacity <= 0 {
		table.Capacity = 2
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	updated, token, png, err := tc.QR.Issue(table.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Notifier.TableUpdated(*updated)

	utils.InfoLogger.Printf("New table created: %s (ID=%d)", updated.TableNumber, updated.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", gin.H{
		"table":    updated,
		"qr_token": token,
		"qr_image": base64.StdEncoding.EncodeToString(png),
	})
}

// GetAllTables -> list all tables
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail of one table
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTableStatus -> activate or deactivate a table
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	tableID := c.Param("table_id")
	var body struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Status != models.TableStatusActive && body.Status != models.TableStatusInactive {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"status must be active or inactive"})
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table.Status = body.Status
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Notifier.TableUpdated(table)

	utils.InfoLogger.Printf("Table %d status changed to %s", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// RegenerateQR -> rotates the table's QR token, invalidating printed codes
func (tc *TableController) RegenerateQR(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	updated, token, png, err := tc.QR.Issue(table.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Notifier.TableUpdated(*updated)

	utils.RespondJSON(c, http.StatusOK, "QR code regenerated", gin.H{
		"table":    updated,
		"qr_token": token,
		"qr_image": base64.StdEncoding.EncodeToString(png),
	})
}
