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

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB, sessions *services.SessionService) *SessionController {
	return &SessionController{DB: db, Sessions: sessions}
}

// Scan -> a guest scanned the table QR. The token middleware already resolved
// the table; open a session or join the running one.
func (sc *SessionController) Scan(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
		return
	}

	var table models.Table
	if err := sc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	session, err := sc.Sessions.OpenOrReuse(tableID, contextUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %s scanned, session %d", table.TableNumber, session.ID)
	utils.RespondJSON(c, http.StatusOK, "Welcome", gin.H{
		"table":   table,
		"session": session,
	})
}

// GetSession -> returns the session attached by the session middleware.
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionInterface, exists := c.Get("session")
	if !exists {
		utils.RespondError(c, http.StatusNotFound, services.ErrSessionNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", sessionInterface)
}

// BindUser -> a guest authenticated mid-meal; attach them to the session.
func (sc *SessionController) BindUser(c *gin.Context) {
	sessionIDStr := c.Param("session_id")
	sessionID, err := strconv.Atoi(sessionIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID := contextUserID(c)
	if userID == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no authenticated user to bind"))
		return
	}

	session, err := sc.Sessions.BindUser(uint(sessionID), *userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session bound to user", session)
}

// EndSession -> staff closes a session without settlement (walk-out, staff
// correction). Idempotent.
func (sc *SessionController) EndSession(c *gin.Context) {
	sessionIDStr := c.Param("session_id")
	sessionID, err := strconv.Atoi(sessionIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := sc.Sessions.End(uint(sessionID)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session ended", gin.H{"session_id": sessionID})
}

// GetActiveSessions -> staff overview of open sessions.
func (sc *SessionController) GetActiveSessions(c *gin.Context) {
	var sessions []models.TableSession
	if err := sc.DB.Where("status = ?", models.SessionStatusActive).
		Find(&sessions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active sessions", sessions)
}
