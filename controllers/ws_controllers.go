package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/tableside-app/notify"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *notify.Hub
}

func NewWSController(hub *notify.Hub) *WSController {
	return &WSController{Hub: hub}
}

// StaffSocket -> kitchen or front-of-house stream for authenticated staff.
// Chefs get the kitchen channel, everyone else front of house.
func (wc *WSController) StaffSocket(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	channel := notify.ChannelFrontOfHouse
	if role == "chef" {
		channel = notify.ChannelKitchen
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.RegisterClient(ws, channel, 0)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.UnregisterClient(ws)
}

// TableSocket -> per-table stream for guests; only their table's events.
func (wc *WSController) TableSocket(c *gin.Context) {
	tableID, ok := contextTableID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.RegisterClient(ws, notify.ChannelTable, tableID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.UnregisterClient(ws)
}
