package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
)

// TableTokenMiddleware validates the scanned QR credential and exposes the
// resolved table to downstream handlers. Both failure modes are 401: a stale
// token is cryptographically fine but no longer the table's stored token.
func TableTokenMiddleware(qr *services.QRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Table-Token")
		if token == "" {
			token = c.Query("table_token")
		}
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, services.ErrTokenInvalid)
			c.Abort()
			return
		}

		table, err := qr.Validate(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set("table_id", table.ID)
		c.Set("table", table)
		c.Next()
	}
}
