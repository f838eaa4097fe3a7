package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableside-app/services"
	"github.com/yeremiapane/tableside-app/utils"
)

// sessionTableID reads the table id a preceding TableTokenMiddleware set,
// zero when absent.
func sessionTableID(c *gin.Context) uint {
	if v, exists := c.Get("table_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// SessionMiddleware validates the opaque session token and blocks when it is
// missing or invalid. Validation failures are soft inside the service; the
// middleware is where they become a 404.
func SessionMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		session, ok := sessions.Validate(token, sessionTableID(c))
		if !ok {
			utils.RespondError(c, http.StatusNotFound, services.ErrSessionNotFound)
			c.Abort()
			return
		}

		c.Set("session", session)
		c.Set("session_id", session.ID)
		c.Next()
	}
}

// OptionalSessionMiddleware attaches the session when the token checks out
// and degrades gracefully when it does not.
func OptionalSessionMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if session, ok := sessions.Validate(token, sessionTableID(c)); ok {
			c.Set("session", session)
			c.Set("session_id", session.ID)
		}
		c.Next()
	}
}
