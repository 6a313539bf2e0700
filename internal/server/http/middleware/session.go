package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/eventmart/internal/server/http/dto"
)

const (
	// CustomerIDContextKey is a gin context key for the signed-in customer.
	CustomerIDContextKey = "customerID"
	// SessionExpiredCode is the error code returned when no session is active.
	SessionExpiredCode = "session_expired"
)

// SessionSource reports the identity of the active session.
type SessionSource interface {
	CustomerID() (string, bool)
}

// SessionRequired rejects requests while no session is active.
func SessionRequired(sessions SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := sessions.CustomerID()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: SessionExpiredCode})
			return
		}

		c.Set(CustomerIDContextKey, customerID)
		c.Next()
	}
}
