package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Webhook gates system-triggered endpoints (payment confirmation) behind a
// shared token carried by the external flow, instead of a user bearer.
func Webhook(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Webhook-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid webhook token"})
			return
		}

		c.Next()
	}
}
