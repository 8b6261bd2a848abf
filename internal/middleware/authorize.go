package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/models"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
			return
		}

		c.Next()
	}
}

// RequireActiveProfile blocks accounts still pending review from endpoints
// that need a fully approved profile, e.g. instructors publishing courses.
func RequireActiveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok || !user.Active() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "profile not approved"})
			return
		}

		c.Next()
	}
}
