package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coursehub/internal/config"
	"coursehub/internal/models"
	"coursehub/internal/repository"
	"coursehub/internal/security"
)

// Auth validates the bearer token and loads the current user. The user row is
// re-read on every request so a suspension or ban applies immediately,
// superseding whatever the token claims.
func Auth(cfg *config.AppConfig, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing token"})
			return
		}

		claims, err := security.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "), cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not found"})
			return
		}

		if user.ProfileStatus == models.AccountStatusSuspended || user.ProfileStatus == models.AccountStatusBanned {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "account is " + string(user.ProfileStatus)})
			return
		}

		c.Set("current_user", user)

		c.Next()
	}
}
