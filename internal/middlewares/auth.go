package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Accounts/middleware/jwt"
)

const (
	ContextUserID   = "user_id"
	ContextUserName = "username"
	ContextIsBot    = "bot"
)

// AccountChecker reports whether an account still exists. Bot tokens never
// expire, so they are only as valid as the bot they name.
type AccountChecker func(ctx context.Context, id uint64) (bool, error)

// AuthMiddleware JWT 认证中间件
func AuthMiddleware(tokens *jwt.TokenManager, exists AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 {
			switch parts[0] {
			case "Bearer", "Bot":
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if claims.Bot && exists != nil {
			ok, err := exists(c.Request.Context(), userID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserName, claims.UserName)
		c.Set(ContextIsBot, claims.Bot)
		c.Next()
	}
}

// RequireHuman rejects bot credentials; bots cannot manage other bots.
func RequireHuman() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ContextIsBot) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "bots cannot use this endpoint"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated account id set by AuthMiddleware.
func UserID(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserID)
}
