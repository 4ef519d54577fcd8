package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"macrolog/utils"
)

// ProfileIDKey holds the authenticated profile's uuid.UUID in the gin context.
const ProfileIDKey = "profileID"

func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		// browsers cannot set headers on websocket upgrades
		if tokenString == "" || tokenString == authHeader {
			tokenString = c.Query("access_token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required", "code": "unauthorized"})
			return
		}

		sub, err := utils.ParseJWT(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "unauthorized"})
			return
		}
		id, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject", "code": "unauthorized"})
			return
		}

		c.Set(ProfileIDKey, id)
		c.Next()
	}
}
