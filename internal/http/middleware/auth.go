package middleware

import (
	"net/http"
	"strings"

	"asobibox/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminJWT guards the read-only admin API with a bearer token.
func AdminJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		sub, err := service.ParseAdminToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_subject", sub)
		c.Next()
	}
}
