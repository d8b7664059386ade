package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Burrow_Hole/internal/pkg"
)

const ContextOpsSubjectKey = "ops_subject"

// AdminAuth 校验运维令牌，secret 为空时所有请求都会被拒绝
func AdminAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := pkg.ParseOpsToken(secret, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextOpsSubjectKey, claims.Subject)
		c.Next()
	}
}
