package middleware

import (
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityResolver 从会话令牌解析调用方身份
type IdentityResolver interface {
	Parse(token string) (*util.Claims, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func AuthMiddleware(identity IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := identity.Parse(tokenString)
		if err != nil {
			logger.Log.Debug("rejected session token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}
