package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "缺少有效的认证信息", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "登录已过期", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "无效的令牌", err)
			}
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <t>", falling back to ?token= for WebSocket upgrades
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.GetHeader("Upgrade") == "websocket" {
			return t, true
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts the authenticated user ID; 0 when absent
func GetUserID(c *gin.Context) uint64 {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0
	}
	id, _ := v.(uint64)
	return id
}

// GetUsername extracts the authenticated login name
func GetUsername(c *gin.Context) string {
	v, _ := c.Get(ctxUsername)
	s, _ := v.(string)
	return s
}
