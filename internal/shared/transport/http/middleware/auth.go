package middleware

import (
	"net/http"
	"strings"

	"WorldRepublic/internal/shared/security"

	"github.com/gin-gonic/gin"
)

// CtxKeyUid 是认证中间件写入 gin.Context 的公民 id 键。
const CtxKeyUid = "uid"

// Auth 解析 Bearer token 并把公民 id 写入上下文；失败直接 401。
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing token"})
			return
		}

		_, claims, err := security.ParseToken(token)
		if err != nil || claims.Uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set(CtxKeyUid, claims.Uid)
		c.Next()
	}
}

// ResolverSecret 校验定时任务触发口令（X-Resolver-Secret 头）。
func ResolverSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !security.CheckResolverSecret(c.GetHeader("X-Resolver-Secret")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid resolver secret"})
			return
		}
		c.Next()
	}
}
