package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token有效性（角色在Claims里，鉴权免查库）
// 3. 检查Token黑名单（熔断器保护，Redis故障时降级放行）
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
	breaker      *circuitbreaker.CircuitBreaker
}

// NewAuthMiddleware 创建认证中间件
// breaker保护黑名单查询：Redis连续失败后熔断，
// 熔断期间跳过黑名单检查（签名校验仍然生效）
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore, breaker *circuitbreaker.CircuitBreaker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		breaker:      breaker,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/users/me", handler.GetProfile)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 2. 解析Token格式
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. 验证Token并解析Claims
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err) // 自动处理ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		// 4. 检查Token是否在黑名单中（用户已登出或被强制失效）
		// 教学要点：黑名单查询经过熔断器，Redis故障不能把整个
		// API打挂——熔断打开时跳过黑名单检查，接受短暂的
		// "已登出Token仍可用"窗口，换取服务整体可用
		var isBlacklisted bool
		err = m.breaker.Execute(func() error {
			var qerr error
			isBlacklisted, qerr = m.sessionStore.IsInBlacklist(c.Request.Context(), tokenString)
			return qerr
		})
		if err != nil {
			if errors.Is(err, circuitbreaker.ErrOpenState) {
				// 熔断打开：降级放行
				log.Printf("黑名单检查降级: token熔断器打开")
			} else {
				// 单次Redis错误：同样降级放行，熔断器已记账
				log.Printf("黑名单检查失败(降级放行): %v", err)
			}
		} else if isBlacklisted {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		// 5. 将用户信息注入到Context（后续Handler使用）
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("access_token", tokenString)

		// 6. 继续处理请求
		c.Next()
	}
}

// RequireAdmin 要求管理员角色
// 必须挂在RequireAuth之后
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != "admin" {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetUsername 从Context获取当前登录用户名
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// GetRole 从Context获取当前登录用户角色
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}

// GetAccessToken 从Context获取当前请求携带的Token
// 用途：登出、修改密码后将Token拉黑
func GetAccessToken(c *gin.Context) string {
	if token, exists := c.Get("access_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// IsAdmin 当前用户是否为管理员
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == "admin"
}
