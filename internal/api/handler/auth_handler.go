package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 学生注册
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	user, err := h.authSvc.RegisterStudent(c.Request.Context(), &req, ip, ua)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 用户登录
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	result, err := h.authSvc.Login(c.Request.Context(), &req, ip, ua)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出：jti 进入黑名单，办公室管理员回写登录日志
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	ip, ua := clientMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), claims, ip, ua); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// RefreshToken 刷新 Token 对
// POST /refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, 10002, "刷新令牌无效或已过期")
		return
	}

	response.OK(c, result)
}

// VerifyEmail 邮箱验证（GET 链接携带 token；POST 提交 6 位验证码）
// GET /verify-email?token=…
// POST /verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if c.Request.Method == http.MethodGet {
		req.Token = c.Query("token")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Token == "" && req.Code == "" {
		response.BadRequest(c, 10001, "缺少验证令牌或验证码")
		return
	}

	if err := h.authSvc.VerifyEmail(c.Request.Context(), &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResendVerification 重发验证邮件（未知邮箱静默成功，防止探测）
// POST /resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 当前用户信息
// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11006, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
	case errors.Is(err, service.ErrAccountLocked):
		response.Forbidden(c, 11002, "账号已被锁定，请联系管理员")
	case errors.Is(err, service.ErrEmailNotVerified):
		response.Forbidden(c, 11003, "邮箱未验证，验证邮件已重新发送")
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, 11004, "邮箱已被注册")
	case errors.Is(err, service.ErrStudentNumberTaken):
		response.Conflict(c, 11005, "学号已被注册")
	case errors.Is(err, service.ErrInvalidStudentNum):
		response.BadRequest(c, 11007, "学号格式不正确")
	case errors.Is(err, service.ErrEmailDomain):
		response.BadRequest(c, 11008, "必须使用校内邮箱注册")
	case errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, 11009, "密码强度不足：至少 8 位且包含字母、数字与符号")
	case errors.Is(err, service.ErrDepartmentMismatch):
		response.BadRequest(c, 11010, "所选院系不属于该校区")
	case errors.Is(err, service.ErrVerificationInvalid):
		response.BadRequest(c, 11011, "验证令牌或验证码不正确")
	case errors.Is(err, service.ErrVerificationExpired):
		response.BadRequest(c, 11012, "验证令牌已过期，请重新发送")
	case errors.Is(err, service.ErrTooManyAttempts):
		response.Error(c, http.StatusTooManyRequests, 11013, "尝试次数过多，请重新发送验证邮件")
	case errors.Is(err, service.ErrResendTooSoon):
		response.Error(c, http.StatusTooManyRequests, 11014, "发送过于频繁，请稍后再试")
	case errors.Is(err, service.ErrCampusMissing):
		response.Forbidden(c, 11015, "账号未绑定校区，无法登录")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11006, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/auth_handler.go
