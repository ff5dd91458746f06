package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler 平台管理 HTTP 处理器：组织目录、账号锁定、审计、设置与导出
type AdminHandler struct {
	adminSvc    service.AdminService
	authSvc     service.AuthService
	auditSvc    service.AuditService
	settingsSvc service.SettingsService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService, authSvc service.AuthService, auditSvc service.AuditService, settingsSvc service.SettingsService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, authSvc: authSvc, auditSvc: auditSvc, settingsSvc: settingsSvc}
}

// ── 校区 / 院系 ──

// CreateCampus 创建校区（全局超管）
// POST /admin/campuses
func (h *AdminHandler) CreateCampus(c *gin.Context) {
	var req dto.CreateCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.CreateCampus(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateCampus 更新校区
// PUT /admin/campuses/:campus_id
func (h *AdminHandler) UpdateCampus(c *gin.Context) {
	var req dto.CreateCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.UpdateCampus(c.Request.Context(), c.Param("campus_id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// ListCampuses 校区列表（未认证的校区选择页也使用）
// GET /api/campuses
func (h *AdminHandler) ListCampuses(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	list, err := h.adminSvc.ListCampuses(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// CreateDepartment 创建院系
// POST /admin/campuses/:campus_id/departments
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.CreateDepartment(c.Request.Context(), c.Param("campus_id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// ListDepartments 院系列表（注册页下拉框也使用）
// GET /api/campuses/:campus_id/departments
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	list, err := h.adminSvc.ListDepartments(c.Request.Context(), c.Param("campus_id"), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// ── 办公室 ──

// CreateOffice 创建办公室（校区管理员）
// POST /admin/campuses/:campus_id/offices
func (h *AdminHandler) CreateOffice(c *gin.Context) {
	var req dto.CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.CreateOffice(c.Request.Context(), c.Param("campus_id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateOffice 更新办公室
// PUT /admin/offices/:office_id
func (h *AdminHandler) UpdateOffice(c *gin.Context) {
	var req dto.CreateOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.UpdateOffice(c.Request.Context(), c.Param("office_id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// ListOffices 校区办公室列表（学生咨询入口页也使用）
// GET /api/campuses/:campus_id/offices
func (h *AdminHandler) ListOffices(c *gin.Context) {
	list, err := h.adminSvc.ListOffices(c.Request.Context(), c.Param("campus_id"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// ── 关注类别 ──

// CreateConcernType 创建关注类别（全局目录）
// POST /admin/concern-types
func (h *AdminHandler) CreateConcernType(c *gin.Context) {
	var req dto.CreateConcernTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.CreateConcernType(c.Request.Context(), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateConcernType 更新关注类别
// PUT /admin/concern-types/:id
func (h *AdminHandler) UpdateConcernType(c *gin.Context) {
	var req dto.CreateConcernTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.UpdateConcernType(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// ListConcernTypes 关注类别目录
// GET /api/concern-types
func (h *AdminHandler) ListConcernTypes(c *gin.Context) {
	list, err := h.adminSvc.ListConcernTypes(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// UpsertOfficeConcern 维护办公室×关注类别关联
// PUT /admin/offices/:office_id/concerns
func (h *AdminHandler) UpsertOfficeConcern(c *gin.Context) {
	var req dto.UpsertOfficeConcernRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.adminSvc.UpsertOfficeConcern(c.Request.Context(), c.Param("office_id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, result)
}

// ListOfficeConcerns 办公室关联的关注类别
// GET /api/offices/:office_id/concerns
func (h *AdminHandler) ListOfficeConcerns(c *gin.Context) {
	list, err := h.adminSvc.ListOfficeConcerns(c.Request.Context(), c.Param("office_id"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// ── 账号锁定 ──

// LockAccount 锁定账号
// POST /admin/accounts/:user_id/lock
func (h *AdminHandler) LockAccount(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.LockAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	if err := h.authSvc.LockAccount(c.Request.Context(), actorID, role, c.Param("user_id"), req.Reason, ip, ua); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

// UnlockAccount 解锁账号
// POST /admin/accounts/:user_id/unlock
func (h *AdminHandler) UnlockAccount(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.LockAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	if err := h.authSvc.UnlockAccount(c.Request.Context(), actorID, role, c.Param("user_id"), req.Reason, ip, ua); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 审计 ──

// ListAuditLogs 审计日志分页
// GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, total, err := h.auditSvc.ListAudit(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListStudentActivity 学生活动日志分页
// GET /admin/student-activity?student_id=
func (h *AdminHandler) ListStudentActivity(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, total, err := h.auditSvc.ListStudentActivity(c.Request.Context(), c.Query("student_id"), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ── 系统设置 ──

// ListSettings 系统设置清单
// GET /admin/settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	list, err := h.settingsSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// UpdateSetting 更新系统设置（按类型标签校验取值）
// PUT /admin/settings/:key
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.settingsSvc.Update(c.Request.Context(), c.Param("key"), req.Value, req.ValueType, userID); err != nil {
		if errors.Is(err, service.ErrSettingTypeMismatch) {
			response.BadRequest(c, 17001, "取值与类型标签不匹配")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ── 导出 ──

// ExportInquiries 导出办公室线程清单
// GET /admin/export/inquiries?office_id=
func (h *AdminHandler) ExportInquiries(c *gin.Context) {
	officeID := c.Query("office_id")
	if officeID == "" {
		response.BadRequest(c, 10001, "office_id 不能为空")
		return
	}

	buf, filename, err := h.adminSvc.ExportInquiries(c.Request.Context(), officeID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	h.writeXLSX(c, buf.Bytes(), filename)
}

// ExportAuditLogs 导出审计日志
// GET /admin/export/audit-logs
func (h *AdminHandler) ExportAuditLogs(c *gin.Context) {
	buf, filename, err := h.adminSvc.ExportAuditLogs(c.Request.Context())
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	h.writeXLSX(c, buf.Bytes(), filename)
}

func (h *AdminHandler) writeXLSX(c *gin.Context, data []byte, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCampusNotFound):
		response.NotFound(c, 16001, "校区不存在")
	case errors.Is(err, service.ErrCampusCodeTaken):
		response.Conflict(c, 16002, "校区代码已被使用")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 16003, "院系不存在")
	case errors.Is(err, service.ErrOfficeNotFound):
		response.NotFound(c, 16004, "办公室不存在")
	case errors.Is(err, service.ErrConcernTypeNotFound):
		response.NotFound(c, 16005, "关注类别不存在")
	case errors.Is(err, service.ErrAutoReplyNeedsMessage):
		response.BadRequest(c, 16006, "启用自动回复时必须填写回复内容")
	case errors.Is(err, service.ErrExportTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 16007, "导出数据量超出上限，请缩小范围")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11006, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/admin_handler.go
