package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/service"
	"piyu-guide/backend/pkg/response"
)

// InquiryHandler 咨询线程模块 HTTP 处理器
type InquiryHandler struct {
	inquirySvc service.InquiryService
}

// NewInquiryHandler 创建 InquiryHandler
func NewInquiryHandler(inquirySvc service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquirySvc: inquirySvc}
}

// formFiles 提取 multipart 表单中的附件（字段名 attachments）
func formFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["attachments"]
}

// Create 学生创建咨询线程（multipart）
// POST /student/create-inquiry
func (h *InquiryHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateInquiryRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	result, err := h.inquirySvc.Create(c.Request.Context(), userID, &req, formFiles(c), ip, ua)
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 线程详情（学生/办公室/校区管理员共用，归属判定在服务层）
// GET /student/inquiry/:id
// GET /office/inquiry/:id
func (h *InquiryHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.inquirySvc.Get(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id"))
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OK(c, result)
}

// ListForStudent 学生线程列表
// GET /student/inquiries
func (h *InquiryHandler) ListForStudent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.InquiryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.inquirySvc.ListForStudent(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// ListForOffice 办公室线程列表
// GET /office/office-inquiry
func (h *InquiryHandler) ListForOffice(c *gin.Context) {
	var req dto.InquiryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.inquirySvc.ListForOffice(c.Request.Context(), GetOfficeID(c), &req)
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Reply 线程回复（multipart，支持附件）
// POST /student/inquiry/:id/reply
// POST /office/reply-to-inquiry/:id
func (h *InquiryHandler) Reply(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ReplyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msg, err := h.inquirySvc.Reply(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id"), req.Content, formFiles(c))
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.Created(c, msg)
}

// SendMessage 线程内发消息（JSON，无附件；socket 之外的兜底通道）
// POST /student/api/inquiry/:id/send-message
func (h *InquiryHandler) SendMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msg, err := h.inquirySvc.Reply(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id"), req.Content, nil)
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.Created(c, msg)
}

// Messages 线程消息翻页（created_at 升序，before_id 为游标）
// GET /student/api/inquiry/:id/messages?before_id&limit
func (h *InquiryHandler) Messages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.MessagePageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	msgs, err := h.inquirySvc.Messages(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id"), &req)
	if err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OK(c, msgs)
}

// MarkRead 整个线程置已读（幂等）
// POST /student/api/inquiry/:id/mark-read
// POST /office/api/inquiry/:id/mark-read
func (h *InquiryHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.inquirySvc.MarkRead(c.Request.Context(), userID, role, GetOfficeID(c), c.Param("id")); err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateStatus 办公室变更线程状态
// POST /office/update-inquiry-status
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	ip, ua := clientMeta(c)
	if err := h.inquirySvc.UpdateStatus(c.Request.Context(), userID, role, GetOfficeID(c), req.InquiryID, req.NewStatus, ip, ua); err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OK(c, nil)
}

// ResolutionResponse 学生确认/拒绝"已解决"
// POST /student/api/resolution-response
func (h *InquiryHandler) ResolutionResponse(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ResolutionResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.inquirySvc.ResolutionResponse(c.Request.Context(), userID, &req); err != nil {
		h.handleInquiryError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *InquiryHandler) handleInquiryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInquiryNotFound):
		response.NotFound(c, 12001, "咨询线程不存在")
	case errors.Is(err, service.ErrSubjectTooLong):
		response.BadRequest(c, 12002, "主题超过 15 个单词上限")
	case errors.Is(err, service.ErrMessageTooLong):
		response.BadRequest(c, 12003, "消息超过 300 个单词上限")
	case errors.Is(err, service.ErrInquiryScope):
		response.Forbidden(c, 12004, "只能向本校区的办公室发起咨询")
	case errors.Is(err, service.ErrConcernNotSupported):
		response.BadRequest(c, 12005, "该办公室不受理所选关注类别")
	case errors.Is(err, service.ErrInquiryClosed):
		response.Error(c, http.StatusConflict, 12006, "线程已关闭，无法继续发送消息")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, 12007, "非法的状态变更")
	case errors.Is(err, service.ErrInquiryAccess):
		response.Forbidden(c, 12008, "无权访问该线程")
	case errors.Is(err, service.ErrNotResolved):
		response.Error(c, http.StatusConflict, 12009, "线程当前不处于已解决状态")
	case errors.Is(err, service.ErrEmptyContent):
		response.BadRequest(c, 12010, "消息内容不能为空")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/inquiry_handler.go
