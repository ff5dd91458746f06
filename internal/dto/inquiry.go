package dto

// ── 咨询线程模块 DTO ──

// CreateInquiryRequest 创建咨询线程请求（multipart 表单，附件另行读取）
type CreateInquiryRequest struct {
	OfficeID           string `form:"office_id"           binding:"required,uuid"`
	Subject            string `form:"subject"             binding:"required"`
	FirstMessage       string `form:"first_message"       binding:"required"`
	ConcernTypeID      string `form:"concern_type_id"     binding:"omitempty,uuid"`
	OtherSpecification string `form:"other_specification" binding:"omitempty,max=500"`
}

// ReplyRequest 线程回复请求
type ReplyRequest struct {
	Content string `form:"content" json:"content" binding:"required"`
}

// UpdateInquiryStatusRequest 线程状态变更请求
type UpdateInquiryStatusRequest struct {
	InquiryID string `json:"inquiry_id" binding:"required,uuid"`
	NewStatus string `json:"new_status" binding:"required,oneof=pending in_progress resolved reopened closed cancelled"`
}

// InquiryListRequest 线程列表查询参数
type InquiryListRequest struct {
	Status   string `form:"status"    binding:"omitempty,oneof=pending in_progress resolved reopened closed cancelled"`
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// MessagePageRequest 消息翻页查询参数（游标：before_id）
type MessagePageRequest struct {
	BeforeID string `form:"before_id" binding:"omitempty,uuid"`
	Limit    int    `form:"limit,default=30" binding:"omitempty,min=1,max=100"`
}

// AttachmentResponse 附件响应
type AttachmentResponse struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	SizeBytes    int64  `json:"size_bytes"`
	MIMEType     string `json:"mime_type,omitempty"`
}

// AttachmentFailure 单文件附件失败详情（其余文件继续）
type AttachmentFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// MessageResponse 线程消息响应
type MessageResponse struct {
	MessageID       string               `json:"message_id"`
	InquiryID       string               `json:"inquiry_id"`
	SenderID        string               `json:"sender_id"`
	SenderName      string               `json:"sender_name"`
	SenderAvatarURL string               `json:"sender_avatar_url,omitempty"`
	Content         string               `json:"content"`
	Status          string               `json:"status"`
	CreatedAt       string               `json:"created_at"`
	DeliveredAt     string               `json:"delivered_at,omitempty"`
	ReadAt          string               `json:"read_at,omitempty"`
	Attachments     []AttachmentResponse `json:"attachments,omitempty"`
}

// InquiryConcernResponse 线程关注类别响应
type InquiryConcernResponse struct {
	ConcernTypeID      string `json:"concern_type_id"`
	Name               string `json:"name"`
	OtherSpecification string `json:"other_specification,omitempty"`
}

// InquiryResponse 线程详情响应
type InquiryResponse struct {
	InquiryID   string                   `json:"inquiry_id"`
	StudentID   string                   `json:"student_id"`
	StudentName string                   `json:"student_name,omitempty"`
	OfficeID    string                   `json:"office_id"`
	OfficeName  string                   `json:"office_name,omitempty"`
	Subject     string                   `json:"subject"`
	Status      string                   `json:"status"`
	CreatedAt   string                   `json:"created_at"`
	Concerns    []InquiryConcernResponse `json:"concerns,omitempty"`
	Attachments []AttachmentResponse     `json:"attachments,omitempty"`
	Messages    []MessageResponse        `json:"messages,omitempty"`
	UnreadCount int64                    `json:"unread_count,omitempty"`
}

// CreateInquiryResponse 创建结果（含逐文件附件失败）
type CreateInquiryResponse struct {
	Inquiry            InquiryResponse     `json:"inquiry"`
	AttachmentFailures []AttachmentFailure `json:"attachment_failures,omitempty"`
}

// ResolutionResponseRequest 学生对"已解决"的确认/拒绝
type ResolutionResponseRequest struct {
	InquiryID string `json:"inquiry_id" binding:"required,uuid"`
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message" binding:"omitempty,max=500"`
}

// [自证通过] internal/dto/inquiry.go
