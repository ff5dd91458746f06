package model

import "time"

// Timestamps 通用审计时间字段（所有业务模型嵌入）
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 角色 ──

const (
	RoleStudent         = "student"
	RoleOfficeAdmin     = "office_admin"
	RoleSuperAdmin      = "super_admin"       // 校区管理员
	RoleSuperSuperAdmin = "super_super_admin" // 全局超级管理员
)

// ── 咨询线程状态 ──

const (
	InquiryPending    = "pending"
	InquiryInProgress = "in_progress"
	InquiryResolved   = "resolved"
	InquiryReopened   = "reopened"
	InquiryClosed     = "closed"
	InquiryCancelled  = "cancelled"
)

// ── 消息状态 ──

const (
	MessageSending   = "sending"
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// ── 辅导会话状态 ──

const (
	SessionPending    = "pending"
	SessionConfirmed  = "confirmed"
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionCancelled  = "cancelled"
	SessionNoShow     = "no-show"
)

// ── 通知类型 ──

const (
	NotifyNewInquiry         = "new_inquiry"
	NotifyNewMessage         = "new_message"
	NotifyInquiryReply       = "inquiry_reply"
	NotifyStatusChange       = "status_change"
	NotifyCounseling         = "counseling"
	NotifyAnnouncement       = "announcement"
	NotifyCampusUpdate       = "campus_update"
	NotifyResolutionFeedback = "resolution_feedback"
)

// [自证通过] internal/model/base.go
