package model

import "time"

// Inquiry 咨询线程表 — 对应 inquiries
// 不变量：office.campus_id = student.campus_id（创建时校验）；closed 后不再接收新消息
type Inquiry struct {
	InquiryID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inquiry_id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	OfficeID  string `gorm:"type:uuid;not null"                             json:"office_id"`
	Subject   string `gorm:"type:varchar(255);not null"                     json:"subject"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Timestamps

	// 关联（级联删除由 DDL 承担）
	Student     *Student         `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Office      *Office          `gorm:"foreignKey:OfficeID;references:OfficeID"   json:"office,omitempty"`
	Messages    []InquiryMessage `gorm:"foreignKey:InquiryID;references:InquiryID" json:"messages,omitempty"`
	Concerns    []InquiryConcern `gorm:"foreignKey:InquiryID;references:InquiryID" json:"concerns,omitempty"`
	Attachments []Attachment     `gorm:"foreignKey:InquiryID;references:InquiryID" json:"attachments,omitempty"`
}

// TableName 指定表名
func (Inquiry) TableName() string { return "inquiries" }

// InquiryMessage 线程消息表 — 对应 inquiry_messages
// 不变量：read_at 非空 ⇒ status=read 且 delivered_at ≤ read_at
type InquiryMessage struct {
	MessageID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	InquiryID   string     `gorm:"type:uuid;not null"                             json:"inquiry_id"`
	SenderID    string     `gorm:"type:uuid;not null"                             json:"sender_id"`
	Content     string     `gorm:"type:text;not null"                             json:"content"`
	Status      string     `gorm:"type:varchar(10);not null;default:'sent'"       json:"status"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`

	// 关联
	Sender      *User        `gorm:"foreignKey:SenderID;references:UserID"     json:"sender,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:MessageID;references:MessageID" json:"attachments,omitempty"`
}

// TableName 指定表名
func (InquiryMessage) TableName() string { return "inquiry_messages" }

// InquiryConcern 线程×关注类别表 — 对应 inquiry_concerns
// OtherSpecification 仅当 concern_type.allows_other 时有效
type InquiryConcern struct {
	InquiryConcernID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inquiry_concern_id"`
	InquiryID          string  `gorm:"type:uuid;not null"                             json:"inquiry_id"`
	ConcernTypeID      string  `gorm:"type:uuid;not null"                             json:"concern_type_id"`
	OtherSpecification *string `gorm:"type:text"                                      json:"other_specification,omitempty"`

	// 关联
	ConcernType *ConcernType `gorm:"foreignKey:ConcernTypeID;references:ConcernTypeID" json:"concern_type,omitempty"`
}

// TableName 指定表名
func (InquiryConcern) TableName() string { return "inquiry_concerns" }

// ── 附件判别值 ──

const (
	AttachmentKindInquiry = "inquiry"
	AttachmentKindMessage = "message"
)

// Attachment 附件表 — 对应 attachments
// 共享记录 + kind 判别（inquiry | message）；随父级级联删除
type Attachment struct {
	AttachmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attachment_id"`
	Kind         string    `gorm:"type:varchar(10);not null"                      json:"kind"`
	InquiryID    *string   `gorm:"type:uuid"                                      json:"inquiry_id,omitempty"`
	MessageID    *string   `gorm:"type:uuid"                                      json:"message_id,omitempty"`
	Filename     string    `gorm:"type:varchar(255);not null"                     json:"filename"`
	Path         string    `gorm:"type:varchar(255);not null"                     json:"path"`
	SizeBytes    int64     `gorm:"not null"                                       json:"size_bytes"`
	MIMEType     string    `gorm:"type:varchar(100);column:mime_type"             json:"mime_type,omitempty"`
	UploaderID   *string   `gorm:"type:uuid"                                      json:"uploader_id,omitempty"`
	UploadedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
}

// TableName 指定表名
func (Attachment) TableName() string { return "attachments" }

// [自证通过] internal/model/inquiry.go
