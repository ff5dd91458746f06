package model

import "time"

// AuditLog 审计日志表 — 对应 audit_logs（仅追加，尽力写入）
type AuditLog struct {
	LogID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	ActorID       *string   `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	ActorRole     string    `gorm:"type:varchar(30)"                               json:"actor_role,omitempty"`
	Action        string    `gorm:"type:varchar(100);not null"                     json:"action"`
	Detail        string    `gorm:"type:text"                                      json:"detail,omitempty"`
	IPAddress     string    `gorm:"type:varchar(45);column:ip_address"             json:"ip_address,omitempty"`
	UserAgent     string    `gorm:"type:varchar(255)"                              json:"user_agent,omitempty"`
	Success       bool      `gorm:"not null;default:true"                          json:"success"`
	FailureReason string    `gorm:"type:text"                                      json:"failure_reason,omitempty"`
	RetentionDays int       `gorm:"not null;default:365"                           json:"retention_days"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string { return "audit_logs" }

// StudentActivityLog 学生活动日志表 — 对应 student_activity_logs
type StudentActivityLog struct {
	LogID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	StudentID     *string   `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	Action        string    `gorm:"type:varchar(100);not null"                     json:"action"`
	Detail        string    `gorm:"type:text"                                      json:"detail,omitempty"`
	IPAddress     string    `gorm:"type:varchar(45);column:ip_address"             json:"ip_address,omitempty"`
	UserAgent     string    `gorm:"type:varchar(255)"                              json:"user_agent,omitempty"`
	Success       bool      `gorm:"not null;default:true"                          json:"success"`
	FailureReason string    `gorm:"type:text"                                      json:"failure_reason,omitempty"`
	RetentionDays int       `gorm:"not null;default:365"                           json:"retention_days"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (StudentActivityLog) TableName() string { return "student_activity_logs" }

// OfficeLoginLog 办公室管理员登录日志表 — 对应 office_login_logs
// 登录时开行，登出时关最近未关闭行并回填 session_duration（秒）
type OfficeLoginLog struct {
	LogID           string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	OfficeAdminID   string     `gorm:"type:uuid;not null"                             json:"office_admin_id"`
	LoginAt         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"login_at"`
	LogoutAt        *time.Time `json:"logout_at,omitempty"`
	SessionDuration *int64     `json:"session_duration,omitempty"`
	IPAddress       string     `gorm:"type:varchar(45);column:ip_address"             json:"ip_address,omitempty"`
	UserAgent       string     `gorm:"type:varchar(255)"                              json:"user_agent,omitempty"`
}

// TableName 指定表名
func (OfficeLoginLog) TableName() string { return "office_login_logs" }

// SuperAdminActivityLog 超管活动日志表 — 对应 super_admin_activity_logs
// IsGlobal=true 为全局超管（保留期 1095 天），否则校区管理员（730 天）
type SuperAdminActivityLog struct {
	LogID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	AdminID       *string   `gorm:"type:uuid"                                      json:"admin_id,omitempty"`
	IsGlobal      bool      `gorm:"not null;default:false"                         json:"is_global"`
	Action        string    `gorm:"type:varchar(100);not null"                     json:"action"`
	Detail        string    `gorm:"type:text"                                      json:"detail,omitempty"`
	IPAddress     string    `gorm:"type:varchar(45);column:ip_address"             json:"ip_address,omitempty"`
	UserAgent     string    `gorm:"type:varchar(255)"                              json:"user_agent,omitempty"`
	Success       bool      `gorm:"not null;default:true"                          json:"success"`
	FailureReason string    `gorm:"type:text"                                      json:"failure_reason,omitempty"`
	RetentionDays int       `gorm:"not null;default:730"                           json:"retention_days"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (SuperAdminActivityLog) TableName() string { return "super_admin_activity_logs" }

// [自证通过] internal/model/audit.go
