package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/api/handler"
	"piyu-guide/backend/internal/api/middleware"
	"piyu-guide/backend/internal/authz"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/realtime"
	"piyu-guide/backend/pkg/jwt"
	"piyu-guide/backend/pkg/redis"
)

// maxBodyBytes 附件上传上限 20MiB
const maxBodyBytes = 20 << 20

// Setup 初始化并返回 Gin 路由引擎
// 路径沿用既有前端约定：/student、/office、/admin 三个角色前缀
func Setup(cfg *config.Config, h *handler.Handler, hub *realtime.Hub, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 / 静态上传 / WebSocket ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.Static("/uploads", cfg.Upload.Root)
	r.GET("/ws/*namespace", hub.Serve)

	// ── 公开路由 ──
	authLimit := middleware.RateLimit(rdb, 10, time.Minute)
	r.POST("/login", authLimit, h.Auth.Login)
	r.POST("/register", authLimit, h.Auth.Register)
	r.POST("/refresh", authLimit, h.Auth.RefreshToken)
	r.GET("/verify-email", h.Auth.VerifyEmail)
	r.POST("/verify-email", authLimit, h.Auth.VerifyEmail)
	r.POST("/resend-verification", authLimit, h.Auth.ResendVerification)

	// 校区选择与注册页下拉均为公开数据
	api := r.Group("/api")
	{
		api.GET("/campuses", h.Admin.ListCampuses)
		api.GET("/campuses/:campus_id/departments", h.Admin.ListDepartments)
		api.GET("/campuses/:campus_id/offices", h.Admin.ListOffices)
		api.GET("/concern-types", h.Admin.ListConcernTypes)
		api.GET("/offices/:office_id/concerns", h.Admin.ListOfficeConcerns)
		api.GET("/ice-servers", h.Counseling.ICEServers)
	}

	// ── 需要认证的路由 ──
	authorized := r.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		authorized.POST("/logout", h.Auth.Logout)
		authorized.GET("/me", h.Auth.Me)

		// 学生面
		student := authorized.Group("/student", middleware.RoleAuth(model.RoleStudent))
		{
			student.POST("/create-inquiry", h.Inquiry.Create)
			student.GET("/inquiries", h.Inquiry.ListForStudent)
			student.GET("/inquiry/:id", h.Inquiry.Get)
			student.POST("/inquiry/:id/reply", h.Inquiry.Reply)
			student.GET("/api/inquiry/:id/messages", h.Inquiry.Messages)
			student.POST("/api/inquiry/:id/send-message", h.Inquiry.SendMessage)
			student.POST("/api/inquiry/:id/mark-read", h.Inquiry.MarkRead)
			student.POST("/api/resolution-response", h.Inquiry.ResolutionResponse)

			student.POST("/schedule-session", h.Counseling.Schedule)
			student.GET("/office/:id/availability", h.Counseling.Availability)
			student.GET("/sessions", h.Counseling.ListForStudent)
			student.POST("/cancel-session/:id", h.Counseling.Cancel)
			student.GET("/video-session/:id", h.Counseling.Get)
			student.POST("/session/:id/waiting-room", h.Counseling.JoinWaitingRoom)
			student.DELETE("/session/:id/waiting-room", h.Counseling.LeaveWaitingRoom)
			student.POST("/session/:id/feedback", h.Counseling.SubmitFeedback)

			student.GET("/announcements", h.Announcement.ListForStudent)
			student.GET("/api/announcement/:id", h.Announcement.Get)

			mountNotifications(student, h)
		}

		// 办公室面
		office := authorized.Group("/office", middleware.RoleAuth(model.RoleOfficeAdmin))
		{
			office.GET("/office-inquiry", h.Inquiry.ListForOffice)
			office.GET("/inquiry/:id", h.Inquiry.Get)
			office.POST("/update-inquiry-status", h.Inquiry.UpdateStatus)
			office.POST("/reply-to-inquiry/:id", h.Inquiry.Reply)
			office.POST("/api/inquiry/:id/mark-read", h.Inquiry.MarkRead)

			office.GET("/sessions", h.Counseling.ListForOffice)
			office.GET("/session/:id", h.Counseling.Get)
			office.POST("/confirm-session", h.Counseling.Confirm)
			office.POST("/cancel-session/:id", h.Counseling.Cancel)
			office.POST("/session/:id/no-show", h.Counseling.NoShow)
			office.POST("/session/:id/end", h.Counseling.End)
			office.POST("/session/:id/waiting-room", h.Counseling.JoinWaitingRoom)
			office.DELETE("/session/:id/waiting-room", h.Counseling.LeaveWaitingRoom)

			office.GET("/announcements", h.Announcement.ListForOffice)
			office.POST("/create_announcement", h.Announcement.Create)
			office.PUT("/update_announcement/:id", h.Announcement.Update)
			office.DELETE("/delete_announcement/:id", h.Announcement.Delete)

			mountNotifications(office, h)
		}

		// 管理面（校区管理员 + 全局超管）
		admin := authorized.Group("/admin", middleware.RoleAuth(model.RoleSuperAdmin, model.RoleSuperSuperAdmin))
		{
			admin.POST("/campuses", middleware.Require(authz.ActionCampusManage), h.Admin.CreateCampus)
			admin.PUT("/campuses/:campus_id", middleware.Require(authz.ActionCampusManage), h.Admin.UpdateCampus)
			admin.POST("/campuses/:campus_id/departments", middleware.Require(authz.ActionCampusManage), h.Admin.CreateDepartment)

			admin.POST("/campuses/:campus_id/offices", middleware.Require(authz.ActionOfficeManage), middleware.CampusScope("campus_id"), h.Admin.CreateOffice)
			admin.PUT("/offices/:office_id", middleware.Require(authz.ActionOfficeManage), h.Admin.UpdateOffice)
			admin.PUT("/offices/:office_id/concerns", middleware.Require(authz.ActionOfficeManage), h.Admin.UpsertOfficeConcern)

			admin.POST("/concern-types", middleware.Require(authz.ActionCampusManage), h.Admin.CreateConcernType)
			admin.PUT("/concern-types/:id", middleware.Require(authz.ActionCampusManage), h.Admin.UpdateConcernType)

			admin.POST("/accounts/:user_id/lock", middleware.Require(authz.ActionAccountLock), h.Admin.LockAccount)
			admin.POST("/accounts/:user_id/unlock", middleware.Require(authz.ActionAccountLock), h.Admin.UnlockAccount)

			admin.GET("/audit-logs", middleware.Require(authz.ActionAuditView), h.Admin.ListAuditLogs)
			admin.GET("/student-activity", middleware.Require(authz.ActionAuditView), h.Admin.ListStudentActivity)

			admin.GET("/settings", middleware.Require(authz.ActionSettingsManage), h.Admin.ListSettings)
			admin.PUT("/settings/:key", middleware.Require(authz.ActionSettingsManage), h.Admin.UpdateSetting)

			admin.GET("/export/inquiries", middleware.Require(authz.ActionExportData), h.Admin.ExportInquiries)
			admin.GET("/export/audit-logs", middleware.Require(authz.ActionExportData), h.Admin.ExportAuditLogs)

			admin.POST("/create_announcement", h.Announcement.Create)
			admin.PUT("/update_announcement/:id", h.Announcement.Update)
			admin.DELETE("/delete_announcement/:id", h.Announcement.Delete)

			mountNotifications(admin, h)
		}
	}

	return r
}

// mountNotifications 三个角色前缀共享同一组通知路由
func mountNotifications(g *gin.RouterGroup, h *handler.Handler) {
	g.GET("/notifications", h.Notification.List)
	g.GET("/notifications/unread-count", h.Notification.UnreadCount)
	g.POST("/notifications/mark-read/:id", h.Notification.MarkRead)
	g.POST("/notifications/mark-all-read", h.Notification.MarkAllRead)
	g.DELETE("/notifications/delete/:id", h.Notification.Delete)
}

// [自证通过] internal/api/router/router.go
