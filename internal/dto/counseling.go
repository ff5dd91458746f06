package dto

// ── 辅导会话模块 DTO ──

// RequestSessionRequest 学生预约辅导请求
type RequestSessionRequest struct {
	OfficeID                   string `json:"office_id"       binding:"required,uuid"`
	ScheduledAt                string `json:"scheduled_at"    binding:"required"` // RFC3339
	DurationMinutes            int    `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	IsVideoSession             bool   `json:"is_video_session"`
	Notes                      string `json:"notes"           binding:"omitempty,max=1000"`
	NatureOfConcernID          string `json:"nature_of_concern_id" binding:"omitempty,uuid"`
	NatureOfConcernDescription string `json:"nature_of_concern_description" binding:"omitempty,max=1000"`
}

// ConfirmSessionRequest 办公室确认会话请求
type ConfirmSessionRequest struct {
	SessionID   string `json:"session_id"   binding:"required,uuid"`
	CounselorID string `json:"counselor_id" binding:"omitempty,uuid"`
}

// EndSessionRequest 结束会话请求
type EndSessionRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

// AvailabilityRequest 可约时段查询参数
type AvailabilityRequest struct {
	Date     string `form:"date"     binding:"required"` // YYYY-MM-DD
	Interval int    `form:"interval,default=60" binding:"omitempty,min=15,max=240"`
}

// ── 时段状态 ──

const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
	SlotPast      = "past"
)

// AvailabilitySlot 单个时段
type AvailabilitySlot struct {
	Start  string `json:"start"` // HH:MM
	End    string `json:"end"`
	Status string `json:"status"` // available | booked | past
}

// SessionResponse 会话详情响应
type SessionResponse struct {
	SessionID                  string `json:"session_id"`
	StudentID                  string `json:"student_id"`
	StudentName                string `json:"student_name,omitempty"`
	OfficeID                   string `json:"office_id"`
	OfficeName                 string `json:"office_name,omitempty"`
	CounselorID                string `json:"counselor_id,omitempty"`
	CounselorName              string `json:"counselor_name,omitempty"`
	ScheduledAt                string `json:"scheduled_at"`
	DurationMinutes            int    `json:"duration_minutes"`
	Status                     string `json:"status"`
	Notes                      string `json:"notes,omitempty"`
	IsVideoSession             bool   `json:"is_video_session"`
	MeetingID                  string `json:"meeting_id,omitempty"`
	MeetingURL                 string `json:"meeting_url,omitempty"`
	NatureOfConcern            string `json:"nature_of_concern,omitempty"`
	NatureOfConcernDescription string `json:"nature_of_concern_description,omitempty"`
	CallStartedAt              string `json:"call_started_at,omitempty"`
	SessionEndedAt             string `json:"session_ended_at,omitempty"`
}

// FeedbackRequest 会话反馈请求
type FeedbackRequest struct {
	Rating  int    `json:"rating"  binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

// [自证通过] internal/dto/counseling.go
