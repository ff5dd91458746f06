package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"piyu-guide/backend/config"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
	"piyu-guide/backend/pkg/jwt"
	"piyu-guide/backend/pkg/mailer"
)

// ── 录制 Emitter ──

type emittedEvent struct {
	Namespace string
	Room      string
	Event     string
	Payload   interface{}
}

type recordingEmitter struct {
	events []emittedEvent
}

func (e *recordingEmitter) ToRoom(namespace, room, event string, payload interface{}) {
	e.events = append(e.events, emittedEvent{Namespace: namespace, Room: room, Event: event, Payload: payload})
}

func (e *recordingEmitter) count(event string) int {
	n := 0
	for i := range e.events {
		if e.events[i].Event == event {
			n++
		}
	}
	return n
}

func (e *recordingEmitter) last(event string) *emittedEvent {
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Event == event {
			return &e.events[i]
		}
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	byID        map[string]*model.User
	lockHistory []*model.AccountLockHistory
	seq         int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%04d", m.seq)
	}
	m.byID[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.byID[user.UserID] = user
	return nil
}

func (m *mockUserRepo) SetOnline(_ context.Context, id string, online bool) error {
	if u, ok := m.byID[id]; ok {
		u.IsOnline = online
	}
	return nil
}

func (m *mockUserRepo) AppendLockHistory(_ context.Context, h *model.AccountLockHistory) error {
	m.lockHistory = append(m.lockHistory, h)
	return nil
}

func (m *mockUserRepo) ListCampusAdmins(_ context.Context, campusID string) ([]model.User, error) {
	var out []model.User
	for _, u := range m.byID {
		if u.Role == model.RoleSuperAdmin && u.CampusID != nil && *u.CampusID == campusID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListGlobalAdmins(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.byID {
		if u.Role == model.RoleSuperSuperAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListProfilePicPaths(_ context.Context) ([]string, error) {
	var paths []string
	for _, u := range m.byID {
		if u.ProfilePicPath != nil {
			paths = append(paths, *u.ProfilePicPath)
		}
	}
	return paths, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	byID map[string]*model.Student
	seq  int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{byID: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.seq++
		student.StudentID = fmt.Sprintf("stu-%04d", m.seq)
	}
	m.byID[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.byID {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNumber(_ context.Context, studentNumber string) (*model.Student, error) {
	for _, s := range m.byID {
		if s.StudentNumber == studentNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.byID[student.StudentID] = student
	return nil
}

// ── Mock CampusRepository ──

type mockCampusRepo struct {
	campuses map[string]*model.Campus
	seq      int
}

func newMockCampusRepo() *mockCampusRepo {
	return &mockCampusRepo{campuses: make(map[string]*model.Campus)}
}

func (m *mockCampusRepo) Create(_ context.Context, campus *model.Campus) error {
	if campus.CampusID == "" {
		m.seq++
		campus.CampusID = fmt.Sprintf("campus-%04d", m.seq)
	}
	m.campuses[campus.CampusID] = campus
	return nil
}

func (m *mockCampusRepo) GetByID(_ context.Context, id string) (*model.Campus, error) {
	if c, ok := m.campuses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampusRepo) GetByCode(_ context.Context, code string) (*model.Campus, error) {
	for _, c := range m.campuses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCampusRepo) List(_ context.Context, includeInactive bool) ([]model.Campus, error) {
	var out []model.Campus
	for _, c := range m.campuses {
		if !includeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCampusRepo) Update(_ context.Context, campus *model.Campus) error {
	m.campuses[campus.CampusID] = campus
	return nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts map[string]*model.Department
	seq   int
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		m.seq++
		dept.DepartmentID = fmt.Sprintf("dept-%04d", m.seq)
	}
	m.depts[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) ListByCampus(_ context.Context, campusID string, includeInactive bool) ([]model.Department, error) {
	var out []model.Department
	for _, d := range m.depts {
		if d.CampusID != campusID {
			continue
		}
		if !includeInactive && !d.IsActive {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.depts[dept.DepartmentID] = dept
	return nil
}

// ── Mock OfficeRepository ──

type mockOfficeRepo struct {
	offices map[string]*model.Office
	admins  []*model.OfficeAdmin
	users   map[string]*model.User // 管理员 User 装配
	seq     int
}

func newMockOfficeRepo(users map[string]*model.User) *mockOfficeRepo {
	return &mockOfficeRepo{offices: make(map[string]*model.Office), users: users}
}

func (m *mockOfficeRepo) Create(_ context.Context, office *model.Office) error {
	if office.OfficeID == "" {
		m.seq++
		office.OfficeID = fmt.Sprintf("office-%04d", m.seq)
	}
	m.offices[office.OfficeID] = office
	return nil
}

func (m *mockOfficeRepo) GetByID(_ context.Context, id string) (*model.Office, error) {
	if o, ok := m.offices[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficeRepo) ListByCampus(_ context.Context, campusID string) ([]model.Office, error) {
	var out []model.Office
	for _, o := range m.offices {
		if o.CampusID == campusID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOfficeRepo) Update(_ context.Context, office *model.Office) error {
	m.offices[office.OfficeID] = office
	return nil
}

func (m *mockOfficeRepo) CreateAdmin(_ context.Context, admin *model.OfficeAdmin) error {
	if admin.OfficeAdminID == "" {
		m.seq++
		admin.OfficeAdminID = fmt.Sprintf("oadmin-%04d", m.seq)
	}
	m.admins = append(m.admins, admin)
	return nil
}

func (m *mockOfficeRepo) GetAdminByUserID(_ context.Context, userID string) (*model.OfficeAdmin, error) {
	for _, a := range m.admins {
		if a.UserID == userID {
			m.hydrate(a)
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficeRepo) ListAdmins(_ context.Context, officeID string) ([]model.OfficeAdmin, error) {
	var out []model.OfficeAdmin
	for _, a := range m.admins {
		if a.OfficeID == officeID {
			m.hydrate(a)
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockOfficeRepo) ListAllAdmins(_ context.Context) ([]model.OfficeAdmin, error) {
	var out []model.OfficeAdmin
	for _, a := range m.admins {
		m.hydrate(a)
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockOfficeRepo) hydrate(a *model.OfficeAdmin) {
	if a.User == nil {
		a.User = m.users[a.UserID]
	}
	if a.Office == nil {
		a.Office = m.offices[a.OfficeID]
	}
}

// ── Mock ConcernRepository ──

type mockConcernRepo struct {
	types  map[string]*model.ConcernType
	assocs []*model.OfficeConcernType
	nextID int64
	seq    int
}

func newMockConcernRepo() *mockConcernRepo {
	return &mockConcernRepo{types: make(map[string]*model.ConcernType), nextID: 1}
}

func (m *mockConcernRepo) CreateType(_ context.Context, ct *model.ConcernType) error {
	if ct.ConcernTypeID == "" {
		m.seq++
		ct.ConcernTypeID = fmt.Sprintf("ct-%04d", m.seq)
	}
	m.types[ct.ConcernTypeID] = ct
	return nil
}

func (m *mockConcernRepo) GetTypeByID(_ context.Context, id string) (*model.ConcernType, error) {
	if ct, ok := m.types[id]; ok {
		return ct, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConcernRepo) ListTypes(_ context.Context) ([]model.ConcernType, error) {
	var out []model.ConcernType
	for _, ct := range m.types {
		out = append(out, *ct)
	}
	return out, nil
}

func (m *mockConcernRepo) UpdateType(_ context.Context, ct *model.ConcernType) error {
	m.types[ct.ConcernTypeID] = ct
	return nil
}

func (m *mockConcernRepo) UpsertAssociation(_ context.Context, assoc *model.OfficeConcernType) error {
	for _, a := range m.assocs {
		if a.OfficeID == assoc.OfficeID && a.ConcernTypeID == assoc.ConcernTypeID {
			a.ForInquiries = assoc.ForInquiries
			a.ForCounseling = assoc.ForCounseling
			a.AutoReplyEnabled = assoc.AutoReplyEnabled
			a.AutoReplyMessage = assoc.AutoReplyMessage
			assoc.AssociationID = a.AssociationID
			return nil
		}
	}
	assoc.AssociationID = m.nextID
	m.nextID++
	m.assocs = append(m.assocs, assoc)
	return nil
}

func (m *mockConcernRepo) GetAssociation(_ context.Context, officeID, concernTypeID string) (*model.OfficeConcernType, error) {
	for _, a := range m.assocs {
		if a.OfficeID == officeID && a.ConcernTypeID == concernTypeID {
			a.ConcernType = m.types[a.ConcernTypeID]
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConcernRepo) ListByOffice(_ context.Context, officeID string, forInquiries, forCounseling bool) ([]model.OfficeConcernType, error) {
	var out []model.OfficeConcernType
	for _, a := range m.assocs {
		if a.OfficeID != officeID {
			continue
		}
		if forInquiries && !a.ForInquiries {
			continue
		}
		if forCounseling && !a.ForCounseling {
			continue
		}
		a.ConcernType = m.types[a.ConcernTypeID]
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssociationID < out[j].AssociationID })
	return out, nil
}

func (m *mockConcernRepo) ListAutoReplyCandidates(_ context.Context, officeID string, concernTypeIDs []string) ([]model.OfficeConcernType, error) {
	if len(concernTypeIDs) == 0 {
		return nil, nil
	}
	hit := make(map[string]bool, len(concernTypeIDs))
	for _, id := range concernTypeIDs {
		hit[id] = true
	}
	var out []model.OfficeConcernType
	for _, a := range m.assocs {
		if a.OfficeID != officeID || !hit[a.ConcernTypeID] {
			continue
		}
		a.ConcernType = m.types[a.ConcernTypeID]
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssociationID < out[j].AssociationID })
	return out, nil
}

// ── Mock InquiryRepository ──

type mockInquiryRepo struct {
	inquiries   map[string]*model.Inquiry
	messages    []*model.InquiryMessage
	concerns    []*model.InquiryConcern
	attachments []*model.Attachment

	// 装配源
	students     map[string]*model.Student
	offices      map[string]*model.Office
	users        map[string]*model.User
	concernTypes map[string]*model.ConcernType

	seq  int
	tick int64
}

func newMockInquiryRepo(students map[string]*model.Student, offices map[string]*model.Office,
	users map[string]*model.User, concernTypes map[string]*model.ConcernType) *mockInquiryRepo {
	return &mockInquiryRepo{
		inquiries:    make(map[string]*model.Inquiry),
		students:     students,
		offices:      offices,
		users:        users,
		concernTypes: concernTypes,
	}
}

// now 单调递增时间戳，保证同一测试内消息序确定
func (m *mockInquiryRepo) now() time.Time {
	m.tick++
	return time.Now().Add(time.Duration(m.tick) * time.Millisecond)
}

func (m *mockInquiryRepo) Create(_ context.Context, inquiry *model.Inquiry) error {
	if inquiry.InquiryID == "" {
		m.seq++
		inquiry.InquiryID = fmt.Sprintf("inq-%04d", m.seq)
	}
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = m.now()
	}
	m.inquiries[inquiry.InquiryID] = inquiry
	return nil
}

func (m *mockInquiryRepo) GetByID(_ context.Context, id string) (*model.Inquiry, error) {
	inq, ok := m.inquiries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	inq.Student = m.students[inq.StudentID]
	inq.Office = m.offices[inq.OfficeID]
	inq.Messages = nil
	for _, msg := range m.sortedMessages(id) {
		inq.Messages = append(inq.Messages, *msg)
	}
	inq.Concerns = nil
	for _, c := range m.concerns {
		if c.InquiryID == id {
			c.ConcernType = m.concernTypes[c.ConcernTypeID]
			inq.Concerns = append(inq.Concerns, *c)
		}
	}
	inq.Attachments = nil
	for _, a := range m.attachments {
		if a.Kind == model.AttachmentKindInquiry && a.InquiryID != nil && *a.InquiryID == id {
			inq.Attachments = append(inq.Attachments, *a)
		}
	}
	return inq, nil
}

func (m *mockInquiryRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.Inquiry, int64, error) {
	var rows []model.Inquiry
	for _, inq := range m.inquiries {
		if inq.StudentID != studentID {
			continue
		}
		if status != "" && inq.Status != status {
			continue
		}
		inq.Office = m.offices[inq.OfficeID]
		rows = append(rows, *inq)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return pageInquiries(rows, offset, limit)
}

func (m *mockInquiryRepo) ListByOffice(_ context.Context, officeID, status string, offset, limit int) ([]model.Inquiry, int64, error) {
	var rows []model.Inquiry
	for _, inq := range m.inquiries {
		if inq.OfficeID != officeID {
			continue
		}
		if status != "" && inq.Status != status {
			continue
		}
		inq.Student = m.students[inq.StudentID]
		rows = append(rows, *inq)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return pageInquiries(rows, offset, limit)
}

func pageInquiries(rows []model.Inquiry, offset, limit int) ([]model.Inquiry, int64, error) {
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (m *mockInquiryRepo) ListStudentOfficeIDs(_ context.Context, studentID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, inq := range m.inquiries {
		if inq.StudentID == studentID && !seen[inq.OfficeID] {
			seen[inq.OfficeID] = true
			out = append(out, inq.OfficeID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockInquiryRepo) UpdateStatus(_ context.Context, id, status string) error {
	inq, ok := m.inquiries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inq.Status = status
	return nil
}

func (m *mockInquiryRepo) CreateMessage(_ context.Context, msg *model.InquiryMessage) error {
	if msg.MessageID == "" {
		m.seq++
		msg.MessageID = fmt.Sprintf("msg-%04d", m.seq)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockInquiryRepo) GetMessageByID(_ context.Context, id string) (*model.InquiryMessage, error) {
	for _, msg := range m.messages {
		if msg.MessageID == id {
			msg.Sender = m.users[msg.SenderID]
			msg.Attachments = nil
			for _, a := range m.attachments {
				if a.Kind == model.AttachmentKindMessage && a.MessageID != nil && *a.MessageID == id {
					msg.Attachments = append(msg.Attachments, *a)
				}
			}
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInquiryRepo) ListMessages(_ context.Context, inquiryID, beforeID string, limit int) ([]model.InquiryMessage, error) {
	msgs := m.sortedMessages(inquiryID)
	if beforeID != "" {
		cut := len(msgs)
		for i, msg := range msgs {
			if msg.MessageID == beforeID {
				cut = i
				break
			}
		}
		msgs = msgs[:cut]
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.InquiryMessage, 0, len(msgs))
	for _, msg := range msgs {
		msg.Sender = m.users[msg.SenderID]
		out = append(out, *msg)
	}
	return out, nil
}

func (m *mockInquiryRepo) ListUnreadFrom(_ context.Context, inquiryID, readerID string) ([]model.InquiryMessage, error) {
	var out []model.InquiryMessage
	for _, msg := range m.sortedMessages(inquiryID) {
		if msg.SenderID != readerID && msg.ReadAt == nil {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockInquiryRepo) MarkMessagesRead(_ context.Context, messageIDs []string, readAt time.Time) error {
	hit := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		hit[id] = true
	}
	for _, msg := range m.messages {
		if hit[msg.MessageID] {
			t := readAt
			msg.ReadAt = &t
			msg.Status = model.MessageRead
		}
	}
	return nil
}

func (m *mockInquiryRepo) CountUnread(_ context.Context, inquiryID, readerID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.InquiryID == inquiryID && msg.SenderID != readerID && msg.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockInquiryRepo) CountUnreadFrom(_ context.Context, inquiryID, senderID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.InquiryID == inquiryID && msg.SenderID == senderID && msg.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockInquiryRepo) CreateConcern(_ context.Context, c *model.InquiryConcern) error {
	if c.InquiryConcernID == "" {
		m.seq++
		c.InquiryConcernID = fmt.Sprintf("inqc-%04d", m.seq)
	}
	m.concerns = append(m.concerns, c)
	return nil
}

func (m *mockInquiryRepo) CreateAttachment(_ context.Context, a *model.Attachment) error {
	if a.AttachmentID == "" {
		m.seq++
		a.AttachmentID = fmt.Sprintf("att-%04d", m.seq)
	}
	m.attachments = append(m.attachments, a)
	return nil
}

func (m *mockInquiryRepo) ListAttachments(_ context.Context, kind, parentID string) ([]model.Attachment, error) {
	var out []model.Attachment
	for _, a := range m.attachments {
		if a.Kind != kind {
			continue
		}
		switch kind {
		case model.AttachmentKindInquiry:
			if a.InquiryID != nil && *a.InquiryID == parentID {
				out = append(out, *a)
			}
		case model.AttachmentKindMessage:
			if a.MessageID != nil && *a.MessageID == parentID {
				out = append(out, *a)
			}
		}
	}
	return out, nil
}

func (m *mockInquiryRepo) ListAttachmentPaths(_ context.Context) ([]string, error) {
	var paths []string
	for _, a := range m.attachments {
		paths = append(paths, a.Path)
	}
	return paths, nil
}

func (m *mockInquiryRepo) sortedMessages(inquiryID string) []*model.InquiryMessage {
	var msgs []*model.InquiryMessage
	for _, msg := range m.messages {
		if msg.InquiryID == inquiryID {
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].MessageID < msgs[j].MessageID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

// ── Mock CounselingRepository ──

type mockCounselingRepo struct {
	sessions       map[string]*model.CounselingSession
	participations []*model.SessionParticipation
	feedbacks      map[string]*model.Feedback

	students map[string]*model.Student
	offices  map[string]*model.Office
	users    map[string]*model.User

	// beforeLockedCount 在持锁计数前触发，用于模拟对手事务在锁获取后可见的提交
	beforeLockedCount func()

	seq int
}

func newMockCounselingRepo(students map[string]*model.Student, offices map[string]*model.Office,
	users map[string]*model.User) *mockCounselingRepo {
	return &mockCounselingRepo{
		sessions:  make(map[string]*model.CounselingSession),
		feedbacks: make(map[string]*model.Feedback),
		students:  students,
		offices:   offices,
		users:     users,
	}
}

func (m *mockCounselingRepo) Create(_ context.Context, session *model.CounselingSession) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("sess-%04d", m.seq)
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockCounselingRepo) GetByID(_ context.Context, id string) (*model.CounselingSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.Student = m.students[s.StudentID]
	s.Office = m.offices[s.OfficeID]
	if s.CounselorID != nil {
		s.Counselor = m.users[*s.CounselorID]
	}
	return s, nil
}

func (m *mockCounselingRepo) GetByMeetingID(_ context.Context, meetingID string) (*model.CounselingSession, error) {
	for id, s := range m.sessions {
		if s.MeetingID != nil && *s.MeetingID == meetingID {
			return m.GetByID(context.Background(), id)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCounselingRepo) Update(_ context.Context, session *model.CounselingSession) error {
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockCounselingRepo) ListByStudent(_ context.Context, studentID string, offset, limit int) ([]model.CounselingSession, int64, error) {
	var rows []model.CounselingSession
	for _, s := range m.sessions {
		if s.StudentID == studentID {
			s.Office = m.offices[s.OfficeID]
			rows = append(rows, *s)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ScheduledAt.After(rows[j].ScheduledAt) })
	return pageSessions(rows, offset, limit)
}

func (m *mockCounselingRepo) ListByOffice(_ context.Context, officeID, status string, offset, limit int) ([]model.CounselingSession, int64, error) {
	var rows []model.CounselingSession
	for _, s := range m.sessions {
		if s.OfficeID != officeID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		s.Student = m.students[s.StudentID]
		rows = append(rows, *s)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ScheduledAt.After(rows[j].ScheduledAt) })
	return pageSessions(rows, offset, limit)
}

func pageSessions(rows []model.CounselingSession, offset, limit int) ([]model.CounselingSession, int64, error) {
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (m *mockCounselingRepo) CountConfirmedOverlap(_ context.Context, officeID string, start, end time.Time, excludeID string) (int64, error) {
	var n int64
	for _, s := range m.sessions {
		if s.OfficeID != officeID || s.Status != model.SessionConfirmed || s.SessionID == excludeID {
			continue
		}
		if s.Overlaps(start, end) {
			n++
		}
	}
	return n, nil
}

func (m *mockCounselingRepo) CountConfirmedOverlapForUpdate(ctx context.Context, officeID string, start, end time.Time, excludeID string) (int64, error) {
	if m.beforeLockedCount != nil {
		m.beforeLockedCount()
	}
	return m.CountConfirmedOverlap(ctx, officeID, start, end, excludeID)
}

func (m *mockCounselingRepo) ListConfirmedBetween(_ context.Context, officeID string, from, to time.Time) ([]model.CounselingSession, error) {
	var out []model.CounselingSession
	for _, s := range m.sessions {
		if s.OfficeID == officeID && s.Status == model.SessionConfirmed && s.Overlaps(from, to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockCounselingRepo) ListStaleWaiting(_ context.Context, cutoff time.Time) ([]model.CounselingSession, error) {
	var out []model.CounselingSession
	for _, s := range m.sessions {
		if (s.CounselorInWaitingRoom || s.StudentInWaitingRoom) && s.CallStartedAt == nil && s.EndsAt().Before(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockCounselingRepo) OpenParticipation(_ context.Context, p *model.SessionParticipation) error {
	if p.ParticipationID == "" {
		m.seq++
		p.ParticipationID = fmt.Sprintf("part-%04d", m.seq)
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	m.participations = append(m.participations, p)
	return nil
}

func (m *mockCounselingRepo) GetOpenParticipation(_ context.Context, sessionID, userID string) (*model.SessionParticipation, error) {
	for _, p := range m.participations {
		if p.SessionID == sessionID && p.UserID == userID && p.LeftAt == nil {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCounselingRepo) CloseParticipation(_ context.Context, sessionID, userID string, leftAt time.Time) error {
	for _, p := range m.participations {
		if p.SessionID == sessionID && p.UserID == userID && p.LeftAt == nil {
			t := leftAt
			p.LeftAt = &t
		}
	}
	return nil
}

func (m *mockCounselingRepo) CloseAllParticipations(_ context.Context, userID string, leftAt time.Time) error {
	for _, p := range m.participations {
		if p.UserID == userID && p.LeftAt == nil {
			t := leftAt
			p.LeftAt = &t
		}
	}
	return nil
}

func (m *mockCounselingRepo) CloseSessionParticipations(_ context.Context, sessionID string, leftAt time.Time) error {
	for _, p := range m.participations {
		if p.SessionID == sessionID && p.LeftAt == nil {
			t := leftAt
			p.LeftAt = &t
		}
	}
	return nil
}

func (m *mockCounselingRepo) CreateFeedback(_ context.Context, fb *model.Feedback) error {
	if _, ok := m.feedbacks[fb.SessionID]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	if fb.FeedbackID == "" {
		m.seq++
		fb.FeedbackID = fmt.Sprintf("fb-%04d", m.seq)
	}
	m.feedbacks[fb.SessionID] = fb
	return nil
}

func (m *mockCounselingRepo) GetFeedbackBySession(_ context.Context, sessionID string) (*model.Feedback, error) {
	if fb, ok := m.feedbacks[sessionID]; ok {
		return fb, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	anns   map[string]*model.Announcement
	images []*model.AnnouncementImage
	users  map[string]*model.User
	seq    int
}

func newMockAnnouncementRepo(users map[string]*model.User) *mockAnnouncementRepo {
	return &mockAnnouncementRepo{anns: make(map[string]*model.Announcement), users: users}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	if a.AnnouncementID == "" {
		m.seq++
		a.AnnouncementID = fmt.Sprintf("ann-%04d", m.seq)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.anns[a.AnnouncementID] = a
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	a, ok := m.anns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a.Author = m.users[a.AuthorID]
	a.Images = nil
	for _, img := range m.images {
		if img.AnnouncementID == id {
			a.Images = append(a.Images, *img)
		}
	}
	sort.Slice(a.Images, func(i, j int) bool { return a.Images[i].DisplayOrder < a.Images[j].DisplayOrder })
	return a, nil
}

func (m *mockAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	if _, ok := m.anns[a.AnnouncementID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.anns[a.AnnouncementID] = a
	return nil
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.anns[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.anns, id)
	return nil
}

func (m *mockAnnouncementRepo) ListVisibleToStudent(_ context.Context, officeIDs []string, offset, limit int) ([]model.Announcement, int64, error) {
	member := make(map[string]bool, len(officeIDs))
	for _, id := range officeIDs {
		member[id] = true
	}
	var rows []model.Announcement
	for _, a := range m.anns {
		if a.IsPublic || (a.TargetOfficeID != nil && member[*a.TargetOfficeID]) {
			a.Author = m.users[a.AuthorID]
			rows = append(rows, *a)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return pageAnnouncements(rows, offset, limit)
}

func (m *mockAnnouncementRepo) ListByOffice(_ context.Context, officeID string, offset, limit int) ([]model.Announcement, int64, error) {
	var rows []model.Announcement
	for _, a := range m.anns {
		if a.IsPublic || (a.TargetOfficeID != nil && *a.TargetOfficeID == officeID) {
			a.Author = m.users[a.AuthorID]
			rows = append(rows, *a)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return pageAnnouncements(rows, offset, limit)
}

func pageAnnouncements(rows []model.Announcement, offset, limit int) ([]model.Announcement, int64, error) {
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (m *mockAnnouncementRepo) AddImage(_ context.Context, img *model.AnnouncementImage) error {
	if img.ImageID == "" {
		m.seq++
		img.ImageID = fmt.Sprintf("img-%04d", m.seq)
	}
	m.images = append(m.images, img)
	return nil
}

func (m *mockAnnouncementRepo) DeleteImage(_ context.Context, imageID string) error {
	for i, img := range m.images {
		if img.ImageID == imageID {
			m.images = append(m.images[:i], m.images[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) ListImagePaths(_ context.Context) ([]string, error) {
	var paths []string
	for _, img := range m.images {
		paths = append(paths, img.Path)
	}
	return paths, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	rows []*model.Notification
	seq  int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		m.seq++
		n.NotificationID = fmt.Sprintf("ntf-%04d", m.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, n)
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	for _, n := range m.rows {
		if n.NotificationID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) Update(_ context.Context, n *model.Notification) error {
	for i, row := range m.rows {
		if row.NotificationID == n.NotificationID {
			m.rows[i] = n
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i, n := range m.rows {
		if n.NotificationID == id && n.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) List(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var rows []model.Notification
	for _, n := range m.rows {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		rows = append(rows, *n)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	total := int64(len(rows))
	if offset >= len(rows) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) FindStackable(_ context.Context, userID, inquiryID string, since time.Time) (*model.Notification, error) {
	var best *model.Notification
	for _, n := range m.rows {
		if n.UserID != userID || n.IsRead || n.InquiryID == nil || *n.InquiryID != inquiryID {
			continue
		}
		if !model.IsStackableType(n.NotificationType) || n.CreatedAt.Before(since) {
			continue
		}
		if best == nil || n.CreatedAt.After(best.CreatedAt) {
			best = n
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockNotificationRepo) FindCounselingStack(_ context.Context, userID, actorName string, since time.Time) (*model.Notification, error) {
	var best *model.Notification
	for _, n := range m.rows {
		if n.UserID != userID || n.IsRead || n.NotificationType != model.NotifyCounseling {
			continue
		}
		if !strings.Contains(n.Message, actorName) || n.CreatedAt.Before(since) {
			continue
		}
		if best == nil || n.CreatedAt.After(best.CreatedAt) {
			best = n
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) (int64, error) {
	for _, n := range m.rows {
		if n.NotificationID == id && n.UserID == userID && !n.IsRead {
			n.IsRead = true
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var affected int64
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) MarkInquiryRead(_ context.Context, userID, inquiryID string) (int64, error) {
	var affected int64
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead && n.InquiryID != nil && *n.InquiryID == inquiryID &&
			model.IsStackableType(n.NotificationType) {
			n.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*model.Notification
	var deleted int64
	for _, n := range m.rows {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	m.rows = kept
	return deleted, nil
}

// ── Mock VerificationRepository ──

type mockVerificationRepo struct {
	tokens []*model.VerificationToken
	seq    int
}

func newMockVerificationRepo() *mockVerificationRepo {
	return &mockVerificationRepo{}
}

func (m *mockVerificationRepo) Create(_ context.Context, t *model.VerificationToken) error {
	if t.TokenID == "" {
		m.seq++
		t.TokenID = fmt.Sprintf("vt-%04d", m.seq)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.tokens = append(m.tokens, t)
	return nil
}

func (m *mockVerificationRepo) GetByTokenHash(_ context.Context, tokenHash string) (*model.VerificationToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVerificationRepo) GetLatestByUser(_ context.Context, userID, purpose string) (*model.VerificationToken, error) {
	var best *model.VerificationToken
	for _, t := range m.tokens {
		if t.UserID != userID || t.Purpose != purpose {
			continue
		}
		if best == nil || t.CreatedAt.After(best.CreatedAt) {
			best = t
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockVerificationRepo) Update(_ context.Context, t *model.VerificationToken) error {
	for i, row := range m.tokens {
		if row.TokenID == t.TokenID {
			m.tokens[i] = t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockVerificationRepo) InvalidateByUser(_ context.Context, userID, purpose string) error {
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.Purpose == purpose && t.UsedAt == nil {
			used := now
			t.UsedAt = &used
		}
	}
	return nil
}

// ── Mock AuditRepository ──

type mockAuditRepo struct {
	audits       []*model.AuditLog
	studentActs  []*model.StudentActivityLog
	superActs    []*model.SuperAdminActivityLog
	officeLogins []*model.OfficeLoginLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) AppendAudit(_ context.Context, row *model.AuditLog) error {
	m.audits = append(m.audits, row)
	return nil
}

func (m *mockAuditRepo) AppendStudentActivity(_ context.Context, row *model.StudentActivityLog) error {
	m.studentActs = append(m.studentActs, row)
	return nil
}

func (m *mockAuditRepo) AppendSuperAdminActivity(_ context.Context, row *model.SuperAdminActivityLog) error {
	m.superActs = append(m.superActs, row)
	return nil
}

func (m *mockAuditRepo) OpenOfficeLogin(_ context.Context, row *model.OfficeLoginLog) error {
	m.officeLogins = append(m.officeLogins, row)
	return nil
}

func (m *mockAuditRepo) CloseLatestOfficeLogin(_ context.Context, officeAdminID string, at time.Time) error {
	return nil
}

func (m *mockAuditRepo) ListAudit(_ context.Context, page, pageSize int) ([]model.AuditLog, int64, error) {
	out := make([]model.AuditLog, 0, len(m.audits))
	for _, row := range m.audits {
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (m *mockAuditRepo) ListStudentActivity(_ context.Context, studentID string, page, pageSize int) ([]model.StudentActivityLog, int64, error) {
	var out []model.StudentActivityLog
	for _, row := range m.studentActs {
		if studentID == "" || (row.StudentID != nil && *row.StudentID == studentID) {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockAuditRepo) ListOfficeLogins(_ context.Context, officeAdminID string, page, pageSize int) ([]model.OfficeLoginLog, int64, error) {
	var out []model.OfficeLoginLog
	for _, row := range m.officeLogins {
		if officeAdminID == "" || row.OfficeAdminID == officeAdminID {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockAuditRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// ── Mock SettingsRepository ──

type mockSettingsRepo struct {
	rows map[string]*model.SystemSetting
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{rows: make(map[string]*model.SystemSetting)}
}

func (m *mockSettingsRepo) Get(_ context.Context, key string) (*model.SystemSetting, error) {
	if s, ok := m.rows[key]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingsRepo) List(_ context.Context) ([]model.SystemSetting, error) {
	var out []model.SystemSetting
	for _, s := range m.rows {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettingKey < out[j].SettingKey })
	return out, nil
}

func (m *mockSettingsRepo) Upsert(_ context.Context, s *model.SystemSetting) error {
	s.UpdatedAt = time.Now()
	m.rows[s.SettingKey] = s
	return nil
}

// ── 测试环境装配 ──

type testEnv struct {
	repo          *repository.Repository
	users         *mockUserRepo
	students      *mockStudentRepo
	campuses      *mockCampusRepo
	departments   *mockDepartmentRepo
	offices       *mockOfficeRepo
	concerns      *mockConcernRepo
	inquiries     *mockInquiryRepo
	counseling    *mockCounselingRepo
	announcements *mockAnnouncementRepo
	notifications *mockNotificationRepo
	verifications *mockVerificationRepo
	audits        *mockAuditRepo
	settings      *mockSettingsRepo
	emitter       *recordingEmitter
	cfg           *config.Config
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	students := newMockStudentRepo()
	offices := newMockOfficeRepo(users.byID)
	concerns := newMockConcernRepo()

	env := &testEnv{
		users:         users,
		students:      students,
		campuses:      newMockCampusRepo(),
		departments:   newMockDepartmentRepo(),
		offices:       offices,
		concerns:      concerns,
		inquiries:     newMockInquiryRepo(students.byID, offices.offices, users.byID, concerns.types),
		counseling:    newMockCounselingRepo(students.byID, offices.offices, users.byID),
		announcements: newMockAnnouncementRepo(users.byID),
		notifications: newMockNotificationRepo(),
		verifications: newMockVerificationRepo(),
		audits:        newMockAuditRepo(),
		settings:      newMockSettingsRepo(),
		emitter:       &recordingEmitter{},
		cfg:           testConfig(),
	}
	env.repo = &repository.Repository{
		User:         env.users,
		Student:      env.students,
		Campus:       env.campuses,
		Department:   env.departments,
		Office:       env.offices,
		Concern:      env.concerns,
		Inquiry:      env.inquiries,
		Counseling:   env.counseling,
		Announcement: env.announcements,
		Notification: env.notifications,
		Verification: env.verifications,
		Audit:        env.audits,
		Settings:     env.settings,
	}
	return env
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL:      "http://localhost:8080",
			AssetVersion: "test",
		},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  7 * 24 * time.Hour,
			RefreshTokenTTLRemember: 30 * 24 * time.Hour,
			VerifyTokenTTL:          24 * time.Hour,
			VerifyResendAfter:       5 * time.Minute,
		},
	}
}

func (e *testEnv) deps() Deps {
	return Deps{
		Repo:    e.repo,
		JWT:     jwt.NewManager(&e.cfg.Auth),
		Mailer:  mailer.NewMailer(&config.MailConfig{}, zap.NewNop()),
		Emitter: e.emitter,
		Config:  e.cfg,
		Logger:  zap.NewNop(),
	}
}

func (e *testEnv) services() (AuditService, NotificationService) {
	audit := NewAuditService(e.repo, zap.NewNop())
	notify := NewNotificationService(e.repo, e.emitter, e.cfg, zap.NewNop())
	return audit, notify
}

// ── 测试数据工厂 ──

func (e *testEnv) seedCampus(id, name string) *model.Campus {
	c := &model.Campus{CampusID: id, Name: name, Code: strings.ToUpper(id), IsActive: true}
	e.campuses.campuses[id] = c
	return c
}

func (e *testEnv) seedOffice(id, campusID, name string, supportsVideo bool) *model.Office {
	o := &model.Office{OfficeID: id, CampusID: campusID, Name: name, SupportsVideo: supportsVideo}
	e.offices.offices[id] = o
	return o
}

func (e *testEnv) seedUser(id, role, firstName, lastName string, campusID *string) *model.User {
	u := &model.User{
		UserID:        id,
		Role:          role,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         id + "@test.edu",
		IsActive:      true,
		EmailVerified: true,
		CampusID:      campusID,
	}
	e.users.byID[id] = u
	return u
}

func (e *testEnv) seedStudent(userID, studentID, campusID string) *model.Student {
	u := e.seedUser(userID, model.RoleStudent, "学生", userID, nil)
	s := &model.Student{
		StudentID:     studentID,
		UserID:        userID,
		StudentNumber: "2024-0001",
		CampusID:      campusID,
		User:          u,
	}
	e.students.byID[studentID] = s
	return s
}

func (e *testEnv) seedOfficeAdmin(userID, officeID string) *model.OfficeAdmin {
	e.seedUser(userID, model.RoleOfficeAdmin, "管理员", userID, nil)
	a := &model.OfficeAdmin{OfficeAdminID: "oa-" + userID, UserID: userID, OfficeID: officeID}
	e.offices.admins = append(e.offices.admins, a)
	return a
}

// [自证通过] internal/service/mock_repos_test.go
