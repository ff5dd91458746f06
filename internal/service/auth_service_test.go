package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"piyu-guide/backend/internal/dto"
	"piyu-guide/backend/internal/model"
	apperrors "piyu-guide/backend/pkg/errors"
	"piyu-guide/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupAuthService() (AuthService, *testEnv) {
	env := newTestEnv()
	audit, notify := env.services()
	svc := NewAuthService(env.deps(), audit, notify)
	return svc, env
}

func seedAuthWorld(env *testEnv) {
	env.seedCampus("campus-a", "主校区")
	env.seedCampus("campus-b", "分校区")
	env.departments.depts["dept-a"] = &model.Department{
		DepartmentID: "dept-a", CampusID: "campus-a", Name: "计算机学院", IsActive: true,
	}
	env.departments.depts["dept-b"] = &model.Department{
		DepartmentID: "dept-b", CampusID: "campus-b", Name: "外语学院", IsActive: true,
	}
	env.departments.depts["dept-off"] = &model.Department{
		DepartmentID: "dept-off", CampusID: "campus-a", Name: "停办学院", IsActive: false,
	}
}

func validRegister() *dto.RegisterStudentRequest {
	return &dto.RegisterStudentRequest{
		FirstName:     "李",
		LastName:      "明",
		Email:         "li.ming@test.edu",
		Password:      "passw0rd!",
		StudentNumber: "2025-0001",
		CampusID:      "campus-a",
		DepartmentID:  "dept-a",
		YearLevel:     2,
		Section:       "a",
	}
}

// seedLoginUser 带真实 bcrypt 散列的可登录用户
func (e *testEnv) seedLoginUser(id, role, password string, campusID *string) *model.User {
	u := e.seedUser(id, role, "用户", id, campusID)
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.PasswordHash = string(hash)
	return u
}

func seedVerifyToken(env *testEnv, userID, rawToken, code string, expiresAt time.Time) *model.VerificationToken {
	t := &model.VerificationToken{
		UserID:      userID,
		Purpose:     verifyPurpose,
		TokenHash:   sha256Hex(rawToken),
		CodeHash:    sha256Hex(code),
		MaxAttempts: 5,
		ExpiresAt:   expiresAt,
	}
	env.verifications.Create(context.Background(), t)
	return t
}

// ── RegisterStudent ──

func TestAuthService_RegisterStudent_Success(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)

	resp, err := svc.RegisterStudent(context.Background(), validRegister(), "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("注册应成功: %v", err)
	}
	if resp.Role != model.RoleStudent {
		t.Errorf("角色应为 student，实际 %s", resp.Role)
	}
	if resp.EmailVerified {
		t.Error("新注册账号邮箱不应已验证")
	}
	if resp.Student == nil {
		t.Fatal("响应应携带学生档案")
	}
	if resp.Student.Section != "A" {
		t.Errorf("班级代号应归一为大写，实际 %q", resp.Student.Section)
	}
	if resp.Student.DepartmentName != "计算机学院" {
		t.Errorf("院系名称应冗余入档案，实际 %q", resp.Student.DepartmentName)
	}

	user, err := env.users.GetByEmail(context.Background(), "li.ming@test.edu")
	if err != nil {
		t.Fatal("用户应已落库")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("passw0rd!")) != nil {
		t.Error("密码应以 bcrypt 散列存储")
	}

	// 注册即签发验证令牌（只存摘要）
	if len(env.verifications.tokens) != 1 {
		t.Fatalf("应签发 1 个验证令牌，实际 %d", len(env.verifications.tokens))
	}
	tok := env.verifications.tokens[0]
	if len(tok.TokenHash) != 64 || len(tok.CodeHash) != 64 {
		t.Error("令牌与验证码应以 sha256 摘要存储")
	}
	if tok.MaxAttempts != 5 {
		t.Errorf("最大尝试次数应为 5，实际 %d", tok.MaxAttempts)
	}
	if len(env.audits.studentActs) != 1 {
		t.Error("注册应落一行学生活动日志")
	}
}

func TestAuthService_RegisterStudent_Validation(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	env.cfg.Auth.EmailDomain = "test.edu"
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(r *dto.RegisterStudentRequest)
		want   error
	}{
		{"外部邮箱", func(r *dto.RegisterStudentRequest) { r.Email = "li.ming@gmail.com" }, ErrEmailDomain},
		{"学号缺分隔符", func(r *dto.RegisterStudentRequest) { r.StudentNumber = "20250001" }, ErrInvalidStudentNum},
		{"学号位数错误", func(r *dto.RegisterStudentRequest) { r.StudentNumber = "202-50001" }, ErrInvalidStudentNum},
		{"密码过短", func(r *dto.RegisterStudentRequest) { r.Password = "pw1!" }, ErrWeakPassword},
		{"密码缺数字", func(r *dto.RegisterStudentRequest) { r.Password = "password!" }, ErrWeakPassword},
		{"密码缺符号", func(r *dto.RegisterStudentRequest) { r.Password = "passw0rd" }, ErrWeakPassword},
		{"密码缺字母", func(r *dto.RegisterStudentRequest) { r.Password = "12345678!" }, ErrWeakPassword},
	}
	for _, tc := range cases {
		req := validRegister()
		tc.mutate(req)
		if _, err := svc.RegisterStudent(ctx, req, "", ""); !errors.Is(err, tc.want) {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, err)
		}
	}

	// 恰好 8 位且三类字符齐备通过策略
	req := validRegister()
	req.Password = "pass0rd!"
	if _, err := svc.RegisterStudent(ctx, req, "", ""); err != nil {
		t.Errorf("8 位合规密码应通过: %v", err)
	}
}

func TestAuthService_RegisterStudent_Uniqueness(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	if _, err := svc.RegisterStudent(ctx, validRegister(), "", ""); err != nil {
		t.Fatalf("首次注册应成功: %v", err)
	}

	dup := validRegister()
	dup.StudentNumber = "2025-0002"
	if _, err := svc.RegisterStudent(ctx, dup, "", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("重复邮箱期望 ErrEmailTaken，实际: %v", err)
	}

	dup = validRegister()
	dup.Email = "another@test.edu"
	if _, err := svc.RegisterStudent(ctx, dup, "", ""); !errors.Is(err, ErrStudentNumberTaken) {
		t.Errorf("重复学号期望 ErrStudentNumberTaken，实际: %v", err)
	}
}

func TestAuthService_RegisterStudent_DepartmentMismatch(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	cases := []struct {
		name   string
		deptID string
	}{
		{"跨校区院系", "dept-b"},
		{"停用院系", "dept-off"},
		{"不存在的院系", "dept-missing"},
	}
	for _, tc := range cases {
		req := validRegister()
		req.DepartmentID = tc.deptID
		if _, err := svc.RegisterStudent(ctx, req, "", ""); !errors.Is(err, ErrDepartmentMismatch) {
			t.Errorf("%s: 期望 ErrDepartmentMismatch，实际 %v", tc.name, err)
		}
	}
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	env.seedLoginUser("user-a", model.RoleStudent, "passw0rd!", nil)
	env.students.byID["stu-a"] = &model.Student{
		StudentID: "stu-a", UserID: "user-a", StudentNumber: "2024-1111", CampusID: "campus-a",
	}

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "user-a@test.edu", Password: "passw0rd!",
	}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应签发 Token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn 应为访问令牌 TTL 秒数，实际 %d", resp.ExpiresIn)
	}
	if resp.User.Student == nil || resp.User.Student.StudentNumber != "2024-1111" {
		t.Error("学生登录响应应携带学生档案")
	}
	if !env.users.byID["user-a"].IsOnline {
		t.Error("登录应置在线标志")
	}
	last := env.audits.audits[len(env.audits.audits)-1]
	if last.Action != "login" || !last.Success {
		t.Error("登录成功应落成功审计行")
	}
}

func TestAuthService_Login_OfficeAdmin(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	env.seedOffice("office-a", "campus-a", "注册办公室", false)
	env.seedOfficeAdmin("admin-1", "office-a")
	hash, _ := bcrypt.GenerateFromPassword([]byte("passw0rd!"), bcrypt.MinCost)
	env.users.byID["admin-1"].PasswordHash = string(hash)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "admin-1@test.edu", Password: "passw0rd!",
	}, "", "")
	if err != nil {
		t.Fatalf("办公室管理员登录应成功: %v", err)
	}
	if resp.User.OfficeID != "office-a" {
		t.Errorf("响应应携带办公室归属，实际 %q", resp.User.OfficeID)
	}
	if len(env.audits.officeLogins) != 1 {
		t.Error("办公室管理员登录应开一行登录日志")
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()
	campusA := "campus-a"

	env.seedLoginUser("user-a", model.RoleStudent, "passw0rd!", nil)

	locked := env.seedLoginUser("user-locked", model.RoleStudent, "passw0rd!", nil)
	locked.AccountLocked = true
	reason := "违规"
	locked.LockReason = &reason

	disabled := env.seedLoginUser("user-off", model.RoleStudent, "passw0rd!", nil)
	disabled.IsActive = false

	unverified := env.seedLoginUser("user-new", model.RoleStudent, "passw0rd!", nil)
	unverified.EmailVerified = false

	// 办公室管理员无归属行
	env.seedLoginUser("admin-lost", model.RoleOfficeAdmin, "passw0rd!", nil)

	// 校区管理员无校区归属
	env.seedLoginUser("super-lost", model.RoleSuperAdmin, "passw0rd!", nil)
	env.seedLoginUser("super-ok", model.RoleSuperAdmin, "passw0rd!", &campusA)

	cases := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"未知邮箱", "nobody@test.edu", "passw0rd!", ErrInvalidCredentials},
		{"密码错误", "user-a@test.edu", "wrong-pw", ErrInvalidCredentials},
		{"账号锁定", "user-locked@test.edu", "passw0rd!", ErrAccountLocked},
		{"账号停用", "user-off@test.edu", "passw0rd!", ErrAccountDisabled},
		{"邮箱未验证", "user-new@test.edu", "passw0rd!", ErrEmailNotVerified},
		{"办公室归属缺失", "admin-lost@test.edu", "passw0rd!", ErrOfficeMissing},
		{"校区归属缺失", "super-lost@test.edu", "passw0rd!", ErrCampusMissing},
	}
	for _, tc := range cases {
		if _, err := svc.Login(ctx, &dto.LoginRequest{Email: tc.email, Password: tc.password}, "", ""); !errors.Is(err, tc.want) {
			t.Errorf("%s: 期望 %v，实际 %v", tc.name, tc.want, err)
		}
	}
	// 每次失败尝试各落一行失败审计
	if len(env.audits.audits) != len(cases) {
		t.Errorf("应有 %d 行审计，实际 %d", len(cases), len(env.audits.audits))
	}
	for i, row := range env.audits.audits {
		if row.Success {
			t.Errorf("第 %d 行审计应标记失败", i+1)
		}
	}

	// 有校区归属的校区管理员可登录
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "super-ok@test.edu", Password: "passw0rd!"}, "", ""); err != nil {
		t.Errorf("校区管理员登录应成功: %v", err)
	}
}

// ── VerifyEmail ──

func TestAuthService_VerifyEmail_ByToken(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	user := env.seedUser("user-a", model.RoleStudent, "学生", "甲", nil)
	user.EmailVerified = false
	seedVerifyToken(env, "user-a", "raw-token", "123456", time.Now().Add(time.Hour))

	if err := svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: "no-such-token"}); !errors.Is(err, ErrVerificationInvalid) {
		t.Errorf("未知令牌期望 ErrVerificationInvalid，实际: %v", err)
	}
	if err := svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: "raw-token"}); err != nil {
		t.Fatalf("令牌验证应成功: %v", err)
	}
	if !env.users.byID["user-a"].EmailVerified {
		t.Error("验证后 email_verified 应打开")
	}
	if env.verifications.tokens[0].UsedAt == nil {
		t.Error("消费后令牌应置 used_at")
	}

	// 已用令牌不可复用
	if err := svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Token: "raw-token"}); !errors.Is(err, ErrVerificationExpired) {
		t.Errorf("已用令牌期望 ErrVerificationExpired，实际: %v", err)
	}
}

func TestAuthService_VerifyEmail_ExpiredToken(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	env.seedUser("user-a", model.RoleStudent, "学生", "甲", nil)
	seedVerifyToken(env, "user-a", "raw-token", "123456", time.Now().Add(-time.Minute))

	err := svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{Token: "raw-token"})
	if !errors.Is(err, ErrVerificationExpired) {
		t.Errorf("过期令牌期望 ErrVerificationExpired，实际: %v", err)
	}
}

func TestAuthService_VerifyEmail_ByCode_AttemptBudget(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	user := env.seedUser("user-a", model.RoleStudent, "学生", "甲", nil)
	user.EmailVerified = false
	tok := seedVerifyToken(env, "user-a", "raw-token", "123456", time.Now().Add(time.Hour))

	req := &dto.VerifyEmailRequest{Email: "user-a@test.edu", Code: "000000"}

	// 前 4 次错误计数递增后仍可重试
	for i := 1; i <= 4; i++ {
		if err := svc.VerifyEmail(ctx, req); !errors.Is(err, ErrVerificationInvalid) {
			t.Fatalf("第 %d 次错误验证码期望 ErrVerificationInvalid，实际: %v", i, err)
		}
	}
	if tok.Attempts != 4 {
		t.Errorf("尝试计数应为 4，实际 %d", tok.Attempts)
	}

	// 第 5 次错误耗尽预算
	if err := svc.VerifyEmail(ctx, req); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("耗尽预算期望 ErrTooManyAttempts，实际: %v", err)
	}
	// 预算耗尽后正确验证码也不再接受
	if err := svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "user-a@test.edu", Code: "123456"}); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("预算耗尽后期望 ErrTooManyAttempts，实际: %v", err)
	}

	// 重新签发后正确验证码通过
	seedVerifyToken(env, "user-a", "raw-token-2", "654321", time.Now().Add(time.Hour))
	if err := svc.VerifyEmail(ctx, &dto.VerifyEmailRequest{Email: "user-a@test.edu", Code: "654321"}); err != nil {
		t.Fatalf("新令牌验证码应通过: %v", err)
	}
	if !env.users.byID["user-a"].EmailVerified {
		t.Error("验证后 email_verified 应打开")
	}
}

func TestAuthService_VerifyEmail_NeitherProvided(t *testing.T) {
	svc, _ := setupAuthService()
	if err := svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{}); !errors.Is(err, ErrVerificationInvalid) {
		t.Errorf("空请求期望 ErrVerificationInvalid，实际: %v", err)
	}
}

// ── ResendVerification ──

func TestAuthService_ResendVerification(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	// 不暴露邮箱是否存在
	if err := svc.ResendVerification(ctx, "nobody@test.edu"); err != nil {
		t.Errorf("未知邮箱应静默返回 nil: %v", err)
	}

	// 已验证账号无需重发
	env.seedUser("user-done", model.RoleStudent, "学生", "乙", nil)
	if err := svc.ResendVerification(ctx, "user-done@test.edu"); err != nil {
		t.Errorf("已验证账号应静默返回 nil: %v", err)
	}

	user := env.seedUser("user-a", model.RoleStudent, "学生", "甲", nil)
	user.EmailVerified = false
	fresh := seedVerifyToken(env, "user-a", "raw-token", "123456", time.Now().Add(time.Hour))

	// 刚签发过，限流
	if err := svc.ResendVerification(ctx, "user-a@test.edu"); !errors.Is(err, ErrResendTooSoon) {
		t.Errorf("间隔未到期望 ErrResendTooSoon，实际: %v", err)
	}

	// 超过间隔：旧令牌作废、新令牌签发；测试环境无邮件通道
	fresh.CreatedAt = time.Now().Add(-10 * time.Minute)
	err := svc.ResendVerification(ctx, "user-a@test.edu")
	if !errors.Is(err, apperrors.ErrEmailSendFailure) {
		t.Errorf("无邮件通道时期望 ErrEmailSendFailure，实际: %v", err)
	}
	if fresh.UsedAt == nil {
		t.Error("重发应作废历史令牌")
	}
	if len(env.verifications.tokens) != 2 {
		t.Errorf("应新签发 1 个令牌，实际令牌数 %d", len(env.verifications.tokens))
	}
}

// ── 锁定与解锁 ──

func TestAuthService_LockUnlockAccount(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()
	campusA := "campus-a"

	env.seedUser("user-a", model.RoleStudent, "学生", "甲", nil)
	env.seedUser("super-1", model.RoleSuperAdmin, "管理", "员", &campusA)

	if err := svc.LockAccount(ctx, "super-1", model.RoleSuperAdmin, "user-missing", "违规", "", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("锁定不存在用户期望 ErrUserNotFound，实际: %v", err)
	}

	if err := svc.LockAccount(ctx, "super-1", model.RoleSuperAdmin, "user-a", "发布不当内容", "127.0.0.1", "test-agent"); err != nil {
		t.Fatalf("LockAccount 应成功: %v", err)
	}
	user := env.users.byID["user-a"]
	if !user.AccountLocked || user.LockReason == nil || *user.LockReason != "发布不当内容" {
		t.Error("锁定标志与原因应写入用户行")
	}
	if user.LockedBy == nil || *user.LockedBy != "super-1" {
		t.Error("锁定操作者应写入用户行")
	}

	if err := svc.UnlockAccount(ctx, "super-1", model.RoleSuperAdmin, "user-a", "申诉通过", "", ""); err != nil {
		t.Fatalf("UnlockAccount 应成功: %v", err)
	}
	if user.AccountLocked || user.LockReason != nil || user.LockedBy != nil {
		t.Error("解锁应清空锁定字段")
	}

	// 锁定历史每次操作各追加一行
	if len(env.users.lockHistory) != 2 {
		t.Fatalf("锁定历史应有 2 行，实际 %d", len(env.users.lockHistory))
	}
	if env.users.lockHistory[0].Action != "lock" || env.users.lockHistory[1].Action != "unlock" {
		t.Error("锁定历史动作顺序应为 lock、unlock")
	}
	if len(env.audits.superActs) != 2 {
		t.Error("锁定与解锁各落一行管理员活动日志")
	}
}

// ── Me ──

func TestAuthService_Me(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	ctx := context.Background()

	if _, err := svc.Me(ctx, "user-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}

	env.seedStudent("stu-user-1", "stu-1", "campus-a")
	resp, err := svc.Me(ctx, "stu-user-1")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if resp.Student == nil || resp.Student.StudentID != "stu-1" {
		t.Error("学生 Me 响应应携带学生档案")
	}

	env.seedOffice("office-a", "campus-a", "注册办公室", false)
	env.seedOfficeAdmin("admin-1", "office-a")
	resp, err = svc.Me(ctx, "admin-1")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if resp.OfficeID != "office-a" || resp.OfficeName != "注册办公室" {
		t.Errorf("管理员 Me 响应应携带办公室归属，实际 %q/%q", resp.OfficeID, resp.OfficeName)
	}
}

// ── Refresh / Logout（Redis 缺席降级） ──

func TestAuthService_RefreshAndLogout_WithoutRedis(t *testing.T) {
	svc, env := setupAuthService()
	seedAuthWorld(env)
	env.seedLoginUser("user-a", model.RoleStudent, "passw0rd!", nil)
	env.students.byID["stu-a"] = &model.Student{
		StudentID: "stu-a", UserID: "user-a", StudentNumber: "2024-1111", CampusID: "campus-a",
	}
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Email: "user-a@test.edu", Password: "passw0rd!",
	}, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}

	// Redis 未接入时刷新跳过黑名单校验，仍应换发新 Token 对
	rotated, err := svc.Refresh(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Error("刷新应换发完整 Token 对")
	}

	mgr := jwt.NewManager(&env.cfg.Auth)
	claims, err := mgr.ParseToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("新访问令牌应可解析: %v", err)
	}
	if err := svc.Logout(ctx, claims, "127.0.0.1", "test-agent"); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if env.users.byID["user-a"].IsOnline {
		t.Error("登出应置离线标志")
	}
}

// [自证通过] internal/service/auth_service_test.go
