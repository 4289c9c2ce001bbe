package model

import "time"

// EmployeeProfile 员工档案表，对应 employee_profiles（与 users 一对一）
type EmployeeProfile struct {
	ProfileID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"profile_id"`
	UserID           string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	HireDate         *time.Time `gorm:"type:date"                                      json:"hire_date,omitempty"`
	EmployeeStatusID *string    `gorm:"type:uuid"                                      json:"employee_status_id,omitempty"`
	HireTypeID       *string    `gorm:"type:uuid"                                      json:"hire_type_id,omitempty"`
	ManagerID        *string    `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (EmployeeProfile) TableName() string { return "employee_profiles" }
