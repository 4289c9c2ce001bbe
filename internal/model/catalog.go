package model

// CatalogKind 组织目录类型
type CatalogKind string

const (
	CatalogSede           CatalogKind = "sede"
	CatalogCampaign       CatalogKind = "campaign"
	CatalogArea           CatalogKind = "area"
	CatalogPosition       CatalogKind = "position"
	CatalogSchedule       CatalogKind = "schedule"
	CatalogEmployeeStatus CatalogKind = "employee_status"
	CatalogHireType       CatalogKind = "hire_type"
)

// CatalogKinds 全部目录类型，按导入解析顺序排列
var CatalogKinds = []CatalogKind{
	CatalogSede,
	CatalogCampaign,
	CatalogArea,
	CatalogPosition,
	CatalogSchedule,
	CatalogEmployeeStatus,
	CatalogHireType,
}

// TableName 目录类型对应的物理表
func (k CatalogKind) TableName() string {
	switch k {
	case CatalogSede:
		return "sedes"
	case CatalogCampaign:
		return "campaigns"
	case CatalogArea:
		return "areas"
	case CatalogPosition:
		return "positions"
	case CatalogSchedule:
		return "work_schedules"
	case CatalogEmployeeStatus:
		return "employee_statuses"
	case CatalogHireType:
		return "hire_types"
	}
	return ""
}

// CatalogEntry 目录表通用行结构（七张目录表结构一致）
type CatalogEntry struct {
	ID       string  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string  `gorm:"type:varchar(120);not null"                              json:"name"`
	Code     *string `gorm:"type:varchar(40)"                                        json:"code,omitempty"`
	IsActive bool    `gorm:"not null;default:true"                                   json:"is_active"`
	SoftDeleteModel
}
