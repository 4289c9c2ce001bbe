package model

import (
	"fmt"
	"time"
)

// AssignableKind 排班分配对象类型
type AssignableKind string

const (
	AssignableUser     AssignableKind = "user"
	AssignableArea     AssignableKind = "area"
	AssignableCampaign AssignableKind = "campaign"
)

// ParseAssignableKind 解析对象类型，仅接受 user | area | campaign
func ParseAssignableKind(s string) (AssignableKind, error) {
	switch k := AssignableKind(s); k {
	case AssignableUser, AssignableArea, AssignableCampaign:
		return k, nil
	}
	return "", fmt.Errorf("未知的分配对象类型: %q", s)
}

// AssignableRef 排班分配对象（类型 + ID 组成复合键）
type AssignableRef struct {
	Kind AssignableKind
	ID   string
}

func (r AssignableRef) String() string { return string(r.Kind) + ":" + r.ID }

// ScheduleAssignment 排班分配历史表，对应 schedule_assignments
// [ValidFrom, ValidUntil] 为闭区间，ValidUntil 为 nil 表示无限期
type ScheduleAssignment struct {
	AssignmentID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ScheduleID     string         `gorm:"type:uuid;not null"                             json:"schedule_id"`
	AssignableType AssignableKind `gorm:"type:varchar(20);not null"                      json:"assignable_type"`
	AssignableID   string         `gorm:"type:uuid;not null"                             json:"assignable_id"`
	ValidFrom      time.Time      `gorm:"type:date;not null"                             json:"valid_from"`
	ValidUntil     *time.Time     `gorm:"type:date"                                      json:"valid_until,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ScheduleAssignment) TableName() string { return "schedule_assignments" }

// Ref 返回分配对象复合键
func (a *ScheduleAssignment) Ref() AssignableRef {
	return AssignableRef{Kind: a.AssignableType, ID: a.AssignableID}
}

// ActiveOn 判断 day 是否落在有效区间内
func (a *ScheduleAssignment) ActiveOn(day time.Time) bool {
	day = DateOnly(day)
	if DateOnly(a.ValidFrom).After(day) {
		return false
	}
	return a.ValidUntil == nil || !DateOnly(*a.ValidUntil).Before(day)
}
