package dto

// ── 排班分配 ──

// AssignScheduleRequest 手动分配班次请求
type AssignScheduleRequest struct {
	AssignableType string `json:"assignable_type" binding:"required,oneof=user area campaign"`
	AssignableID   string `json:"assignable_id"   binding:"required,uuid"`
	ScheduleID     string `json:"schedule_id"     binding:"required,uuid"`
	EffectiveDate  string `json:"effective_date"  binding:"required"` // YYYY-MM-DD
}

// AssignmentQuery 按分配对象查询
type AssignmentQuery struct {
	AssignableType string `form:"assignable_type" binding:"required,oneof=user area campaign"`
	AssignableID   string `form:"assignable_id"   binding:"required,uuid"`
	Date           string `form:"date"` // 仅 active 查询使用，缺省为今天
}

// ScheduleAssignmentResponse 分配记录
type ScheduleAssignmentResponse struct {
	ID             string  `json:"id"`
	ScheduleID     string  `json:"schedule_id"`
	AssignableType string  `json:"assignable_type"`
	AssignableID   string  `json:"assignable_id"`
	ValidFrom      string  `json:"valid_from"`
	ValidUntil     *string `json:"valid_until"`
}

// AssignScheduleResponse 分配结果；Changed=false 表示已是该班次，未做变更
type AssignScheduleResponse struct {
	Assignment ScheduleAssignmentResponse `json:"assignment"`
	Changed    bool                       `json:"changed"`
}
