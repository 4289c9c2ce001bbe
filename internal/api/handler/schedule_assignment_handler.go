package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/dto"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/service"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/pkg/response"
)

const dateLayout = "2006-01-02"

// ScheduleAssignmentHandler 手动班次分配 HTTP 处理器
type ScheduleAssignmentHandler struct {
	assignSvc service.ScheduleAssignmentService
	loc       *time.Location
	now       func() time.Time
}

// NewScheduleAssignmentHandler 创建 ScheduleAssignmentHandler
func NewScheduleAssignmentHandler(assignSvc service.ScheduleAssignmentService, loc *time.Location) *ScheduleAssignmentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleAssignmentHandler{assignSvc: assignSvc, loc: loc, now: time.Now}
}

// Assign 为员工/区域/活动分配班次
// POST /api/v1/schedule-assignments
func (h *ScheduleAssignmentHandler) Assign(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return
	}

	effective, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		response.BadRequest(c, 18001, "effective_date 格式应为 YYYY-MM-DD")
		return
	}

	ref := model.AssignableRef{Kind: model.AssignableKind(req.AssignableType), ID: req.AssignableID}
	assignment, changed, err := h.assignSvc.Assign(c.Request.Context(), ref, req.ScheduleID, effective, &userID)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	resp := &dto.AssignScheduleResponse{Assignment: toAssignmentResponse(assignment), Changed: changed}
	if changed {
		response.Created(c, resp)
		return
	}
	response.OK(c, resp)
}

// Active 查询某日生效的分配
// GET /api/v1/schedule-assignments/active?assignable_type=user&assignable_id=xxx&date=2025-01-01
func (h *ScheduleAssignmentHandler) Active(c *gin.Context) {
	ref, ok := h.bindRef(c)
	if !ok {
		return
	}

	date := model.DateOnly(h.now().In(h.loc))
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			response.BadRequest(c, 18001, "date 格式应为 YYYY-MM-DD")
			return
		}
		date = d
	}

	assignment, err := h.assignSvc.ActiveAt(c.Request.Context(), ref, date)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}
	response.OK(c, toAssignmentResponse(assignment))
}

// History 分配历史（按 valid_from 升序）
// GET /api/v1/schedule-assignments/history?assignable_type=area&assignable_id=xxx
func (h *ScheduleAssignmentHandler) History(c *gin.Context) {
	ref, ok := h.bindRef(c)
	if !ok {
		return
	}

	list, err := h.assignSvc.History(c.Request.Context(), ref)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	out := make([]dto.ScheduleAssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toAssignmentResponse(&list[i]))
	}
	response.OK(c, out)
}

func (h *ScheduleAssignmentHandler) bindRef(c *gin.Context) (model.AssignableRef, bool) {
	var q dto.AssignmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败: "+err.Error())
		return model.AssignableRef{}, false
	}
	kind, err := model.ParseAssignableKind(q.AssignableType)
	if err != nil {
		response.BadRequest(c, 18002, err.Error())
		return model.AssignableRef{}, false
	}
	return model.AssignableRef{Kind: kind, ID: q.AssignableID}, true
}

func (h *ScheduleAssignmentHandler) handleAssignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentScheduleNotFound):
		response.NotFound(c, 18003, "班次不存在或已停用")
	case errors.Is(err, service.ErrAssignmentTargetNotFound):
		response.NotFound(c, 18004, "分配对象不存在或已停用")
	case errors.Is(err, service.ErrNoActiveAssignment):
		response.NotFound(c, 18005, "该日期无生效的班次分配")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

func toAssignmentResponse(a *model.ScheduleAssignment) dto.ScheduleAssignmentResponse {
	resp := dto.ScheduleAssignmentResponse{
		ID:             a.AssignmentID,
		ScheduleID:     a.ScheduleID,
		AssignableType: string(a.AssignableType),
		AssignableID:   a.AssignableID,
		ValidFrom:      a.ValidFrom.Format(dateLayout),
	}
	if a.ValidUntil != nil {
		s := a.ValidUntil.Format(dateLayout)
		resp.ValidUntil = &s
	}
	return resp
}
