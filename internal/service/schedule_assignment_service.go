package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/repository"
)

// ── 排班分配业务错误 ──

var (
	ErrAssignmentScheduleNotFound = errors.New("班次不存在或已停用")
	ErrAssignmentTargetNotFound   = errors.New("分配对象不存在或已停用")
	ErrNoActiveAssignment         = errors.New("该日期无生效的班次分配")
)

// ScheduleAssignmentService 排班分配历史维护
//
// 区间约定：
//   - 有效区间 [valid_from, valid_until] 为闭区间，valid_until 为空表示无限期
//   - 被替换的分配关闭到生效日前一天，相邻区间不共享日期
//   - 同一天内替换时旧记录区间为空（valid_until < valid_from），任何日期都不生效
//   - 若生效日之后已有更晚的分配，新记录截止到其开始前一天
type ScheduleAssignmentService interface {
	// Assign 为对象分配班次（独立事务）；changed=false 表示已是该班次
	Assign(ctx context.Context, ref model.AssignableRef, scheduleID string, effectiveDate time.Time, actor *string) (assignment *model.ScheduleAssignment, changed bool, err error)
	// ActiveAt 查询某日生效的分配
	ActiveAt(ctx context.Context, ref model.AssignableRef, date time.Time) (*model.ScheduleAssignment, error)
	// History 按 valid_from 升序返回全部分配
	History(ctx context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error)
}

type scheduleAssignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleAssignmentService 创建 ScheduleAssignmentService 实例
func NewScheduleAssignmentService(repo *repository.Repository, logger *zap.Logger) ScheduleAssignmentService {
	return &scheduleAssignmentService{repo: repo, logger: logger}
}

func (s *scheduleAssignmentService) Assign(ctx context.Context, ref model.AssignableRef, scheduleID string, effectiveDate time.Time, actor *string) (*model.ScheduleAssignment, bool, error) {
	if _, err := s.repo.Catalog.GetActiveByID(ctx, model.CatalogSchedule, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrAssignmentScheduleNotFound
		}
		return nil, false, err
	}
	if err := s.checkTarget(ctx, ref); err != nil {
		return nil, false, err
	}

	var (
		assignment *model.ScheduleAssignment
		changed    bool
	)
	err := s.repo.Tx.Transaction(ctx, func(txRepo *repository.Repository) error {
		var txErr error
		assignment, changed, txErr = assignInTx(ctx, txRepo, ref, scheduleID, effectiveDate, actor)
		return txErr
	})
	if err != nil {
		s.logger.Error("班次分配失败，事务回滚",
			zap.String("assignable", ref.String()), zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, false, err
	}

	if changed {
		s.logger.Info("班次分配已更新",
			zap.String("assignable", ref.String()),
			zap.String("schedule_id", scheduleID),
			zap.String("valid_from", assignment.ValidFrom.Format(dateLayout)))
	}
	return assignment, changed, nil
}

func (s *scheduleAssignmentService) checkTarget(ctx context.Context, ref model.AssignableRef) error {
	var err error
	switch ref.Kind {
	case model.AssignableUser:
		_, err = s.repo.User.GetByID(ctx, ref.ID)
	case model.AssignableArea:
		_, err = s.repo.Catalog.GetActiveByID(ctx, model.CatalogArea, ref.ID)
	case model.AssignableCampaign:
		_, err = s.repo.Catalog.GetActiveByID(ctx, model.CatalogCampaign, ref.ID)
	default:
		return fmt.Errorf("%w: %s", ErrAssignmentTargetNotFound, ref.Kind)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssignmentTargetNotFound
	}
	return err
}

func (s *scheduleAssignmentService) ActiveAt(ctx context.Context, ref model.AssignableRef, date time.Time) (*model.ScheduleAssignment, error) {
	list, err := s.repo.ScheduleAssignment.ListByAssignable(ctx, ref)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ActiveOn(date) {
			return &list[i], nil
		}
	}
	return nil, ErrNoActiveAssignment
}

func (s *scheduleAssignmentService) History(ctx context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error) {
	return s.repo.ScheduleAssignment.ListByAssignable(ctx, ref)
}

// ────────────────────── assignInTx ──────────────────────

const dateLayout = "2006-01-02"

// assignInTx 在调用方事务内执行分配，导入流程与手动分配共用
func assignInTx(ctx context.Context, repo *repository.Repository, ref model.AssignableRef, scheduleID string, effectiveDate time.Time, actor *string) (*model.ScheduleAssignment, bool, error) {
	day := model.DateOnly(effectiveDate)

	current, err := repo.ScheduleAssignment.FindActiveAt(ctx, ref, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("查询当前分配失败: %w", err)
	}

	if current != nil {
		if current.ScheduleID == scheduleID {
			return current, false, nil
		}
		if err := repo.ScheduleAssignment.Close(ctx, current.AssignmentID, day.AddDate(0, 0, -1), actor); err != nil {
			return nil, false, fmt.Errorf("关闭原分配失败: %w", err)
		}
	}

	next := &model.ScheduleAssignment{
		ScheduleID:     scheduleID,
		AssignableType: ref.Kind,
		AssignableID:   ref.ID,
		ValidFrom:      day,
	}
	next.CreatedBy = actor

	later, err := repo.ScheduleAssignment.FindNextAfter(ctx, ref, day)
	switch {
	case err == nil:
		until := model.DateOnly(later.ValidFrom).AddDate(0, 0, -1)
		next.ValidUntil = &until
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("查询后续分配失败: %w", err)
	}

	if err := repo.ScheduleAssignment.Create(ctx, next); err != nil {
		return nil, false, fmt.Errorf("创建分配失败: %w", err)
	}
	return next, true, nil
}
