package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
)

const dateLayout = "2006-01-02"

// ScheduleAssignmentRepository 排班分配历史数据访问接口
// 日期参数按年月日比较，时分秒忽略
type ScheduleAssignmentRepository interface {
	// FindActiveAt 查找有效区间包含 day 的分配（事务内加行锁）
	FindActiveAt(ctx context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error)
	// FindNextAfter 查找 valid_from 晚于 day 的最早一条分配
	FindNextAfter(ctx context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error)
	Create(ctx context.Context, assignment *model.ScheduleAssignment) error
	// Close 设置 valid_until
	Close(ctx context.Context, assignmentID string, validUntil time.Time, updatedBy *string) error
	ListByAssignable(ctx context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error)
}

type scheduleAssignmentRepo struct {
	db *gorm.DB
}

// NewScheduleAssignmentRepo 创建 ScheduleAssignmentRepository 实例
func NewScheduleAssignmentRepo(db *gorm.DB) ScheduleAssignmentRepository {
	return &scheduleAssignmentRepo{db: db}
}

func (r *scheduleAssignmentRepo) FindActiveAt(ctx context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error) {
	var a model.ScheduleAssignment
	d := day.Format(dateLayout)
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignable_type = ? AND assignable_id = ?", ref.Kind, ref.ID).
		Where("valid_from <= ?::date AND (valid_until IS NULL OR valid_until >= ?::date)", d, d).
		Order("valid_from DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *scheduleAssignmentRepo) FindNextAfter(ctx context.Context, ref model.AssignableRef, day time.Time) (*model.ScheduleAssignment, error) {
	var a model.ScheduleAssignment
	err := r.db.WithContext(ctx).
		Where("assignable_type = ? AND assignable_id = ?", ref.Kind, ref.ID).
		Where("valid_from > ?::date", day.Format(dateLayout)).
		Order("valid_from ASC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *scheduleAssignmentRepo) Create(ctx context.Context, assignment *model.ScheduleAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *scheduleAssignmentRepo) Close(ctx context.Context, assignmentID string, validUntil time.Time, updatedBy *string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduleAssignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(map[string]interface{}{
			"valid_until": gorm.Expr("?::date", validUntil.Format(dateLayout)),
			"updated_by":  updatedBy,
		}).Error
}

func (r *scheduleAssignmentRepo) ListByAssignable(ctx context.Context, ref model.AssignableRef) ([]model.ScheduleAssignment, error) {
	var list []model.ScheduleAssignment
	err := r.db.WithContext(ctx).
		Where("assignable_type = ? AND assignable_id = ?", ref.Kind, ref.ID).
		Order("valid_from ASC").
		Find(&list).Error
	return list, err
}
