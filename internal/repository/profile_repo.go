package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
)

// ProfileRepository 员工档案数据访问接口
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.EmployeeProfile, error)
	Create(ctx context.Context, profile *model.EmployeeProfile) error
	Update(ctx context.Context, profile *model.EmployeeProfile) error
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo 创建 ProfileRepository 实例
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.EmployeeProfile, error) {
	var profile model.EmployeeProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *model.EmployeeProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) Update(ctx context.Context, profile *model.EmployeeProfile) error {
	return r.db.WithContext(ctx).
		Model(&model.EmployeeProfile{}).
		Where("profile_id = ?", profile.ProfileID).
		Updates(map[string]interface{}{
			"hire_date":          profile.HireDate,
			"employee_status_id": profile.EmployeeStatusID,
			"hire_type_id":       profile.HireTypeID,
			"manager_id":         profile.ManagerID,
			"updated_by":         profile.UpdatedBy,
		}).Error
}
