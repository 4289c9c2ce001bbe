package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
)

// ImportBatchRepository 导入批次记录数据访问接口
type ImportBatchRepository interface {
	Create(ctx context.Context, batch *model.ImportBatch) error
	GetByID(ctx context.Context, id string) (*model.ImportBatch, error)
	List(ctx context.Context, offset, limit int) ([]model.ImportBatch, int64, error)
}

type importBatchRepo struct {
	db *gorm.DB
}

// NewImportBatchRepo 创建 ImportBatchRepository 实例
func NewImportBatchRepo(db *gorm.DB) ImportBatchRepository {
	return &importBatchRepo{db: db}
}

func (r *importBatchRepo) Create(ctx context.Context, batch *model.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *importBatchRepo) GetByID(ctx context.Context, id string) (*model.ImportBatch, error) {
	var batch model.ImportBatch
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// List 分页列出批次（不含 report 大字段）
func (r *importBatchRepo) List(ctx context.Context, offset, limit int) ([]model.ImportBatch, int64, error) {
	var batches []model.ImportBatch
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ImportBatch{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Omit("report").
		Offset(offset).Limit(limit).
		Order("started_at DESC").
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}
