package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TravisDev5x/HELPDESKREACT26-sub000/internal/model"
)

// CatalogRepository 组织目录只读访问接口
// 七张目录表结构一致，按 CatalogKind 选择物理表
type CatalogRepository interface {
	ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error)
	GetActiveByID(ctx context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error)
}

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepo 创建 CatalogRepository 实例
func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&entries).Error
	return entries, err
}

func (r *catalogRepo) GetActiveByID(ctx context.Context, kind model.CatalogKind, id string) (*model.CatalogEntry, error) {
	var entry model.CatalogEntry
	err := r.db.WithContext(ctx).
		Table(kind.TableName()).
		Where("id = ? AND is_active = ?", id, true).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
