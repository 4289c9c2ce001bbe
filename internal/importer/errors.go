package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind 行级失败类型
type ErrorKind string

const (
	KindValidation ErrorKind = "validation" // 必填字段缺失
	KindResolution ErrorKind = "resolution" // 目录值未匹配或日期无法解析
	KindException  ErrorKind = "exception"  // 事务或基础设施异常
)

// AttributeException 异常类失败统一使用的属性名
const AttributeException = "exception"

// RowError 单行失败，只影响当前行
type RowError struct {
	Kind      ErrorKind
	Attribute string
	Messages  []string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Kind, e.Attribute, strings.Join(e.Messages, "; "))
}

// NewExceptionError 将任意错误包装为 exception 类行级失败，保留原始信息
func NewExceptionError(err error) *RowError {
	return &RowError{Kind: KindException, Attribute: AttributeException, Messages: []string{err.Error()}}
}

// ErrUnsupportedFormat 不支持的文件扩展名
var ErrUnsupportedFormat = errors.New("不支持的文件格式")

// FormatError 整批失败（文件无法读取、格式不支持、行数超限）
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
