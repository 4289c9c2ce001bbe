package main

import "errors"

// cliError 携带进程退出码的错误
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK          = 0
	exitRowFailures = 1 // 仅在 --strict 时使用：存在失败行
	exitValidation  = 2 // 文件无法解析或参数取值非法
	exitUsage       = 3
	exitDB          = 4
	exitConfig      = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
