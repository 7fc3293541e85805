package service

import (
	"errors"
	"fmt"
)

// 错误类别（用于日志与历史记录）
const (
	ErrorKindNotFound   = "not_found"
	ErrorKindWrite      = "write"
	ErrorKindUnexpected = "unexpected"
)

// NotFoundError 输入配置文件不存在
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("the file %s does not exist.", e.Path)
}

// WriteError 报表文件无法创建或写入
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UnexpectedError 其他所有失败
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Classify 将任意错误归入三类之一，已分类的错误原样返回
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var we *WriteError
	var ue *UnexpectedError
	if errors.As(err, &nf) || errors.As(err, &we) || errors.As(err, &ue) {
		return err
	}
	return &UnexpectedError{Op: op, Err: err}
}

// ErrorKind 返回错误类别
func ErrorKind(err error) string {
	var nf *NotFoundError
	var we *WriteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return ErrorKindNotFound
	case errors.As(err, &we):
		return ErrorKindWrite
	default:
		return ErrorKindUnexpected
	}
}

// Diagnostic 生成面向用户的单行诊断信息
func Diagnostic(err error) string {
	var nf *NotFoundError
	var we *WriteError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return "Error: " + nf.Error()
	case errors.As(err, &we):
		return "File Error: " + we.Error()
	default:
		return "An unexpected error occurred: " + err.Error()
	}
}
