package errors

import "errors"

// RetriableError 标记可重试的瞬时故障（邮件服务、网络抖动等）
// 调度任务据此决定是否在固定延迟后重试；业务前置条件错误不属于此类
type RetriableError struct {
	Err error
}

func (e *RetriableError) Error() string { return e.Err.Error() }

func (e *RetriableError) Unwrap() error { return e.Err }

// Retriable 包装一个瞬时错误
func Retriable(err error) error {
	if err == nil {
		return nil
	}
	return &RetriableError{Err: err}
}

// IsRetriable 判断错误链中是否存在可重试标记
func IsRetriable(err error) bool {
	var re *RetriableError
	return errors.As(err, &re)
}
