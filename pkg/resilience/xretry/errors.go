package xretry

import "errors"

var (
	// ErrNilRetryer 表示 Retryer 为 nil。
	ErrNilRetryer = errors.New("xretry: nil retryer")

	// ErrNilContext 表示 context 为 nil。
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilFunc 表示操作函数为 nil。
	ErrNilFunc = errors.New("xretry: nil func")
)

// RetryableError 由能自行声明是否可重试的错误实现。
type RetryableError interface {
	error
	Retryable() bool
}

// retryableVerdict 返回错误链上 RetryableError 的判定，没有时 ok 为 false。
func retryableVerdict(err error) (retryable, ok bool) {
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable(), true
	}
	return false, false
}
