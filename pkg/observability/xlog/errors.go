package xlog

import "errors"

var (
	// ErrNilHandler 表示 NewEnrichHandler 的 base 为 nil。
	ErrNilHandler = errors.New("xlog: base handler is nil")

	// ErrUnknownLevel 表示无法识别的日志级别。
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 表示无法识别的输出格式。
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrEmptyFilename 表示轮转文件名为空。
	ErrEmptyFilename = errors.New("xlog: rotation filename is empty")
)
