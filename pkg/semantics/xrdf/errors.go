package xrdf

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat 表示无法从文件名或名称识别格式。
	ErrUnknownFormat = errors.New("xrdf: unknown format")

	// ErrUnsupportedFormat 表示格式可识别但没有可用的解析器。
	ErrUnsupportedFormat = errors.New("xrdf: unsupported format")

	// ErrUnknownVocabMode 表示未知的词汇表处理模式。
	ErrUnknownVocabMode = errors.New("xrdf: unknown vocab mode")

	// ErrSyntax 表示文档语法错误，具体位置见 *SyntaxError。
	ErrSyntax = errors.New("xrdf: syntax error")

	// ErrNilReader 表示传入的 reader 为 nil。
	ErrNilReader = errors.New("xrdf: nil reader")
)

// SyntaxError 记录语法错误的位置。Line 和 Col 从 1 开始。
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("xrdf: syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Is 使 errors.Is(err, ErrSyntax) 成立。
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
