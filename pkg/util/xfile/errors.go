package xfile

import "errors"

var (
	// ErrEmptyPath 表示必需的路径参数为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrPathEscaped 表示路径超出了基准目录。
	ErrPathEscaped = errors.New("xfile: path escapes base directory")

	// ErrNullByte 表示路径包含空字节。
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrNoFreeName 表示目标目录中找不到可用的文件名。
	ErrNoFreeName = errors.New("xfile: no free file name")
)
