package xfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const (
	// DefaultDirPerm 创建目录使用的权限。
	DefaultDirPerm = 0o750

	// maxSuffix 同名文件追加序号的上限。
	maxSuffix = 10000
)

// JoinBase 将 name 拼接到 base 下，结果不能离开 base。
func JoinBase(base, name string) (string, error) {
	if base == "" || name == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(base, 0) || strings.ContainsRune(name, 0) {
		return "", ErrNullByte
	}
	cleanBase := filepath.Clean(base)
	joined := filepath.Join(cleanBase, name)
	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscaped, name)
	}
	return joined, nil
}

// MoveInto 将 src 移动到 dir 下并返回新路径。同名文件已存在时不覆盖，追加序号。
func MoveInto(src, dir string) (string, error) {
	if src == "" || dir == "" {
		return "", ErrEmptyPath
	}
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return "", fmt.Errorf("xfile: create %s: %w", dir, err)
	}
	target, err := freeName(dir, filepath.Base(src))
	if err != nil {
		return "", err
	}

	err = os.Rename(src, target)
	if errors.Is(err, syscall.EXDEV) {
		err = copyThenRemove(src, target)
	}
	if err != nil {
		return "", fmt.Errorf("xfile: move %s: %w", src, err)
	}
	return target, nil
}

// freeName 返回 dir 中尚不存在的文件名。
func freeName(dir, name string) (string, error) {
	target, err := JoinBase(dir, name)
	if err != nil {
		return "", err
	}
	if !exists(target) {
		return target, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i < maxSuffix; i++ {
		target = filepath.Join(dir, stem+"."+strconv.Itoa(i)+ext)
		if !exists(target) {
			return target, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNoFreeName, name, dir)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func copyThenRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err = out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
