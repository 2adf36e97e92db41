package xconf

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 是文件变更合并窗口。
const DefaultDebounce = 100 * time.Millisecond

// OnChange 在每次重载后调用，err 非 nil 表示重载失败，此时 Loader 保留旧配置。
type OnChange func(l *Loader, err error)

// WatchOption 配置 Watch。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置合并窗口，窗口内的多次变更只触发一次重载。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watch 监视配置文件并在变更后重载，阻塞直到 ctx 结束。
//
// 监视的是文件所在目录，编辑器"写临时文件再 rename"的保存方式同样能被捕获。
// ctx 结束时返回 nil。
func Watch(ctx context.Context, l *Loader, onChange OnChange, opts ...WatchOption) error {
	if l == nil || l.path == "" {
		return ErrNotFileBacked
	}
	o := watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("xconf: create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("xconf: watch %s: %w", dir, err)
	}

	name := filepath.Base(l.path)
	timer := time.NewTimer(o.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(o.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if onChange != nil {
				onChange(l, fmt.Errorf("xconf: watch: %w", err))
			}
		case <-timer.C:
			err := l.Reload()
			if onChange != nil {
				onChange(l, err)
			}
		}
	}
}
