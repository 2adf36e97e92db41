package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/ontoimport/pkg/lifecycle/xrun"
	"github.com/omeyang/ontoimport/pkg/semantics/ximport"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/util/xfile"
)

const (
	// defaultSettle 文件最后一次写入后的静默时间。
	defaultSettle = 2 * time.Second

	// minSettleTick settle 检查的最小间隔。
	minSettleTick = 50 * time.Millisecond
)

// importFunc 导入单个文件。
type importFunc func(ctx context.Context, path string) (*ximport.Report, error)

// inbox 监视收件目录，文件写入完成后导入，并按结果移动到 success 或 failure 目录。
type inbox struct {
	dir        string
	successDir string
	failureDir string
	settle     time.Duration
	importFn   importFunc
	logger     *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

func newInbox(cfg WatchConfig, fn importFunc, logger *slog.Logger) (*inbox, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: watch.dir is required", errInvalidConfig)
	}
	in := &inbox{
		dir:        cfg.Dir,
		successDir: cfg.SuccessDir,
		failureDir: cfg.FailureDir,
		settle:     cfg.Settle,
		importFn:   fn,
		logger:     logger,
		pending:    make(map[string]time.Time),
	}
	if in.successDir == "" {
		in.successDir = filepath.Join(cfg.Dir, string(ximport.OutcomeSuccess))
	}
	if in.failureDir == "" {
		in.failureDir = filepath.Join(cfg.Dir, string(ximport.OutcomeFailure))
	}
	if in.settle < 0 {
		in.settle = 0
	}
	for _, d := range []string{in.dir, in.successDir, in.failureDir} {
		if err := os.MkdirAll(d, xfile.DefaultDirPerm); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// tasks 返回 watch 命令运行的任务。
func (in *inbox) tasks(rescan string) []func(ctx context.Context) error {
	tick := max(in.settle/2, minSettleTick)
	tasks := []func(ctx context.Context) error{
		in.watch,
		xrun.Ticker(tick, true, in.flush),
	}
	if rescan != "" {
		tasks = append(tasks, xrun.Cron(rescan, in.rescan, in.logger))
	}
	return tasks
}

// watch 将目录中的写入事件登记为待导入，阻塞直到 ctx 结束。
func (in *inbox) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(in.dir); err != nil {
		return fmt.Errorf("watch %s: %w", in.dir, err)
	}
	// 启动前已存在的文件
	if err := in.rescan(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				in.touch(ev.Name, time.Now())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Warn("inbox watcher error", slog.Any("error", err))
		}
	}
}

// rescan 登记目录中所有可识别格式的文件。
func (in *inbox) rescan(context.Context) error {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", in.dir, err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			in.touch(filepath.Join(in.dir, e.Name()), time.Time{})
		}
	}
	return nil
}

// touch 登记文件，at 为最近一次写入时间。
func (in *inbox) touch(path string, at time.Time) {
	if _, err := xrdf.FormatOf(path); err != nil {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if last, ok := in.pending[path]; !ok || at.After(last) {
		in.pending[path] = at
	}
}

// ready 取出静默时间已到的文件。
func (in *inbox) ready(now time.Time) []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	var out []string
	for path, at := range in.pending {
		if now.Sub(at) >= in.settle {
			out = append(out, path)
			delete(in.pending, path)
		}
	}
	return out
}

// flush 依次导入就绪的文件。单个文件失败不会终止 watch。
func (in *inbox) flush(ctx context.Context) error {
	for _, path := range in.ready(time.Now()) {
		if ctx.Err() != nil {
			return nil
		}
		in.process(ctx, path)
	}
	return nil
}

func (in *inbox) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}

	rep, err := in.importFn(ctx, path)
	if ctx.Err() != nil {
		// 被中断的导入留在收件目录，下次启动时重新导入
		return
	}
	dest := in.successDir
	if err != nil || rep == nil || rep.Failed() {
		dest = in.failureDir
	}

	target, err := xfile.MoveInto(path, dest)
	if err != nil {
		in.logger.Error("route file failed", slog.String("file", path), slog.String("dest", dest), slog.Any("error", err))
		return
	}
	in.logger.Info("file routed", slog.String("file", path), slog.String("dest", target))
}
