package xrun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron 返回按 cron 表达式周期执行 fn 的任务，ctx 结束时返回 nil。
//
// 支持标准五段表达式和 "@every 5m"、"@hourly" 等描述符。
// 上一次执行未结束时跳过本次触发；fn 返回的错误只记录日志，不终止任务。
func Cron(spec string, fn func(ctx context.Context) error, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		if logger == nil {
			logger = slog.Default()
		}

		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		if _, err := c.AddFunc(spec, func() {
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("scheduled job failed", slog.String("schedule", spec), slog.Any("error", err))
			}
		}); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, spec, err)
		}

		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	}
}

// Ticker 返回每隔 interval 执行一次 fn 的任务。
// immediate 为 true 时启动后先执行一次。fn 返回错误时任务以该错误结束。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		if interval <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
		}
		if immediate {
			if err := fn(ctx); err != nil {
				return err
			}
		}

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			}
		}
	}
}
