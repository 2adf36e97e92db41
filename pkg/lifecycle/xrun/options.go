package xrun

import (
	"log/slog"
	"os"
	"syscall"
)

// Option 配置 Group 和 Run。
type Option func(*options)

type options struct {
	logger  *slog.Logger
	name    string
	signals []os.Signal
	sigCh   <-chan os.Signal
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		name:    "xrun",
		signals: []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT},
	}
}

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，出现在生命周期日志中。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖 Run 监听的信号，默认 SIGHUP、SIGINT、SIGTERM、SIGQUIT。
// 传入空列表时 Run 不监听信号。
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *options) {
		o.signals = copied
	}
}

// withSignalChan 注入信号源，测试用。
func withSignalChan(ch <-chan os.Signal) Option {
	return func(o *options) {
		o.sigCh = ch
	}
}
