package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationOptions 配置按大小轮转的日志文件，零值字段使用 lumberjack 默认值。
type RotationOptions struct {
	MaxSizeMB  int  `koanf:"max_size_mb"`
	MaxBackups int  `koanf:"max_backups"`
	MaxAgeDays int  `koanf:"max_age_days"`
	Compress   bool `koanf:"compress"`
	LocalTime  bool `koanf:"local_time"`
}

// Builder 构建 slog.Logger。
type Builder struct {
	output    io.Writer
	level     *slog.LevelVar
	format    string
	addSource bool
	enrich    bool
	attrs     []slog.Attr
	rotator   *lumberjack.Logger
	err       error
}

// New 创建 Builder。默认 info 级别、text 格式、输出到 stderr、启用 enrich。
func New() *Builder {
	return &Builder{
		output: os.Stderr,
		level:  new(slog.LevelVar),
		format: "text",
		enrich: true,
	}
}

// SetOutput 设置输出目标。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别。
func (b *Builder) SetLevel(level slog.Level) *Builder {
	b.level.Set(level)
	return b
}

// SetLevelString 通过字符串设置日志级别，无效值在 Build 时返回错误。
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空值使用 text。
func (b *Builder) SetFormat(format string) *Builder {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = f
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 设置是否输出源码位置。
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 设置是否从 context 注入导入信息。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enrich = enable
	return b
}

// SetAttrs 设置每条日志都带的固定属性，如 service、version。
func (b *Builder) SetAttrs(attrs ...slog.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// SetRotation 输出到按大小轮转的文件。
func (b *Builder) SetRotation(filename string, opts RotationOptions) *Builder {
	if strings.TrimSpace(filename) == "" {
		b.err = ErrEmptyFilename
		return b
	}
	b.rotator = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
		LocalTime:  opts.LocalTime,
	}
	b.output = b.rotator
	return b
}

// Build 构建 Logger。
//
// 返回 logger、可在运行时调整的级别句柄、释放输出文件的 cleanup（可重复调用）。
func (b *Builder) Build() (*slog.Logger, *slog.LevelVar, func() error, error) {
	if b.err != nil {
		return nil, nil, nil, b.err
	}

	opts := &slog.HandlerOptions{Level: b.level, AddSource: b.addSource}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}
	if b.enrich {
		handler = &EnrichHandler{base: handler}
	}
	if len(b.attrs) > 0 {
		handler = handler.WithAttrs(b.attrs)
	}

	rotator := b.rotator
	var once sync.Once
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}

	return slog.New(handler), b.level, cleanup, nil
}
