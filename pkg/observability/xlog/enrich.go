package xlog

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyImportID ctxKey = iota
	keyFile
)

// 日志属性名。
const (
	KeyImportID = "import_id"
	KeyFile     = "file"
)

// WithImport 在 ctx 中记录导入批次 ID。
func WithImport(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyImportID, id)
}

// WithFile 在 ctx 中记录正在导入的文件。
func WithFile(ctx context.Context, file string) context.Context {
	return context.WithValue(ctx, keyFile, file)
}

// ImportID 返回 ctx 中的导入批次 ID。
func ImportID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(keyImportID).(string)
	return v
}

// File 返回 ctx 中的文件名。
func File(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(keyFile).(string)
	return v
}

// EnrichHandler 从 context 提取导入信息并追加到日志记录。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 包装 base。base 为 nil 时返回 ErrNilHandler。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler。
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 追加 import_id、file 属性。修改前先 Clone record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [2]slog.Attr
	attrs := buf[:0]
	if id := ImportID(ctx); id != "" {
		attrs = append(attrs, slog.String(KeyImportID, id))
	}
	if f := File(ctx); f != "" {
		attrs = append(attrs, slog.String(KeyFile, f))
	}
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的 handler。
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的 handler。
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
