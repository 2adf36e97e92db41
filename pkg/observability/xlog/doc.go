// Package xlog 构建进程使用的 slog.Logger。
//
//	logger, level, cleanup, err := xlog.New().
//		SetLevelString("info").
//		SetFormat("json").
//		SetRotation("/var/log/ontoimport/ontoimport.log", xlog.RotationOptions{MaxSizeMB: 100}).
//		Build()
//	defer cleanup()
//
// Build 返回的 *slog.LevelVar 可在运行时修改级别（如配置热更新）。
//
// 默认启用 EnrichHandler：通过 WithImport / WithFile 写入 context 的导入信息
// 会以 import_id、file 属性出现在使用 *Context 方法输出的日志中。
package xlog
