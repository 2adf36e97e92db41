// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转和导入上下文注入
//   - xmetrics: 统一可观测性接口，OpenTelemetry 实现和 pool 指标
package observability
