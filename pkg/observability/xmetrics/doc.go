// Package xmetrics 定义导入流程使用的观测接口，并提供基于 OpenTelemetry 的实现。
//
// 业务代码只依赖 Observer/Span：
//
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "ximport",
//		Operation: "batch",
//	})
//	defer func() { span.End(xmetrics.Result{Err: err}) }()
//
// 未配置时使用 NoopObserver，不产生任何开销以外的副作用。
//
// # 指标
//
//   - ontoimport.operation.total：操作次数（counter）
//   - ontoimport.operation.duration：操作耗时，单位秒（histogram）
//   - ontoimport.pool.*：worker pool 状态（observable gauge，见 RegisterPool）
//
// 操作指标统一带 component / operation / status 三个属性。
package xmetrics
