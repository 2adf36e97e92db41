// Package ximport 将语义网文档导入属性图存储。
//
// Importer 流式读取文档，按 BatchSize 切分语句，每批映射为一个
// xgraph.Mutation，并通过 xtx.RunAsync 在独立事务中写入存储：
//
//	parse → batch → map → breaker(retry(RunAsync(Apply)))
//
// 瞬时事务错误（xmongo.IsTransient）按 xretry 策略重试整个事务；
// 存储持续失败时 xbreaker 熔断，后续批次快速失败。
//
// 每次导入生成一份 Report，Outcome 为 success 或 failure。
// ReportSink 用于持久化导入记录，MongoReportSink 将记录追加到 imports 集合。
package ximport
