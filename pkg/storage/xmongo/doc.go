// Package xmongo 提供图存储使用的 MongoDB 连接与事务资源。
//
// 只补充 mongo.Client 原生不具备的能力，基础操作请直接使用 Client()：
//   - Open/New/Close：连接生命周期，Close 只断开一次，之后返回 ErrClosed
//   - Health/Stats：带超时的 Ping 与会话、事务计数
//   - Resource：基于会话和多文档事务的 xtx.Resource
//   - BulkInsert/BulkUpsert：分批写入，自动使用 ctx 中绑定的会话
//   - IsTransient：识别可重试的事务错误
//
// # 事务
//
// Resource 的每次 OpenScope 启动一个会话并开启事务。Scope 实现 xtx.ContextBinder，
// 任务收到的 ctx 已绑定该会话，任务内所有 driver 调用都在同一事务中执行。
// 未提交的 Scope 被 Close 时中止事务。
//
// 事务要求 MongoDB 以副本集或分片集群方式部署。
package xmongo
