// Package storage 提供图存储相关的子包。
//
// 子包列表：
//   - xtx: 事务执行器，在 worker pool 上以事务作用域执行任务
//   - xmongo: MongoDB 客户端封装，提供事务资源和批量写入
//   - xgraph: 属性图变更模型和 MongoDB 图存储
package storage
