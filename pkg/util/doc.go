// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xpool: 带背压的弹性 worker pool
//   - xfile: 收件目录的文件移动和路径约束
package util
