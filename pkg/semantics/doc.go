// Package semantics 提供语义网文档处理相关的子包。
//
// 子包列表：
//   - xrdf: 格式识别、N-Triples/N-Quads 流式解析、语句到属性图的映射
//   - ximport: 按批事务导入文档，带重试和熔断
package semantics
