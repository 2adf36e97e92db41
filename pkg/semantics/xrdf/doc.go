// Package xrdf 解析语义网文档并映射为属性图变更。
//
// # 格式
//
// FormatOf 按扩展名识别格式（owl/rdf → RDF/XML，nt → N-Triples，ttl → Turtle，
// jsonld → JSON-LD，nq → N-Quads，trig → TriG）。
//
// NewParser 的解析方式按格式区分：
//   - N-Triples、N-Quads：内置按行解析，错误带行列号
//   - Turtle、RDF/XML：基于 [knakk/rdf] 增量解码
//   - JSON-LD：基于 [json-gold] 展开整个文档
//   - TriG：返回 ErrUnsupportedFormat
//
// # 映射
//
// Mapper 将 Statement 转换为 xgraph.Mutation：
//   - 字面量宾语成为主语顶点的属性
//   - IRI 或空白节点宾语成为一条边
//   - rdf:type 语句在 TypesToLabels 开启时成为主语的标签
//
// 谓词和类型 IRI 的命名由 VocabMode 决定：Shorten（默认，prefix__local）、
// Ignore（仅本地名）、Map（显式命名空间表，未命中时回退 Shorten）、Keep（完整 IRI）。
//
// [knakk/rdf]: https://github.com/knakk/rdf
// [json-gold]: https://github.com/piprate/json-gold
package xrdf
