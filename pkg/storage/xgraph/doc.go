// Package xgraph 定义属性图变更及其在 MongoDB 上的存储。
//
// 顶点以 IRI 的 xxhash64 作为键（VertexKey），边以 (from, label, to) 作为键（EdgeKey），
// 重复写入同一份数据是幂等的：标签取并集，属性覆盖。
//
//	var m xgraph.Mutation
//	m.AddVertex(xgraph.NewVertex(iri, "Person"))
//	m.AddEdge(xgraph.Edge{From: a, To: b, Label: "knows"})
//	applied, err := store.Apply(ctx, m.Merge())
package xgraph
