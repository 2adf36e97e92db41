package xgraph

import (
	"context"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// VertexKey 返回 IRI 对应的顶点键：xxhash64 的 16 位十六进制表示。
func VertexKey(iri string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(iri))
}

// EdgeKey 返回边的键。同一对顶点间同一标签的边只有一条。
func EdgeKey(from, label, to string) string {
	d := xxhash.New()
	_, _ = d.WriteString(from)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(label)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(to)
	return fmt.Sprintf("%016x", d.Sum64())
}

// Vertex 是图中的一个资源。
type Vertex struct {
	Key    string
	IRI    string
	Labels []string
	Props  map[string]any
}

// NewVertex 以 IRI 创建顶点。
func NewVertex(iri string, labels ...string) Vertex {
	v := Vertex{Key: VertexKey(iri), IRI: iri}
	for _, l := range labels {
		v.AddLabel(l)
	}
	return v
}

// AddLabel 添加标签，已存在时忽略。
func (v *Vertex) AddLabel(label string) {
	if label != "" && !slices.Contains(v.Labels, label) {
		v.Labels = append(v.Labels, label)
	}
}

// SetProp 添加属性值。同名属性出现多个不同值时转为 []any。
func (v *Vertex) SetProp(name string, value any) {
	if v.Props == nil {
		v.Props = make(map[string]any)
	}
	v.Props[name] = mergeValue(v.Props[name], value)
}

func mergeValue(old, value any) any {
	switch prev := old.(type) {
	case nil:
		return value
	case []any:
		if slices.ContainsFunc(prev, func(x any) bool { return x == value }) {
			return prev
		}
		return append(prev, value)
	default:
		if prev == value {
			return prev
		}
		return []any{prev, value}
	}
}

// Edge 是两个顶点间的有向关系，From/To 为顶点键。
type Edge struct {
	From  string
	To    string
	Label string
	Props map[string]any
}

// Key 返回边的键。
func (e Edge) Key() string {
	return EdgeKey(e.From, e.Label, e.To)
}

// Mutation 是一次要原子写入的图变更。
type Mutation struct {
	Vertices []Vertex
	Edges    []Edge
}

// AddVertex 追加顶点。
func (m *Mutation) AddVertex(v Vertex) {
	m.Vertices = append(m.Vertices, v)
}

// AddEdge 追加边。
func (m *Mutation) AddEdge(e Edge) {
	m.Edges = append(m.Edges, e)
}

// Empty 报告变更是否为空。
func (m Mutation) Empty() bool {
	return len(m.Vertices) == 0 && len(m.Edges) == 0
}

// Merge 返回去重后的变更：同键顶点合并标签和属性，同键边合并属性。
// 保留首次出现的顺序。
func (m Mutation) Merge() Mutation {
	out := Mutation{}

	vidx := make(map[string]int, len(m.Vertices))
	for _, v := range m.Vertices {
		i, ok := vidx[v.Key]
		if !ok {
			vidx[v.Key] = len(out.Vertices)
			out.Vertices = append(out.Vertices, Vertex{Key: v.Key, IRI: v.IRI})
			i = len(out.Vertices) - 1
		}
		dst := &out.Vertices[i]
		if dst.IRI == "" {
			dst.IRI = v.IRI
		}
		for _, l := range v.Labels {
			dst.AddLabel(l)
		}
		for name, value := range v.Props {
			for _, x := range flatten(value) {
				dst.SetProp(name, x)
			}
		}
	}

	eidx := make(map[string]int, len(m.Edges))
	for _, e := range m.Edges {
		k := e.Key()
		i, ok := eidx[k]
		if !ok {
			eidx[k] = len(out.Edges)
			out.Edges = append(out.Edges, Edge{From: e.From, To: e.To, Label: e.Label})
			i = len(out.Edges) - 1
		}
		for name, value := range e.Props {
			if out.Edges[i].Props == nil {
				out.Edges[i].Props = make(map[string]any)
			}
			out.Edges[i].Props[name] = value
		}
	}
	return out
}

func flatten(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// Applied 是一次 Apply 写入的数量。
type Applied struct {
	Vertices int64
	Edges    int64
}

// Store 将图变更写入存储。Apply 在调用方 ctx 绑定的事务内执行。
type Store interface {
	Apply(ctx context.Context, m Mutation) (Applied, error)
}
