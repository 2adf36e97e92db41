package xrdf

import (
	"maps"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/ontoimport/pkg/storage/xgraph"
)

const (
	// DefaultCacheSize IRI 命名缓存默认条目数。
	DefaultCacheSize = 4096

	// DefaultResourceLabel 每个资源顶点默认携带的标签。
	DefaultResourceLabel = "Resource"

	// blankIRIPrefix 空白节点映射为顶点时使用的 IRI 前缀。
	blankIRIPrefix = "bnode://"

	// graphProp N-Quads 图名写入边属性时的属性名。
	graphProp = "graph"
)

// MapperOption 配置 Mapper。
type MapperOption func(*mapperOptions)

type mapperOptions struct {
	mode          VocabMode
	prefixes      map[string]string
	typesToLabels bool
	resourceLabel string
	language      string
	cacheSize     int
}

// WithVocabMode 设置词汇表处理模式。
func WithVocabMode(m VocabMode) MapperOption {
	return func(o *mapperOptions) {
		o.mode = m
	}
}

// WithPrefixes 设置命名空间到前缀的映射，用于 Map 模式，
// 在 Shorten 模式下优先于内置前缀。
func WithPrefixes(prefixes map[string]string) MapperOption {
	return func(o *mapperOptions) {
		maps.Copy(o.prefixes, prefixes)
	}
}

// WithTypesToLabels 设置是否将 rdf:type 转换为标签，默认开启。
func WithTypesToLabels(on bool) MapperOption {
	return func(o *mapperOptions) {
		o.typesToLabels = on
	}
}

// WithResourceLabel 设置每个资源顶点携带的标签，空字符串表示不添加。
func WithResourceLabel(label string) MapperOption {
	return func(o *mapperOptions) {
		o.resourceLabel = label
	}
}

// WithLanguage 只保留指定语言或无语言标签的字面量，空字符串表示全部保留。
func WithLanguage(lang string) MapperOption {
	return func(o *mapperOptions) {
		o.language = strings.ToLower(lang)
	}
}

// WithCacheSize 设置 IRI 命名缓存大小，非正值被忽略。
func WithCacheSize(n int) MapperOption {
	return func(o *mapperOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// Mapper 将语句映射为图变更。并发安全。
type Mapper struct {
	opts  mapperOptions
	names *lru.Cache[string, string]
}

// NewMapper 创建 Mapper。
func NewMapper(opts ...MapperOption) (*Mapper, error) {
	o := mapperOptions{
		mode:          VocabShorten,
		prefixes:      make(map[string]string),
		typesToLabels: true,
		resourceLabel: DefaultResourceLabel,
		cacheSize:     DefaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if _, ok := vocabModeNames[o.mode]; !ok {
		return nil, ErrUnknownVocabMode
	}
	names, err := lru.New[string, string](o.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Mapper{opts: o, names: names}, nil
}

// Mode 返回词汇表处理模式。
func (m *Mapper) Mode() VocabMode {
	return m.opts.mode
}

// Name 返回 IRI 在图中的名称（属性名、边标签或类型标签）。
func (m *Mapper) Name(iri string) string {
	if name, ok := m.names.Get(iri); ok {
		return name
	}
	name := m.name(iri)
	m.names.Add(iri, name)
	return name
}

func (m *Mapper) name(iri string) string {
	switch m.opts.mode {
	case VocabKeep:
		return iri
	case VocabIgnore:
		_, local := SplitIRI(iri)
		return local
	default:
		ns, local := SplitIRI(iri)
		if ns == "" {
			return local
		}
		return m.prefix(ns) + prefixSeparator + local
	}
}

func (m *Mapper) prefix(ns string) string {
	if p, ok := m.opts.prefixes[ns]; ok {
		return p
	}
	if p, ok := wellKnownPrefixes[ns]; ok {
		return p
	}
	return generatedPrefix(ns)
}

// Map 将一批语句映射为去重后的图变更。
func (m *Mapper) Map(stmts []Statement) xgraph.Mutation {
	var mut xgraph.Mutation
	for _, st := range stmts {
		m.mapStatement(&mut, st)
	}
	return mut.Merge()
}

func (m *Mapper) mapStatement(mut *xgraph.Mutation, st Statement) {
	subject := m.vertex(st.Subject)

	switch {
	case st.Object.Kind == KindLiteral:
		if !m.acceptLanguage(st.Object.Lang) {
			// 语言被过滤时仍保留主语顶点
			mut.AddVertex(subject)
			return
		}
		subject.SetProp(m.Name(st.Predicate.Value), literalValue(st.Object))
		mut.AddVertex(subject)

	case st.Predicate.Value == rdfType && m.opts.typesToLabels && st.Object.Kind == KindIRI:
		subject.AddLabel(m.Name(st.Object.Value))
		mut.AddVertex(subject)

	default:
		object := m.vertex(st.Object)
		mut.AddVertex(subject)
		mut.AddVertex(object)
		e := xgraph.Edge{From: subject.Key, To: object.Key, Label: m.Name(st.Predicate.Value)}
		if !st.Graph.IsZero() {
			e.Props = map[string]any{graphProp: termIRI(st.Graph)}
		}
		mut.AddEdge(e)
	}
}

func (m *Mapper) vertex(t Term) xgraph.Vertex {
	if m.opts.resourceLabel == "" {
		return xgraph.NewVertex(termIRI(t))
	}
	return xgraph.NewVertex(termIRI(t), m.opts.resourceLabel)
}

func (m *Mapper) acceptLanguage(lang string) bool {
	return m.opts.language == "" || lang == "" || lang == m.opts.language
}

// termIRI 返回资源的 IRI，空白节点使用 bnode:// 前缀。
func termIRI(t Term) string {
	if t.Kind == KindBlank {
		return blankIRIPrefix + t.Value
	}
	return t.Value
}

// literalValue 按 XSD 数据类型转换字面量，无法转换时保留原始字符串。
func literalValue(t Term) any {
	dt, ok := strings.CutPrefix(t.Datatype, nsXSD)
	if !ok {
		return t.Value
	}
	switch dt {
	case "integer", "int", "long", "short", "byte",
		"nonNegativeInteger", "nonPositiveInteger", "positiveInteger", "negativeInteger",
		"unsignedInt", "unsignedShort", "unsignedByte":
		if v, err := strconv.ParseInt(strings.TrimSpace(t.Value), 10, 64); err == nil {
			return v
		}
	case "decimal", "double", "float":
		if v, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64); err == nil {
			return v
		}
	case "boolean":
		switch strings.TrimSpace(t.Value) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return t.Value
}
