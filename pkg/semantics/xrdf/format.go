package xrdf

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format 是 RDF 序列化格式。
type Format string

// 支持识别的格式。
const (
	FormatRDFXML   Format = "RDF/XML"
	FormatNTriples Format = "N-Triples"
	FormatTurtle   Format = "Turtle"
	FormatJSONLD   Format = "JSON-LD"
	FormatNQuads   Format = "N-Quads"
	FormatTriG     Format = "TriG"
)

var extensions = map[string]Format{
	"owl":    FormatRDFXML,
	"rdf":    FormatRDFXML,
	"nt":     FormatNTriples,
	"ttl":    FormatTurtle,
	"jsonld": FormatJSONLD,
	"nq":     FormatNQuads,
	"trig":   FormatTriG,
}

// Supported 报告是否有可用的解析器。TriG 只能识别，不能解析。
func (f Format) Supported() bool {
	return f.Streamable() || f == FormatJSONLD
}

// Streamable 报告解析时是否逐条产出语句而不整体读入文档。
func (f Format) Streamable() bool {
	switch f {
	case FormatNTriples, FormatNQuads, FormatTurtle, FormatRDFXML:
		return true
	default:
		return false
	}
}

// FormatOf 按文件扩展名（不区分大小写）识别格式。
func FormatOf(filename string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
}

// ParseFormat 按格式名或扩展名识别格式，不区分大小写。
func ParseFormat(name string) (Format, error) {
	lower := strings.ToLower(strings.TrimPrefix(name, "."))
	if f, ok := extensions[lower]; ok {
		return f, nil
	}
	for _, f := range extensions {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatEntry 是扩展名到格式的一项映射。
type FormatEntry struct {
	Extension  string
	Format     Format
	Supported  bool
	Streamable bool
}

// Formats 返回按扩展名排序的格式表。
func Formats() []FormatEntry {
	out := make([]FormatEntry, 0, len(extensions))
	for ext, f := range extensions {
		out = append(out, FormatEntry{Extension: ext, Format: f, Supported: f.Supported(), Streamable: f.Streamable()})
	}
	slices.SortFunc(out, func(a, b FormatEntry) int {
		return strings.Compare(a.Extension, b.Extension)
	})
	return out
}
