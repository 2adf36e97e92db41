package xrdf

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// defaultGraph 是 json-gold 数据集中默认图的名称。
const defaultGraph = "@default"

// tripleSource 使用 knakk/rdf 增量解码 Turtle 或 RDF/XML。
func tripleSource(r io.Reader, format Format, base string) (func() (Statement, error), error) {
	f := rdf.Turtle
	if format == FormatRDFXML {
		f = rdf.RDFXML
	}
	dec := rdf.NewTripleDecoder(r, f)
	if base != "" {
		iri, err := rdf.NewIRI(base)
		if err != nil {
			return nil, fmt.Errorf("xrdf: base iri %q: %w", base, err)
		}
		if err := dec.SetOption(rdf.Base, iri); err != nil {
			return nil, fmt.Errorf("xrdf: base iri %q: %w", base, err)
		}
	}

	return func() (Statement, error) {
		tr, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Statement{}, io.EOF
			}
			return Statement{}, fmt.Errorf("%w: %s: %w", ErrSyntax, format, err)
		}
		return Statement{
			Subject:   fromKnakk(tr.Subj),
			Predicate: fromKnakk(tr.Pred),
			Object:    fromKnakk(tr.Obj),
		}, nil
	}, nil
}

func fromKnakk(t rdf.Term) Term {
	switch v := t.(type) {
	case rdf.IRI:
		return IRI(v.String())
	case rdf.Blank:
		return Blank(strings.TrimPrefix(v.String(), "_:"))
	case rdf.Literal:
		if lang := v.Lang(); lang != "" {
			return Literal(v.String(), strings.ToLower(lang), "")
		}
		return Literal(v.String(), "", plainDatatype(v.DataType.String()))
	default:
		return Term{}
	}
}

// jsonldSource 使用 json-gold 将 JSON-LD 展开为 RDF 数据集。
// JSON-LD 无法增量解析，整个文档在创建时读入。
func jsonldSource(r io.Reader, base string) (func() (Statement, error), error) {
	doc, err := ld.DocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSyntax, FormatJSONLD, err)
	}
	opts := ld.NewJsonLdOptions(base)
	out, err := ld.NewJsonLdProcessor().ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSyntax, FormatJSONLD, err)
	}
	ds, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unexpected result %T", ErrSyntax, FormatJSONLD, out)
	}

	// 默认图在前，命名图按名称排序，保证输出顺序稳定
	names := slices.Sorted(maps.Keys(ds.Graphs))
	if i := slices.Index(names, defaultGraph); i > 0 {
		names = append([]string{defaultGraph}, slices.Delete(names, i, i+1)...)
	}
	var quads []*ld.Quad
	for _, name := range names {
		quads = append(quads, ds.Graphs[name]...)
	}

	return func() (Statement, error) {
		if len(quads) == 0 {
			return Statement{}, io.EOF
		}
		q := quads[0]
		quads = quads[1:]
		return Statement{
			Subject:   fromLD(q.Subject),
			Predicate: fromLD(q.Predicate),
			Object:    fromLD(q.Object),
			Graph:     fromLD(q.Graph),
		}, nil
	}, nil
}

func fromLD(n ld.Node) Term {
	switch v := n.(type) {
	case *ld.IRI:
		return IRI(v.Value)
	case *ld.BlankNode:
		return Blank(strings.TrimPrefix(v.Attribute, "_:"))
	case *ld.Literal:
		if v.Language != "" {
			return Literal(v.Value, strings.ToLower(v.Language), "")
		}
		return Literal(v.Value, "", plainDatatype(v.Datatype))
	default:
		return Term{}
	}
}

// plainDatatype 将 xsd:string 归一为空，与按行解析的简单字面量一致。
func plainDatatype(dt string) string {
	if dt == xsdString {
		return ""
	}
	return dt
}
