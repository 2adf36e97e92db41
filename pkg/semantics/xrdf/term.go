package xrdf

import (
	"fmt"
	"strings"
)

// TermKind 是 RDF 项的种类。
type TermKind uint8

const (
	// KindNone 表示缺省项，如三元组中的图名。
	KindNone TermKind = iota
	KindIRI
	KindBlank
	KindLiteral
)

// Term 是 RDF 项。Blank 的 Value 为不含 "_:" 的标签。
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// IRI 创建 IRI 项。
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank 创建空白节点项。
func Blank(label string) Term { return Term{Kind: KindBlank, Value: label} }

// Literal 创建字面量项。
func Literal(v, lang, datatype string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: lang, Datatype: datatype}
}

// IsZero 报告是否为缺省项。
func (t Term) IsZero() bool { return t.Kind == KindNone }

// String 返回 N-Triples 表示。
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + escapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(escapeLiteral(t.Value))
		b.WriteByte('"')
		if t.Lang != "" {
			b.WriteString("@" + t.Lang)
		} else if t.Datatype != "" && t.Datatype != xsdString {
			b.WriteString("^^<" + escapeIRI(t.Datatype) + ">")
		}
		return b.String()
	default:
		return ""
	}
}

// Statement 是一条三元组或四元组。三元组的 Graph 为缺省项。
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// String 返回 N-Quads 表示。
func (s Statement) String() string {
	parts := []string{s.Subject.String(), s.Predicate.String(), s.Object.String()}
	if !s.Graph.IsZero() {
		parts = append(parts, s.Graph.String())
	}
	return strings.Join(parts, " ") + " ."
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// escapeIRI 将 IRI 中不允许直接出现的字符写成 \uXXXX。
func escapeIRI(s string) string {
	if !strings.ContainsFunc(s, iriReserved) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 && iriReserved(rune(c)) {
			fmt.Fprintf(&b, `\u%04X`, c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func iriReserved(r rune) bool {
	return r <= ' ' || strings.ContainsRune(`<>"{}|^`+"`"+`\`, r)
}
