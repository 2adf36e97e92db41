package xrdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxLineSize 单行最大字节数。
const maxLineSize = 16 << 20

// Parser 逐条读取 RDF 文档中的语句，不是并发安全的。
//
// N-Triples 和 N-Quads 按行解析，语法错误返回带行列号的 *SyntaxError；
// Turtle 和 RDF/XML 由 knakk/rdf 增量解码；JSON-LD 由 json-gold 整体展开后逐条返回。
type Parser struct {
	format Format
	next   func() (Statement, error)

	// 以下字段仅用于按行解析的格式
	sc   *bufio.Scanner
	line int
}

// ParserOption 配置 Parser。
type ParserOption func(*parserOptions)

type parserOptions struct {
	base string
}

// WithBaseIRI 设置解析相对 IRI 的基准 IRI，仅对 Turtle、RDF/XML 和 JSON-LD 生效。
func WithBaseIRI(iri string) ParserOption {
	return func(o *parserOptions) {
		o.base = iri
	}
}

// NewParser 创建解析器。没有可用解析器的格式（TriG）返回 ErrUnsupportedFormat。
func NewParser(r io.Reader, format Format, opts ...ParserOption) (*Parser, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	var o parserOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	p := &Parser{format: format}
	switch format {
	case FormatNTriples, FormatNQuads:
		p.sc = bufio.NewScanner(r)
		p.sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
		p.next = p.nextLine
	case FormatTurtle, FormatRDFXML:
		next, err := tripleSource(r, format, o.base)
		if err != nil {
			return nil, err
		}
		p.next = next
	case FormatJSONLD:
		next, err := jsonldSource(r, o.base)
		if err != nil {
			return nil, err
		}
		p.next = next
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return p, nil
}

// Format 返回解析的格式。
func (p *Parser) Format() Format {
	return p.format
}

// Line 返回最近读取的行号。非按行解析的格式始终为 0。
func (p *Parser) Line() int {
	return p.line
}

// Next 返回下一条语句。文档结束时返回 io.EOF，语法错误满足 errors.Is(err, ErrSyntax)。
func (p *Parser) Next() (Statement, error) {
	return p.next()
}

func (p *Parser) nextLine() (Statement, error) {
	for p.sc.Scan() {
		p.line++
		l := &lexer{src: p.sc.Text(), line: p.line}
		l.skipSpace()
		if l.eof() || l.peek() == '#' {
			continue
		}
		return l.statement(p.format == FormatNQuads)
	}
	if err := p.sc.Err(); err != nil {
		return Statement{}, fmt.Errorf("xrdf: read line %d: %w", p.line+1, err)
	}
	return Statement{}, io.EOF
}

// Each 对每条语句调用 fn，fn 返回错误时停止。
func (p *Parser) Each(fn func(Statement) error) error {
	for {
		st, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
	}
}

// lexer 解析单行。
type lexer struct {
	src  string
	pos  int
	line int
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte { return l.src[l.pos] }

func (l *lexer) skipSpace() {
	for !l.eof() && (l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r') {
		l.pos++
	}
}

func (l *lexer) errorf(format string, args ...any) error {
	return &SyntaxError{Line: l.line, Col: l.pos + 1, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) statement(quads bool) (Statement, error) {
	var st Statement
	var err error

	if st.Subject, err = l.term(); err != nil {
		return st, err
	}
	if st.Subject.Kind == KindLiteral {
		return st, l.errorf("subject must be an IRI or blank node")
	}

	l.skipSpace()
	if st.Predicate, err = l.term(); err != nil {
		return st, err
	}
	if st.Predicate.Kind != KindIRI {
		return st, l.errorf("predicate must be an IRI")
	}

	l.skipSpace()
	if st.Object, err = l.term(); err != nil {
		return st, err
	}

	l.skipSpace()
	if quads && !l.eof() && l.peek() != '.' {
		if st.Graph, err = l.term(); err != nil {
			return st, err
		}
		if st.Graph.Kind == KindLiteral {
			return st, l.errorf("graph label must be an IRI or blank node")
		}
		l.skipSpace()
	}

	if l.eof() || l.peek() != '.' {
		return st, l.errorf("expected '.'")
	}
	l.pos++
	l.skipSpace()
	if !l.eof() && l.peek() != '#' {
		return st, l.errorf("unexpected %q after '.'", l.src[l.pos:])
	}
	return st, nil
}

func (l *lexer) term() (Term, error) {
	if l.eof() {
		return Term{}, l.errorf("unexpected end of line")
	}
	switch l.peek() {
	case '<':
		v, err := l.iri()
		return IRI(v), err
	case '_':
		return l.blank()
	case '"':
		return l.literal()
	default:
		return Term{}, l.errorf("unexpected character %q", l.peek())
	}
}

func (l *lexer) iri() (string, error) {
	l.pos++ // <
	var b strings.Builder
	for !l.eof() {
		c := l.peek()
		switch {
		case c == '>':
			l.pos++
			return b.String(), nil
		case c == '\\':
			r, err := l.escape(false)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		case c <= ' ' || c == '<' || c == '"' || c == '{' || c == '}' || c == '|' || c == '^' || c == '`':
			return "", l.errorf("invalid character %q in IRI", c)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", l.errorf("unterminated IRI")
}

func (l *lexer) blank() (Term, error) {
	if !strings.HasPrefix(l.src[l.pos:], "_:") {
		return Term{}, l.errorf("expected '_:'")
	}
	l.pos += 2
	start := l.pos
	for !l.eof() {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if r == ' ' || r == '\t' || r == '<' || r == '"' {
			break
		}
		// '.' 可出现在标签中间，但不能结尾
		if r == '.' && (l.pos+1 >= len(l.src) || isLabelEnd(l.src[l.pos+1])) {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		return Term{}, l.errorf("empty blank node label")
	}
	return Blank(l.src[start:l.pos]), nil
}

func isLabelEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '#'
}

func (l *lexer) literal() (Term, error) {
	l.pos++ // "
	var b strings.Builder
	closed := false
	for !l.eof() && !closed {
		c := l.peek()
		switch c {
		case '"':
			l.pos++
			closed = true
		case '\\':
			r, err := l.escape(true)
			if err != nil {
				return Term{}, err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	if !closed {
		return Term{}, l.errorf("unterminated literal")
	}

	t := Literal(b.String(), "", "")
	if l.eof() {
		return t, nil
	}
	switch {
	case l.peek() == '@':
		l.pos++
		start := l.pos
		for !l.eof() && (isAlnum(l.peek()) || l.peek() == '-') {
			l.pos++
		}
		if l.pos == start {
			return Term{}, l.errorf("empty language tag")
		}
		t.Lang = strings.ToLower(l.src[start:l.pos])
	case strings.HasPrefix(l.src[l.pos:], "^^"):
		l.pos += 2
		if l.eof() || l.peek() != '<' {
			return Term{}, l.errorf("expected datatype IRI")
		}
		dt, err := l.iri()
		if err != nil {
			return Term{}, err
		}
		t.Datatype = dt
	}
	return t, nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// escape 解析 '\' 开头的转义。IRI 中只允许 \u 和 \U。
func (l *lexer) escape(literal bool) (rune, error) {
	l.pos++ // '\'
	if l.eof() {
		return 0, l.errorf("unterminated escape")
	}
	c := l.peek()
	l.pos++
	switch c {
	case 'u':
		return l.hex(4)
	case 'U':
		return l.hex(8)
	}
	if !literal {
		return 0, l.errorf("invalid escape \\%c in IRI", c)
	}
	switch c {
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case '"', '\'', '\\':
		return rune(c), nil
	default:
		return 0, l.errorf("invalid escape \\%c", c)
	}
}

func (l *lexer) hex(n int) (rune, error) {
	if l.pos+n > len(l.src) {
		return 0, l.errorf("short unicode escape")
	}
	v, err := strconv.ParseUint(l.src[l.pos:l.pos+n], 16, 32)
	if err != nil {
		return 0, l.errorf("invalid unicode escape %q", l.src[l.pos:l.pos+n])
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return 0, l.errorf("invalid code point U+%X", v)
	}
	l.pos += n
	return r, nil
}
