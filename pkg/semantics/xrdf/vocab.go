package xrdf

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// 常用词汇表 IRI。
const (
	nsRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	nsXSD  = "http://www.w3.org/2001/XMLSchema#"

	rdfType   = nsRDF + "type"
	xsdString = nsXSD + "string"
)

// prefixSeparator 连接前缀和本地名。
const prefixSeparator = "__"

// wellKnownPrefixes 是 Shorten 模式内置的命名空间前缀。
var wellKnownPrefixes = map[string]string{
	nsRDF:                                  "rdf",
	nsRDFS:                                 "rdfs",
	nsXSD:                                  "xsd",
	"http://www.w3.org/2002/07/owl#":       "owl",
	"http://www.w3.org/2004/02/skos/core#": "skos",
	"http://xmlns.com/foaf/0.1/":           "foaf",
	"http://purl.org/dc/elements/1.1/":     "dc",
	"http://purl.org/dc/terms/":            "dct",
	"http://schema.org/":                   "sch",
	"https://schema.org/":                  "sch",
	"http://www.w3.org/ns/prov#":           "prov",
}

// VocabMode 决定谓词和类型 IRI 如何命名。
type VocabMode uint8

const (
	// VocabShorten 使用 prefix__local，未知命名空间生成确定性前缀。
	VocabShorten VocabMode = iota
	// VocabIgnore 仅保留本地名。
	VocabIgnore
	// VocabMap 使用显式命名空间表，未命中时回退 Shorten。
	VocabMap
	// VocabKeep 保留完整 IRI。
	VocabKeep
)

var vocabModeNames = map[VocabMode]string{
	VocabShorten: "shorten",
	VocabIgnore:  "ignore",
	VocabMap:     "map",
	VocabKeep:    "keep",
}

// String 返回模式名。
func (m VocabMode) String() string {
	if s, ok := vocabModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("VocabMode(%d)", m)
}

// ParseVocabMode 解析模式名，不区分大小写，空字符串为 Shorten。
func ParseVocabMode(s string) (VocabMode, error) {
	if s == "" {
		return VocabShorten, nil
	}
	for m, name := range vocabModeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVocabMode, s)
}

// SplitIRI 在最后一个 '#'、'/' 或 ':' 之后切分命名空间和本地名。
// 没有分隔符或本地名为空时整个 IRI 视为本地名。
func SplitIRI(iri string) (namespace, local string) {
	i := strings.LastIndexAny(iri, "#/:")
	if i < 0 || i == len(iri)-1 {
		return "", iri
	}
	return iri[:i+1], iri[i+1:]
}

// generatedPrefix 为未知命名空间生成确定性前缀，跨文件和进程保持一致。
func generatedPrefix(namespace string) string {
	return fmt.Sprintf("ns%08x", uint32(xxhash.Sum64String(namespace)))
}
