package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 是配置文件格式。
type Format string

const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"
	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

const (
	delim = "."
	tag   = "koanf"
)

// Loader 持有一份已解析的配置，可并发读取和重载。
type Loader struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	format Format
}

// New 从文件加载配置，格式由扩展名决定（.yaml/.yml/.json）。
func New(path string) (*Loader, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	k, err := readFile(path, format)
	if err != nil {
		return nil, err
	}
	return &Loader{k: k, path: path, format: format}, nil
}

// NewFromBytes 从内存数据加载配置，空数据得到空配置。
func NewFromBytes(data []byte, format Format) (*Loader, error) {
	k := koanf.New(delim)
	if len(data) > 0 {
		if err := parse(k, data, format); err != nil {
			return nil, err
		}
	} else if _, err := parserFor(format); err != nil {
		return nil, err
	}
	return &Loader{k: k, format: format}, nil
}

// FormatOf 根据扩展名判断格式。
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// Unmarshal 将 path 下的配置解码到 target，path 为空时解码全部配置。
// 使用 koanf 默认解码：字符串时长（如 "30s"）解码为 time.Duration，弱类型输入自动转换。
func (l *Loader) Unmarshal(path string, target any) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	err := l.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: tag})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// String 返回 key 对应的字符串值，不存在时返回空字符串。
func (l *Loader) String(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.k.String(key)
}

// Exists 报告 key 是否存在。
func (l *Loader) Exists(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.k.Exists(key)
}

// Reload 重新读取配置文件。解析失败时保留原配置。
func (l *Loader) Reload() error {
	if l.path == "" {
		return ErrNotFileBacked
	}
	k, err := readFile(l.path, l.format)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.k = k
	l.mu.Unlock()
	return nil
}

// Path 返回配置文件路径，内存配置返回空字符串。
func (l *Loader) Path() string { return l.path }

// Format 返回配置格式。
func (l *Loader) Format() Format { return l.format }

func readFile(path string, format Format) (*koanf.Koanf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k := koanf.New(delim)
	if err := parse(k, data, format); err != nil {
		return nil, err
	}
	return k, nil
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatJSON:
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parse(k *koanf.Koanf, data []byte, format Format) error {
	p, err := parserFor(format)
	if err != nil {
		return err
	}
	if err := k.Load(rawbytes.Provider(data), p); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
