package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/ontoimport/pkg/config/xconf"
	"github.com/omeyang/ontoimport/pkg/observability/xlog"
	"github.com/omeyang/ontoimport/pkg/resilience/xbreaker"
	"github.com/omeyang/ontoimport/pkg/resilience/xretry"
	"github.com/omeyang/ontoimport/pkg/semantics/ximport"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/storage/xgraph"
	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// errInvalidConfig 表示配置取值无效。
var errInvalidConfig = errors.New("invalid config")

// Config 是 ontoimport 的完整配置。
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Mongo    xmongo.Config  `koanf:"mongo"`
	Graph    GraphConfig    `koanf:"graph"`
	Pool     xpool.Config   `koanf:"pool"`
	Executor ExecutorConfig `koanf:"executor"`
	Import   ImportConfig   `koanf:"import"`
	Watch    WatchConfig    `koanf:"watch"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// LogConfig 日志配置。File 非空时输出到轮转文件。
type LogConfig struct {
	Level     string               `koanf:"level"`
	Format    string               `koanf:"format"`
	AddSource bool                 `koanf:"add_source"`
	File      string               `koanf:"file"`
	Rotation  xlog.RotationOptions `koanf:"rotation"`
}

// GraphConfig 图存储集合配置。
type GraphConfig struct {
	Vertices  string `koanf:"vertices"`
	Edges     string `koanf:"edges"`
	Reports   string `koanf:"reports"`
	BatchSize int    `koanf:"batch_size"`
}

// ExecutorConfig 事务执行器配置。
type ExecutorConfig struct {
	// Timeout 单个事务的截止时间，0 表示不限。
	Timeout time.Duration `koanf:"timeout"`
}

// ImportConfig 导入配置。
type ImportConfig struct {
	BatchSize     int               `koanf:"batch_size"`
	Concurrency   int               `koanf:"concurrency"`
	VocabMode     string            `koanf:"vocab_mode"`
	Prefixes      map[string]string `koanf:"prefixes"`
	TypesToLabels bool              `koanf:"types_to_labels"`
	ResourceLabel string            `koanf:"resource_label"`
	Language      string            `koanf:"language"`
	Retry         RetryConfig       `koanf:"retry"`
	Breaker       BreakerConfig     `koanf:"breaker"`
}

// RetryConfig 批次事务重试配置。
type RetryConfig struct {
	Attempts int           `koanf:"attempts"`
	Delay    time.Duration `koanf:"delay"`
	MaxDelay time.Duration `koanf:"max_delay"`
}

// BreakerConfig 存储熔断配置。
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	Timeout          time.Duration `koanf:"timeout"`
}

// WatchConfig 收件目录配置。
type WatchConfig struct {
	Dir        string `koanf:"dir"`
	SuccessDir string `koanf:"success_dir"`
	FailureDir string `koanf:"failure_dir"`
	// Rescan cron 表达式，定期扫描收件目录中遗漏的文件，空表示不扫描。
	Rescan string `koanf:"rescan"`
	// Settle 文件最后一次写入后等待多久再导入。
	Settle time.Duration `koanf:"settle"`
}

// MetricsConfig 指标配置。启用时使用 OTel 全局 provider。
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

func defaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Mongo: xmongo.Config{
			URI:      "mongodb://localhost:27017/?replicaSet=rs0",
			Database: "ontology",
			AppName:  "ontoimport",
		},
		Graph: GraphConfig{
			Vertices: xgraph.DefaultVerticesCollection,
			Edges:    xgraph.DefaultEdgesCollection,
			Reports:  ximport.DefaultReportCollection,
		},
		Import: ImportConfig{
			BatchSize:     ximport.DefaultBatchSize,
			Concurrency:   ximport.DefaultConcurrency,
			VocabMode:     xrdf.VocabShorten.String(),
			TypesToLabels: true,
			ResourceLabel: xrdf.DefaultResourceLabel,
			Retry: RetryConfig{
				Attempts: xretry.DefaultAttempts,
				Delay:    xretry.DefaultDelay,
				MaxDelay: xretry.DefaultMaxDelay,
			},
			Breaker: BreakerConfig{
				FailureThreshold: xbreaker.DefaultFailureThreshold,
				Timeout:          xbreaker.DefaultTimeout,
			},
		},
		Watch: WatchConfig{
			Settle: defaultSettle,
		},
	}
}

// loadConfig 在默认配置上叠加配置文件，path 为空时只使用默认配置。
func loadConfig(path string) (Config, *xconf.Loader, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil, cfg.Validate()
	}
	l, err := xconf.New(path)
	if err != nil {
		return cfg, nil, err
	}
	if err := l.Unmarshal("", &cfg); err != nil {
		return cfg, nil, err
	}
	return cfg, l, cfg.Validate()
}

// Validate 校验配置。
func (c *Config) Validate() error {
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", errInvalidConfig, err)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("%w: mongo.uri is required", errInvalidConfig)
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("%w: mongo.database is required", errInvalidConfig)
	}
	pool := c.Pool
	pool.Normalize()
	if err := pool.Validate(); err != nil {
		return fmt.Errorf("%w: pool: %w", errInvalidConfig, err)
	}
	if c.Executor.Timeout < 0 {
		return fmt.Errorf("%w: executor.timeout=%s", errInvalidConfig, c.Executor.Timeout)
	}
	if c.Import.BatchSize < 1 {
		return fmt.Errorf("%w: import.batch_size=%d", errInvalidConfig, c.Import.BatchSize)
	}
	if c.Import.Concurrency < 1 {
		return fmt.Errorf("%w: import.concurrency=%d", errInvalidConfig, c.Import.Concurrency)
	}
	if _, err := xrdf.ParseVocabMode(c.Import.VocabMode); err != nil {
		return fmt.Errorf("%w: import.vocab_mode: %w", errInvalidConfig, err)
	}
	if c.Import.Retry.Attempts < 1 {
		return fmt.Errorf("%w: import.retry.attempts=%d", errInvalidConfig, c.Import.Retry.Attempts)
	}
	if c.Watch.Rescan != "" {
		if _, err := cron.ParseStandard(c.Watch.Rescan); err != nil {
			return fmt.Errorf("%w: watch.rescan: %w", errInvalidConfig, err)
		}
	}
	return nil
}

// redactURI 隐藏连接串中的密码。
func redactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := strings.IndexByte(rest, '@')
	if slash := strings.IndexByte(rest, '/'); at < 0 || (slash >= 0 && slash < at) {
		return uri
	}
	user, _, hasPassword := strings.Cut(rest[:at], ":")
	if !hasPassword {
		return uri
	}
	return scheme + "://" + user + ":xxxxx@" + rest[at+1:]
}
