package xpool

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// maxWorkers worker 数量上限。
	maxWorkers = 1 << 16

	// maxQueueCapacity 队列容量上限。
	maxQueueCapacity = 1 << 24

	// queuePerWorker 默认队列容量相对 MaxWorkers 的倍数。
	queuePerWorker = 25

	// DefaultIdleTimeout 超出 MinWorkers 的 worker 空闲退出时间。
	DefaultIdleTimeout = 30 * time.Second

	// DefaultBackpressureInterval 背压重试前调用方的停顿时间。
	DefaultBackpressureInterval = 100 * time.Nanosecond
)

// Config 定义 pool 的容量配置。
//
// 零值字段在 Normalize 时使用默认值填充：
//   - MaxWorkers：runtime.GOMAXPROCS(0) * 2
//   - MinWorkers：MaxWorkers / 2
//   - QueueCapacity：MaxWorkers * 25
//   - IdleTimeout：30s
//   - BackpressureInterval：100ns
//   - MaxBackpressureRetries：0（不限，仅受 context 约束）
//
// MinWorkers 仅在 MaxWorkers 同样未设置时填充默认值；
// 显式设置 MaxWorkers 时 MinWorkers 的零值即表示不保留常驻 worker。
type Config struct {
	// MinWorkers 常驻 worker 数下限，不受 IdleTimeout 影响。
	MinWorkers int `koanf:"min_workers"`

	// MaxWorkers worker 数上限。
	MaxWorkers int `koanf:"max_workers"`

	// IdleTimeout 超出 MinWorkers 的 worker 空闲多久后退出。
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// QueueCapacity 待执行任务队列容量。
	QueueCapacity int `koanf:"queue_capacity"`

	// BackpressureInterval 背压时每次重试前调用方停顿的时间。
	BackpressureInterval time.Duration `koanf:"backpressure_interval"`

	// MaxBackpressureRetries 单次提交最多重试次数，0 表示不限。
	MaxBackpressureRetries int `koanf:"max_backpressure_retries"`
}

// DefaultConfig 返回基于当前可用并行度的默认配置。
func DefaultConfig() Config {
	var cfg Config
	cfg.Normalize()
	return cfg
}

// Normalize 为零值字段填充默认值。
func (c *Config) Normalize() {
	if c.MaxWorkers == 0 {
		c.MaxWorkers = runtime.GOMAXPROCS(0) * 2
		if c.MinWorkers == 0 {
			c.MinWorkers = c.MaxWorkers / 2
		}
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = c.MaxWorkers * queuePerWorker
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.BackpressureInterval == 0 {
		c.BackpressureInterval = DefaultBackpressureInterval
	}
}

// Validate 校验配置取值范围。
func (c Config) Validate() error {
	if c.MaxWorkers < 1 || c.MaxWorkers > maxWorkers {
		return fmt.Errorf("%w: max_workers=%d, want 1~%d", ErrInvalidWorkers, c.MaxWorkers, maxWorkers)
	}
	if c.MinWorkers < 0 || c.MinWorkers > c.MaxWorkers {
		return fmt.Errorf("%w: min_workers=%d, want 0~%d", ErrInvalidWorkers, c.MinWorkers, c.MaxWorkers)
	}
	if c.QueueCapacity < 1 || c.QueueCapacity > maxQueueCapacity {
		return fmt.Errorf("%w: queue_capacity=%d, want 1~%d", ErrInvalidQueueCapacity, c.QueueCapacity, maxQueueCapacity)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("%w: idle_timeout=%s", ErrInvalidIdleTimeout, c.IdleTimeout)
	}
	if c.BackpressureInterval < 0 {
		return fmt.Errorf("%w: backpressure_interval=%s", ErrInvalidBackpressure, c.BackpressureInterval)
	}
	if c.MaxBackpressureRetries < 0 {
		return fmt.Errorf("%w: max_backpressure_retries=%d", ErrInvalidBackpressure, c.MaxBackpressureRetries)
	}
	return nil
}
