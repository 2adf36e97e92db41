package xmongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config 是图存储连接配置。
type Config struct {
	// URI 连接串，如 mongodb://localhost:27017/?replicaSet=rs0。
	URI string `koanf:"uri"`

	// Database 图数据所在数据库。
	Database string `koanf:"database"`

	// AppName 上报给服务端的应用名。
	AppName string `koanf:"app_name"`

	// ConnectTimeout 建立连接超时，0 使用 driver 默认值。
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// MaxPoolSize 连接池上限，0 使用 driver 默认值。
	MaxPoolSize uint64 `koanf:"max_pool_size"`

	// HealthTimeout 健康检查超时，0 使用 DefaultHealthTimeout。
	HealthTimeout time.Duration `koanf:"health_timeout"`

	// WriteTimeout 写入兜底超时，0 使用 DefaultWriteTimeout。
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// Open 按配置连接 MongoDB 并执行一次健康检查。
// 健康检查失败时断开连接并返回错误。opts 在配置之后应用。
func Open(ctx context.Context, cfg Config, opts ...Option) (Mongo, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if cfg.URI == "" {
		return nil, ErrEmptyURI
	}

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		clientOpts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("xmongo connect: %w", err)
	}

	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithHealthTimeout(cfg.HealthTimeout))
	if cfg.WriteTimeout > 0 {
		all = append(all, WithWriteTimeout(cfg.WriteTimeout))
	}
	all = append(all, opts...)

	m, err := New(client, all...)
	if err != nil {
		return nil, err
	}
	if err := m.Health(ctx); err != nil {
		_ = m.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return m, nil
}
