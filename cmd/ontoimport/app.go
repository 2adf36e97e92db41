package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omeyang/ontoimport/pkg/observability/xlog"
	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
	"github.com/omeyang/ontoimport/pkg/resilience/xbreaker"
	"github.com/omeyang/ontoimport/pkg/resilience/xretry"
	"github.com/omeyang/ontoimport/pkg/semantics/ximport"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/storage/xgraph"
	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
	"github.com/omeyang/ontoimport/pkg/storage/xtx"
	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// app 持有一次命令执行所需的全部组件，按创建的逆序关闭。
type app struct {
	cfg      Config
	logger   *slog.Logger
	level    *slog.LevelVar
	observer xmetrics.Observer
	tel      *telemetry
	mongo    xmongo.Mongo
	executor *xtx.Executor
	importer *ximport.Importer

	closers []func(ctx context.Context) error
}

func newLogger(cfg LogConfig) (*slog.Logger, *slog.LevelVar, func() error, error) {
	b := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetAddSource(cfg.AddSource).
		SetAttrs(slog.String("service", "ontoimport"), slog.String("version", Version))
	if cfg.File != "" {
		b.SetRotation(cfg.File, cfg.Rotation)
	}
	return b.Build()
}

// newBaseApp 创建日志和可观测性组件。
func newBaseApp(cfg Config) (*app, error) {
	logger, level, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, level: level, observer: xmetrics.NoopObserver{}}
	a.onClose(func(context.Context) error { return closeLog() })

	if cfg.Metrics.Enabled {
		tel, err := newTelemetry(logger)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.tel, a.observer = tel, tel.observer
		a.onClose(tel.Shutdown)
	}
	return a, nil
}

// openMongo 连接图存储。
func (a *app) openMongo(ctx context.Context) error {
	m, err := xmongo.Open(ctx, a.cfg.Mongo, xmongo.WithObserver(a.observer))
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	a.mongo = m
	a.onClose(m.Close)
	return nil
}

// newApp 创建导入所需的完整组件。
func newApp(ctx context.Context, cfg Config) (a *app, err error) {
	a, err = newBaseApp(cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	if err = a.openMongo(ctx); err != nil {
		return nil, err
	}

	a.executor, err = xtx.New(
		xtx.WithPoolConfig(cfg.Pool),
		xtx.WithPoolOptions(xpool.WithLogger(a.logger), xpool.WithName("ontoimport")),
		xtx.WithTimeout(cfg.Executor.Timeout),
		xtx.WithRecognized(xbreaker.ErrOpenState, xbreaker.ErrTooManyRequests),
		xtx.WithLogger(a.logger),
		xtx.WithObserver(a.observer),
	)
	if err != nil {
		return nil, fmt.Errorf("init executor: %w", err)
	}
	a.onClose(func(context.Context) error { return a.executor.Close() })
	if a.tel != nil {
		if err = a.registerPoolMetrics(); err != nil {
			return nil, err
		}
	}

	store, err := xgraph.NewMongoStore(a.mongo, cfg.Mongo.Database,
		xgraph.WithCollections(cfg.Graph.Vertices, cfg.Graph.Edges),
		xgraph.WithBatchSize(cfg.Graph.BatchSize),
	)
	if err != nil {
		return nil, err
	}
	if err = store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	sink, err := ximport.NewMongoReportSink(a.mongo, cfg.Mongo.Database, cfg.Graph.Reports)
	if err != nil {
		return nil, err
	}

	mapper, err := newMapper(cfg.Import)
	if err != nil {
		return nil, err
	}

	a.importer, err = ximport.New(store, a.mongo.Resource(),
		ximport.WithBatchSize(cfg.Import.BatchSize),
		ximport.WithConcurrency(cfg.Import.Concurrency),
		ximport.WithLogger(a.logger),
		ximport.WithObserver(a.observer),
		ximport.WithMapper(mapper),
		ximport.WithExecutor(a.executor),
		ximport.WithRetryer(newRetryer(cfg.Import.Retry, a.logger)),
		ximport.WithBreaker(newBreaker(cfg.Import.Breaker, a.logger)),
		ximport.WithReportSink(sink),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newMapper(cfg ImportConfig) (*xrdf.Mapper, error) {
	mode, err := xrdf.ParseVocabMode(cfg.VocabMode)
	if err != nil {
		return nil, err
	}
	return xrdf.NewMapper(
		xrdf.WithVocabMode(mode),
		xrdf.WithPrefixes(cfg.Prefixes),
		xrdf.WithTypesToLabels(cfg.TypesToLabels),
		xrdf.WithResourceLabel(cfg.ResourceLabel),
		xrdf.WithLanguage(cfg.Language),
	)
}

func newRetryer(cfg RetryConfig, logger *slog.Logger) *xretry.Retryer {
	return xretry.NewRetryer(
		xretry.WithAttempts(cfg.Attempts),
		xretry.WithBackoff(cfg.Delay, cfg.MaxDelay),
		xretry.WithRetryIf(xmongo.IsTransient),
		xretry.WithOnRetry(func(attempt int, err error) {
			logger.Warn("retrying transaction", slog.Int("attempt", attempt), slog.Any("error", err))
		}),
	)
}

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *xbreaker.Breaker {
	return xbreaker.NewBreaker("graph-store",
		xbreaker.WithFailureThreshold(cfg.FailureThreshold),
		xbreaker.WithTimeout(cfg.Timeout),
		xbreaker.WithOnStateChange(func(name string, from, to xbreaker.State) {
			logger.Warn("breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		}),
	)
}

func (a *app) registerPoolMetrics() error {
	unregister, err := xmetrics.RegisterPool(a.tel.meters, "ontoimport", a.executor.Stats)
	if err != nil {
		return err
	}
	a.onClose(func(context.Context) error { return unregister() })
	return nil
}

func (a *app) onClose(fn func(ctx context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close 按逆序关闭组件，可重复调用。
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
