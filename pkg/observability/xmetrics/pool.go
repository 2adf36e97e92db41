package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// RegisterPool 把 worker pool 的状态注册为 observable gauge。
//
// stats 在每次采集时调用，返回当前 pool 的快照；pool 被替换后
// 由 stats 返回新 pool 的数据即可。返回的 unregister 用于注销回调。
func RegisterPool(mp metric.MeterProvider, name string, stats func() xpool.Stats) (unregister func() error, err error) {
	if stats == nil {
		return nil, ErrNilStatsFunc
	}
	meter := mp.Meter(defaultInstrumentationName)

	gauge := func(n, desc string) (metric.Int64ObservableGauge, error) {
		g, err := meter.Int64ObservableGauge("ontoimport.pool."+n, metric.WithDescription(desc))
		if err != nil {
			return nil, fmt.Errorf("%w: ontoimport.pool.%s: %w", ErrCreateInstrument, n, err)
		}
		return g, nil
	}

	workers, err := gauge("workers", "Live worker goroutines.")
	if err != nil {
		return nil, err
	}
	active, err := gauge("active", "Workers currently running a task.")
	if err != nil {
		return nil, err
	}
	queued, err := gauge("queued", "Tasks waiting in the queue.")
	if err != nil {
		return nil, err
	}
	backpressured, err := gauge("backpressured", "Submissions that entered backpressure.")
	if err != nil {
		return nil, err
	}

	set := metric.WithAttributes(attribute.String("pool", name))
	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(workers, int64(s.Workers), set)
		o.ObserveInt64(active, int64(s.Active), set)
		o.ObserveInt64(queued, int64(s.Queued), set)
		o.ObserveInt64(backpressured, s.Backpressured, set)
		return nil
	}, workers, active, queued, backpressured)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: register pool callback: %w", err)
	}
	return reg.Unregister, nil
}
