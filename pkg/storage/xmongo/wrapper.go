package xmongo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	mongoComponent = "xmongo"

	// defaultBatchSize 批量写入默认每批文档数。
	defaultBatchSize = 1000

	// maxBatchSize 批量写入每批文档数上限，避免单次请求超过 16MB BSON 限制。
	maxBatchSize = 10000
)

// mongoWrapper 实现 Mongo 接口。
type mongoWrapper struct {
	client    *mongo.Client
	clientOps clientOperations
	options   *Options

	pingCount  atomic.Int64
	pingErrors atomic.Int64

	scopesOpened    atomic.Int64
	scopesCommitted atomic.Int64
	scopesAborted   atomic.Int64

	closed atomic.Bool
}

// Client 返回底层 MongoDB 客户端。
// 不检查 closed 状态，mongo.Client 在 Disconnect 后会自行返回明确错误。
func (w *mongoWrapper) Client() *mongo.Client {
	return w.client
}

// Health 执行健康检查。
func (w *mongoWrapper) Health(ctx context.Context) (err error) {
	if ctx == nil {
		return ErrNilContext
	}
	if w.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: mongoComponent,
		Operation: "health",
		Kind:      xmetrics.KindClient,
		Attrs:     []xmetrics.Attr{xmetrics.String("db.system", "mongodb")},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err})
	}()

	w.pingCount.Add(1)

	ctx, cancel := context.WithTimeout(ctx, w.options.HealthTimeout)
	defer cancel()

	if err = w.clientOps.Ping(ctx, readpref.Primary()); err != nil {
		w.pingErrors.Add(1)
		return fmt.Errorf("xmongo health: %w", err)
	}
	return nil
}

// Stats 返回统计信息。
func (w *mongoWrapper) Stats() Stats {
	s := Stats{
		PingCount:       w.pingCount.Load(),
		PingErrors:      w.pingErrors.Load(),
		ScopesOpened:    w.scopesOpened.Load(),
		ScopesCommitted: w.scopesCommitted.Load(),
		ScopesAborted:   w.scopesAborted.Load(),
	}
	if w.clientOps != nil {
		s.SessionsInProgress = w.clientOps.NumberSessionsInProgress()
	}
	return s
}

// Close 断开 MongoDB 连接。重复调用返回 ErrClosed，并发安全。
//
// nil context 替换为 context.Background()，关闭操作不因 nil ctx 失败。
// Disconnect 失败时不回滚 closed 状态。
func (w *mongoWrapper) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !w.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if w.clientOps == nil {
		return nil
	}
	if err := w.clientOps.Disconnect(ctx); err != nil {
		return fmt.Errorf("xmongo close: %w", err)
	}
	return nil
}

// BulkInsert 批量插入。ctx 中绑定的会话（如事务作用域）会被 driver 自动使用。
func (w *mongoWrapper) BulkInsert(ctx context.Context, coll *mongo.Collection, docs []any, opts BulkOptions) (*BulkResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if w.closed.Load() {
		return nil, ErrClosed
	}
	if coll == nil {
		return nil, ErrNilCollection
	}
	return w.bulkInsertInternal(ctx, &collectionAdapter{coll: coll}, docs, opts)
}

// BulkUpsert 批量 upsert。ctx 中绑定的会话会被 driver 自动使用。
func (w *mongoWrapper) BulkUpsert(ctx context.Context, coll *mongo.Collection, upserts []Upsert, opts BulkOptions) (*BulkResult, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if w.closed.Load() {
		return nil, ErrClosed
	}
	if coll == nil {
		return nil, ErrNilCollection
	}
	return w.bulkUpsertInternal(ctx, &collectionAdapter{coll: coll}, upserts, opts)
}

// bulkInsertInternal 批量插入内部实现，使用接口便于测试。
func (w *mongoWrapper) bulkInsertInternal(ctx context.Context, coll collectionOperations, docs []any, opts BulkOptions) (*BulkResult, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocs
	}
	insertOpts := options.InsertMany().SetOrdered(opts.Ordered)
	return observeBulk(ctx, w, coll, "bulk_insert", docs, opts, func(ctx context.Context, batch []any) (BulkResult, error) {
		res, err := coll.InsertMany(ctx, batch, insertOpts)
		if res == nil {
			return BulkResult{}, err
		}
		return BulkResult{InsertedCount: int64(len(res.InsertedIDs))}, err
	})
}

// bulkUpsertInternal 批量 upsert 内部实现，使用接口便于测试。
func (w *mongoWrapper) bulkUpsertInternal(ctx context.Context, coll collectionOperations, upserts []Upsert, opts BulkOptions) (*BulkResult, error) {
	if len(upserts) == 0 {
		return nil, ErrEmptyDocs
	}
	writeOpts := options.BulkWrite().SetOrdered(opts.Ordered)
	return observeBulk(ctx, w, coll, "bulk_upsert", upserts, opts, func(ctx context.Context, batch []Upsert) (BulkResult, error) {
		models := make([]mongo.WriteModel, len(batch))
		for i, u := range batch {
			models[i] = mongo.NewUpdateOneModel().SetFilter(u.Filter).SetUpdate(u.Update).SetUpsert(true)
		}
		res, err := coll.BulkWrite(ctx, models, writeOpts)
		if res == nil {
			return BulkResult{}, err
		}
		return BulkResult{
			InsertedCount: res.InsertedCount,
			MatchedCount:  res.MatchedCount,
			ModifiedCount: res.ModifiedCount,
			UpsertedCount: res.UpsertedCount,
		}, err
	})
}

// observeBulk 为批量写入添加兜底超时和观测，然后分批执行。
func observeBulk[T any](ctx context.Context, w *mongoWrapper, coll collectionOperations, operation string, items []T, opts BulkOptions,
	write func(ctx context.Context, batch []T) (BulkResult, error)) (result *BulkResult, err error) {
	ctx, cancel := applyTimeout(ctx, w.options.WriteTimeout)
	defer cancel()

	ctx, span := xmetrics.Start(ctx, w.options.Observer, xmetrics.SpanOptions{
		Component: mongoComponent,
		Operation: operation,
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "mongodb"),
			xmetrics.String("db.collection", coll.Name()),
			xmetrics.Int("documents", len(items)),
		},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err})
	}()

	result = executeBatches(ctx, operation, items, normalizeBatchSize(opts.BatchSize), opts.Ordered, write)
	if len(result.Errors) > 0 {
		// 同时返回结果和合并的错误，调用方既能判断失败也能拿到部分成功的计数
		err = errors.Join(result.Errors...)
	}
	return result, err
}

// executeBatches 分批写入。有序模式下遇到错误即停止。
func executeBatches[T any](ctx context.Context, operation string, items []T, batchSize int, ordered bool,
	write func(ctx context.Context, batch []T) (BulkResult, error)) *BulkResult {
	result := &BulkResult{}
	for i := 0; i < len(items); i += batchSize {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("xmongo %s: context done before batch %d: %w", operation, i/batchSize, err))
			break
		}

		end := min(i+batchSize, len(items))
		partial, err := write(ctx, items[i:end])
		result.add(partial)
		if err == nil {
			continue
		}
		result.Errors = append(result.Errors, fmt.Errorf("xmongo %s: %w", operation, err))
		if ordered || ctx.Err() != nil {
			break
		}
	}
	return result
}

func normalizeBatchSize(n int) int {
	switch {
	case n < 1:
		return defaultBatchSize
	case n > maxBatchSize:
		return maxBatchSize
	default:
		return n
	}
}

// applyTimeout 当调用方未设置 deadline 且 timeout > 0 时，添加超时兜底。
func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			return context.WithTimeout(ctx, timeout)
		}
	}
	return ctx, func() {}
}
