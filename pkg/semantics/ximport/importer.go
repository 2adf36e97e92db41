package ximport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/ontoimport/pkg/observability/xlog"
	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
	"github.com/omeyang/ontoimport/pkg/resilience/xbreaker"
	"github.com/omeyang/ontoimport/pkg/resilience/xretry"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/storage/xgraph"
	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
	"github.com/omeyang/ontoimport/pkg/storage/xtx"
)

// Importer 将文档按批写入图存储。并发安全，多个文件可同时导入。
type Importer struct {
	store xgraph.Store
	res   xtx.Resource
	opts  options
}

// New 创建 Importer。res 为每个批次提供事务作用域。
func New(store xgraph.Store, res xtx.Resource, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if res == nil {
		return nil, ErrNilResource
	}

	o := options{
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		observer:    xmetrics.NoopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.mapper == nil {
		m, err := xrdf.NewMapper()
		if err != nil {
			return nil, err
		}
		o.mapper = m
	}
	if o.executor == nil {
		o.executor = xtx.Default()
	}
	if o.retryer == nil {
		logger := o.logger
		o.retryer = xretry.NewRetryer(
			xretry.WithRetryIf(xmongo.IsTransient),
			xretry.WithOnRetry(func(attempt int, err error) {
				logger.Warn("ximport: retrying batch", slog.Int("attempt", attempt), slog.Any("error", err))
			}),
		)
	}
	if o.breaker == nil {
		o.breaker = xbreaker.NewBreaker("ximport.store")
	}
	return &Importer{store: store, res: res, opts: o}, nil
}

// Breaker 返回存储熔断器。
func (im *Importer) Breaker() *xbreaker.Breaker {
	return im.opts.breaker
}

// ImportFile 打开并导入 path。
func (im *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		rep := newReport(path)
		rep.finish(err)
		im.record(ctx, rep)
		return rep, err
	}
	defer func() { _ = f.Close() }()
	return im.Import(ctx, path, f)
}

// Import 导入 r 中的文档，name 用于识别格式和记录。
//
// 每批语句在独立事务中写入，失败前已提交的批次不会回滚。
// 总是返回 Report，失败时 Report.Outcome 为 failure，错误同时作为返回值。
func (im *Importer) Import(ctx context.Context, name string, r io.Reader) (*Report, error) {
	rep := newReport(name)
	ctx = xlog.WithFile(xlog.WithImport(ctx, rep.ID), name)

	err := im.run(ctx, rep, r)
	rep.finish(err)

	if err != nil {
		im.opts.logger.WarnContext(ctx, "ximport: import failed", slog.Any("report", rep))
	} else {
		im.opts.logger.InfoContext(ctx, "ximport: import finished", slog.Any("report", rep))
	}
	im.record(ctx, rep)
	return rep, err
}

// baseIRI 返回文件的 file:// IRI，作为文档中相对 IRI 的基准。
func baseIRI(name string) string {
	if name == "" {
		return ""
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func newReport(name string) *Report {
	return &Report{ID: uuid.NewString(), File: name, Started: time.Now()}
}

func (im *Importer) record(ctx context.Context, rep *Report) {
	if im.opts.sink == nil {
		return
	}
	if err := im.opts.sink.Record(context.WithoutCancel(ctx), rep); err != nil {
		im.opts.logger.WarnContext(ctx, "ximport: record report failed", slog.Any("error", err))
	}
}

func (im *Importer) run(ctx context.Context, rep *Report, r io.Reader) (err error) {
	if r == nil {
		return ErrNilReader
	}
	format, err := im.detect(rep.File)
	if err != nil {
		return err
	}
	rep.Format = format

	ctx, span := xmetrics.Start(ctx, im.opts.observer, xmetrics.SpanOptions{
		Component: "ximport",
		Operation: "import",
		Kind:      xmetrics.KindConsumer,
		Attrs:     []xmetrics.Attr{xmetrics.String("format", string(format))},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{
			xmetrics.Int64("statements", rep.Statements),
			xmetrics.Int64("batches", rep.Batches),
			xmetrics.Int64("vertices", rep.Vertices),
			xmetrics.Int64("edges", rep.Edges),
		}})
	}()

	p, err := xrdf.NewParser(r, format, xrdf.WithBaseIRI(baseIRI(rep.File)))
	if err != nil {
		return err
	}

	var vertices, edges atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.opts.concurrency)

	batch := make([]xrdf.Statement, 0, im.opts.batchSize)
	flush := func() {
		rep.Batches++
		seq, stmts := rep.Batches, batch
		batch = make([]xrdf.Statement, 0, im.opts.batchSize)
		// 达到并发上限时阻塞解析
		g.Go(func() error {
			applied, err := im.apply(gctx, seq, stmts)
			vertices.Add(applied.Vertices)
			edges.Add(applied.Edges)
			return err
		})
	}

	perr := p.Each(func(st xrdf.Statement) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rep.Statements++
		batch = append(batch, st)
		if len(batch) >= im.opts.batchSize {
			flush()
		}
		return nil
	})
	if perr == nil && len(batch) > 0 {
		flush()
	}

	werr := g.Wait()
	rep.Vertices, rep.Edges = vertices.Load(), edges.Load()

	switch {
	case werr != nil:
		return werr
	case perr != nil:
		return fmt.Errorf("ximport parse: %w", perr)
	default:
		return nil
	}
}

func (im *Importer) detect(name string) (xrdf.Format, error) {
	if im.opts.format != "" {
		return im.opts.format, nil
	}
	if name == "" {
		return "", ErrEmptyName
	}
	return xrdf.FormatOf(name)
}

// apply 在一个事务中写入一批语句，瞬时错误重试整个事务。
func (im *Importer) apply(ctx context.Context, seq int64, stmts []xrdf.Statement) (xgraph.Applied, error) {
	mut := im.opts.mapper.Map(stmts)
	if mut.Empty() {
		return xgraph.Applied{}, nil
	}

	applied, err := xbreaker.Execute(ctx, im.opts.breaker, func() (xgraph.Applied, error) {
		return xretry.DoWithResult(ctx, im.opts.retryer, func(ctx context.Context) (xgraph.Applied, error) {
			f, err := xtx.RunAsync(ctx, im.opts.executor, im.res, func(ctx context.Context) (xgraph.Applied, error) {
				return im.store.Apply(ctx, mut)
			})
			if err != nil {
				return xgraph.Applied{}, err
			}
			return f.Get(ctx)
		})
	})
	if err != nil {
		return xgraph.Applied{}, fmt.Errorf("ximport batch %d: %w", seq, err)
	}

	im.opts.logger.DebugContext(ctx, "ximport: batch committed",
		slog.Int64("batch", seq),
		slog.Int("statements", len(stmts)),
		slog.Int64("vertices", applied.Vertices),
		slog.Int64("edges", applied.Edges),
	)
	return applied, nil
}
