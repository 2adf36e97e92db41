package ximport

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omeyang/ontoimport/pkg/resilience/xretry"
	"github.com/omeyang/ontoimport/pkg/storage/xgraph"
	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
	"github.com/omeyang/ontoimport/pkg/storage/xtx"
	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// fakeStore 记录每次 Apply 的变更，fail 返回第 n 次（从 1 开始）调用的错误。
type fakeStore struct {
	mu    sync.Mutex
	muts  []xgraph.Mutation
	calls int
	fail  func(call int) error
}

func (s *fakeStore) Apply(_ context.Context, m xgraph.Mutation) (xgraph.Applied, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		if err := s.fail(s.calls); err != nil {
			return xgraph.Applied{}, err
		}
	}
	s.muts = append(s.muts, m)
	return xgraph.Applied{Vertices: int64(len(m.Vertices)), Edges: int64(len(m.Edges))}, nil
}

func (s *fakeStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeStore) Mutations() []xgraph.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]xgraph.Mutation(nil), s.muts...)
}

// fakeResource 统计作用域调用次数。
type fakeResource struct {
	opens, commits, closes atomic.Int32
}

func (r *fakeResource) OpenScope(context.Context) (xtx.Scope, error) {
	r.opens.Add(1)
	return &fakeScope{r: r}, nil
}

type fakeScope struct{ r *fakeResource }

func (s *fakeScope) Commit(context.Context) error {
	s.r.commits.Add(1)
	return nil
}

func (s *fakeScope) Close(context.Context) error {
	s.r.closes.Add(1)
	return nil
}

// fakeSink 收集导入记录。
type fakeSink struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (s *fakeSink) Record(_ context.Context, reports ...*Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, reports...)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(t *testing.T) *xtx.Executor {
	t.Helper()
	e, err := xtx.New(
		xtx.WithLogger(discardLogger()),
		xtx.WithPoolConfig(xpool.Config{MinWorkers: 1, MaxWorkers: 4, QueueCapacity: 16}),
		xtx.WithPoolOptions(xpool.WithLogger(discardLogger())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func fastRetryer() *xretry.Retryer {
	return xretry.NewRetryer(
		xretry.WithRetryIf(xmongo.IsTransient),
		xretry.WithBackoff(time.Millisecond, time.Millisecond),
	)
}

func newTestImporter(t *testing.T, store xgraph.Store, res xtx.Resource, opts ...Option) *Importer {
	t.Helper()
	base := []Option{
		WithLogger(discardLogger()),
		WithExecutor(newTestExecutor(t)),
		WithRetryer(fastRetryer()),
	}
	im, err := New(store, res, append(base, opts...)...)
	require.NoError(t, err)
	return im
}
