package xtx

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// probeResource 记录作用域上的调用次数和顺序。
type probeResource struct {
	opens, commits, closes, releases atomic.Int32

	openErr, commitErr, closeErr error

	mu    sync.Mutex
	calls []string
}

func (r *probeResource) record(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *probeResource) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *probeResource) OpenScope(context.Context) (Scope, error) {
	r.opens.Add(1)
	r.record("open")
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &probeScope{r: r}, nil
}

type probeScope struct {
	r *probeResource
}

func (s *probeScope) Commit(context.Context) error {
	s.r.commits.Add(1)
	s.r.record("commit")
	return s.r.commitErr
}

func (s *probeScope) Close(context.Context) error {
	s.r.closes.Add(1)
	s.r.record("close")
	return s.r.closeErr
}

// releasingResource 额外实现 Releaser。
type releasingResource struct {
	probeResource
	releaseErr error
}

func (r *releasingResource) Release(context.Context) error {
	r.releases.Add(1)
	r.record("release")
	return r.releaseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestExecutor 创建测试用 Executor，测试结束时关闭其 pool。
func newTestExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	base := []Option{
		WithLogger(discardLogger()),
		WithPoolConfig(xpool.Config{MinWorkers: 1, MaxWorkers: 4, QueueCapacity: 16}),
		WithPoolOptions(xpool.WithLogger(discardLogger())),
	}
	e, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}
