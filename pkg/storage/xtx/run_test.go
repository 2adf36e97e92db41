package xtx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

func TestRun_CommitsOnSuccess(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}

	v, err := Run(context.Background(), e, res, func(context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int32(1), res.commits.Load())
	assert.Equal(t, int32(1), res.closes.Load())
	assert.Equal(t, []string{"open", "commit", "close"}, res.Calls())
}

func TestRun_RollsBackOnFailure(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}

	_, err := Run(context.Background(), e, res, func(context.Context) (int, error) {
		return 0, errors.New("constraint violated")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskFailed)
	assert.Equal(t, "constraint violated", errors.Unwrap(err).Error())
	assert.Zero(t, res.commits.Load())
	assert.Equal(t, int32(1), res.closes.Load())
}

func TestRun_RecognizedErrorsPassThrough(t *testing.T) {
	errDomain := errors.New("duplicate vertex")
	e := newTestExecutor(t, WithRecognized(errDomain))

	tests := []struct {
		name string
		err  error
	}{
		{"registered sentinel", errDomain},
		{"wrapped sentinel", errors.Join(errors.New("batch 3"), errDomain)},
		{"context canceled", context.Canceled},
		{"typed error", &Error{Kind: ErrScope, Op: "custom", Err: errors.New("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), e, &probeResource{}, func(context.Context) (struct{}, error) {
				return struct{}{}, tt.err
			})
			assert.Same(t, tt.err, err)
		})
	}
}

func TestRun_PanicIsTaskFailure(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}

	_, err := Run(context.Background(), e, res, func(context.Context) (int, error) {
		panic("malformed literal")
	})

	assert.ErrorIs(t, err, ErrTaskFailed)
	var pe *xpool.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "malformed literal", pe.Value)
	assert.Zero(t, res.commits.Load())
	assert.Equal(t, int32(1), res.closes.Load())
}

func TestRun_ScopeErrors(t *testing.T) {
	e := newTestExecutor(t)
	task := func(context.Context) (int, error) { return 1, nil }

	t.Run("open", func(t *testing.T) {
		res := &probeResource{openErr: errors.New("no session")}
		_, err := Run(context.Background(), e, res, task)

		var xe *Error
		require.ErrorAs(t, err, &xe)
		assert.Equal(t, "open", xe.Op)
		assert.ErrorIs(t, err, ErrScope)
		assert.Zero(t, res.closes.Load())
	})

	t.Run("commit", func(t *testing.T) {
		res := &probeResource{commitErr: errors.New("write conflict")}
		_, err := Run(context.Background(), e, res, task)

		assert.ErrorIs(t, err, ErrScope)
		assert.Contains(t, err.Error(), "[commit]")
		assert.Equal(t, int32(1), res.closes.Load())
	})

	t.Run("close after failure", func(t *testing.T) {
		res := &probeResource{closeErr: errors.New("session lost")}
		boom := errors.New("boom")
		_, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 0, boom })

		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, ErrScope)
		assert.Equal(t, int32(1), res.closes.Load())
	})
}

func TestRun_Releaser(t *testing.T) {
	e := newTestExecutor(t)

	t.Run("released after commit", func(t *testing.T) {
		res := &releasingResource{}
		_, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 1, nil })

		require.NoError(t, err)
		assert.Equal(t, []string{"open", "commit", "release", "close"}, res.Calls())
	})

	t.Run("not released on failure", func(t *testing.T) {
		res := &releasingResource{}
		_, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 0, errors.New("x") })

		require.Error(t, err)
		assert.Zero(t, res.releases.Load())
	})

	t.Run("release error", func(t *testing.T) {
		res := &releasingResource{releaseErr: errors.New("handle busy")}
		_, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 1, nil })

		assert.ErrorIs(t, err, ErrScope)
		assert.Equal(t, int32(1), res.commits.Load())
		assert.Equal(t, int32(1), res.closes.Load())
	})
}

func TestRun_CommitPrecedesClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := NewMockResource(ctrl)
	scope := NewMockScope(ctrl)

	gomock.InOrder(
		res.EXPECT().OpenScope(gomock.Any()).Return(scope, nil),
		scope.EXPECT().Commit(gomock.Any()).Return(nil),
		scope.EXPECT().Close(gomock.Any()).Return(nil),
	)

	e := newTestExecutor(t)
	v, err := Run(context.Background(), e, res, func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRun_FailureNeverCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := NewMockResource(ctrl)
	scope := NewMockScope(ctrl)

	res.EXPECT().OpenScope(gomock.Any()).Return(scope, nil)
	scope.EXPECT().Commit(gomock.Any()).Times(0)
	scope.EXPECT().Close(gomock.Any()).Return(nil).Times(1)

	e := newTestExecutor(t)
	_, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 0, errors.New("x") })
	require.Error(t, err)
}

type sessionKey struct{}

func TestRun_ContextBinder(t *testing.T) {
	ctrl := gomock.NewController(t)
	res := NewMockResource(ctrl)
	scope := struct {
		*MockScope
		*MockContextBinder
	}{NewMockScope(ctrl), NewMockContextBinder(ctrl)}

	res.EXPECT().OpenScope(gomock.Any()).Return(scope, nil)
	scope.MockContextBinder.EXPECT().Bind(gomock.Any()).DoAndReturn(func(ctx context.Context) context.Context {
		return context.WithValue(ctx, sessionKey{}, "session-1")
	})
	scope.MockScope.EXPECT().Commit(gomock.Any()).Return(nil)
	scope.MockScope.EXPECT().Close(gomock.Any()).Return(nil)

	e := newTestExecutor(t)
	got, err := Run(context.Background(), e, res, func(ctx context.Context) (any, error) {
		return ctx.Value(sessionKey{}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "session-1", got)
}

func TestRun_Timeout(t *testing.T) {
	e := newTestExecutor(t, WithTimeout(20*time.Millisecond))
	res := &probeResource{}

	start := time.Now()
	_, err := Run(context.Background(), e, res, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	// 超时任务不提交，作用域仍然关闭
	require.Eventually(t, func() bool { return res.closes.Load() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, res.commits.Load())
}

func TestRun_InvalidArgs(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}
	task := func(context.Context) (int, error) { return 0, nil }

	//nolint:staticcheck // 测试 nil context
	_, err := Run(nil, e, res, task)
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = Run(context.Background(), nil, res, task)
	assert.ErrorIs(t, err, ErrNilExecutor)

	_, err = Run[int](context.Background(), e, nil, task)
	assert.ErrorIs(t, err, ErrNilResource)

	_, err = Run[int](context.Background(), e, res, nil)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestRunAsync(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}

	futures := make([]*xpool.Future[int], 0, 10)
	for i := range 10 {
		f, err := RunAsync(context.Background(), e, res, func(context.Context) (int, error) { return i * i, nil })
		require.NoError(t, err)
		futures = append(futures, f)
	}

	for i, f := range futures {
		v, err := f.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, int32(10), res.commits.Load())
	assert.Equal(t, int32(10), res.closes.Load())
}

func TestRunAsync_RawTaskError(t *testing.T) {
	e := newTestExecutor(t)
	boom := errors.New("boom")

	f, err := RunAsync(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return 0, boom })
	require.NoError(t, err)

	_, err = f.Get(context.Background())
	assert.Same(t, boom, err)
}

func TestRun_StateTransitions(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	e := newTestExecutor(t, WithStateHook(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}))

	_, err := Run(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, []State{StateCreated, StateSubmitted, StateRunning, StateCommitted}, states)
	states = nil
	mu.Unlock()

	_, err = Run(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return 0, errors.New("x") })
	require.Error(t, err)
	mu.Lock()
	assert.Equal(t, []State{StateCreated, StateSubmitted, StateRunning, StateRolledBack}, states)
	mu.Unlock()

	assert.True(t, StateCommitted.Terminal())
	assert.False(t, StateRunning.Terminal())
}

// 排队中的任务停留在 Created，worker 取出后才进入 Submitted。
func TestRun_QueuedTaskSubmittedWhenPickedUp(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	snapshot := func() []State {
		mu.Lock()
		defer mu.Unlock()
		return append([]State(nil), states...)
	}
	e := newTestExecutor(t,
		WithPoolConfig(xpool.Config{MaxWorkers: 1, QueueCapacity: 1}),
		WithStateHook(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}))

	release := make(chan struct{})
	started := make(chan struct{})
	first, err := RunAsync(context.Background(), e, &probeResource{}, func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	require.NoError(t, err)
	<-started

	second, err := RunAsync(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, []State{StateCreated, StateSubmitted, StateRunning, StateCreated}, snapshot())

	close(release)
	_, err = first.Get(context.Background())
	require.NoError(t, err)
	v, err := second.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	got := snapshot()
	require.Len(t, got, 8)
	assert.Equal(t, []State{StateSubmitted, StateRunning, StateCommitted}, got[5:])
}
