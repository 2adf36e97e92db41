package xtx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

func TestNew_InvalidPoolConfig(t *testing.T) {
	e, err := New(WithPoolConfig(xpool.Config{MinWorkers: 10, MaxWorkers: 2}))
	assert.Nil(t, e)
	assert.ErrorIs(t, err, xpool.ErrInvalidWorkers)
}

func TestExecutor_LazyPool(t *testing.T) {
	e := newTestExecutor(t)
	assert.False(t, e.IsShutdown())

	p1, err := e.Pool()
	require.NoError(t, err)
	p2, err := e.Pool()
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Zero(t, e.Heals())
}

// 共享 pool 被关闭后，下一次 Run 使用新 pool 成功执行。
func TestExecutor_SelfHeal(t *testing.T) {
	e := newTestExecutor(t)
	res := &probeResource{}

	old, err := e.Pool()
	require.NoError(t, err)

	e.Shutdown()
	e.Shutdown()
	assert.True(t, e.IsShutdown())
	require.NoError(t, old.Close())

	v, err := Run(context.Background(), e, res, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	cur, err := e.Pool()
	require.NoError(t, err)
	assert.NotSame(t, old, cur)
	assert.False(t, cur.IsShutdown())
	assert.Equal(t, int64(1), e.Heals())
}

// 并发调用方同时观察到关闭的 pool 时，只有一个新 pool 被安装。
func TestExecutor_ConcurrentSelfHeal(t *testing.T) {
	e := newTestExecutor(t)
	old, err := e.Pool()
	require.NoError(t, err)
	require.NoError(t, old.Close())

	const callers = 32
	var wg sync.WaitGroup
	pools := make([]*xpool.Pool, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Run(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return i, nil })
			assert.NoError(t, err)
			pools[i], _ = e.Pool()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), e.Heals())
	for _, p := range pools {
		assert.Same(t, pools[0], p)
	}
}

func TestExecutor_Default(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestExecutor_NilReceiver(t *testing.T) {
	var e *Executor
	_, err := e.Pool()
	assert.ErrorIs(t, err, ErrNilExecutor)
}

func TestError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &Error{Kind: ErrSubmission, Op: "submit", Err: cause}

	assert.Equal(t, "xtx: submission failed [submit]: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, ErrSubmission)
	assert.NotErrorIs(t, err, ErrScope)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "xtx: task execution failed [run]", (&Error{Kind: ErrTaskFailed, Op: "run"}).Error())
}

func TestExecutor_Stats(t *testing.T) {
	e := newTestExecutor(t)
	assert.Equal(t, xpool.Stats{}, e.Stats())

	_, err := Run(context.Background(), e, &probeResource{}, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Stats().Submitted)
}
