package xmongo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/omeyang/ontoimport/pkg/storage/xtx"
)

var (
	_ xtx.Resource      = (*txResource)(nil)
	_ xtx.ContextBinder = (*txScope)(nil)
)

// Resource 返回基于会话和事务的 xtx.Resource。
func (w *mongoWrapper) Resource(opts ...ResourceOption) xtx.Resource {
	r := &txResource{w: w}
	for _, opt := range opts {
		if opt != nil {
			opt(&r.opts)
		}
	}
	return r
}

// txResource 每次 OpenScope 启动一个会话并开启事务。
type txResource struct {
	w    *mongoWrapper
	opts resourceOptions
}

// OpenScope 启动会话并开启事务。
func (r *txResource) OpenScope(ctx context.Context) (xtx.Scope, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if r.w.closed.Load() {
		return nil, ErrClosed
	}

	sess, err := r.w.clientOps.startSession(r.opts.session...)
	if err != nil {
		return nil, fmt.Errorf("xmongo start session: %w", err)
	}
	if err := sess.StartTransaction(r.opts.transaction...); err != nil {
		sess.EndSession(ctx)
		return nil, fmt.Errorf("xmongo start transaction: %w", err)
	}

	r.w.scopesOpened.Add(1)
	return &txScope{w: r.w, sess: sess}, nil
}

// txScope 是一个进行中的事务。
type txScope struct {
	w    *mongoWrapper
	sess session

	// commitAttempted 提交后不再中止：提交失败时事务已由服务端终结，
	// EndSession 会清理残留状态。
	commitAttempted bool
	closed          atomic.Bool
}

// Bind 将会话绑定到任务 ctx。
func (s *txScope) Bind(ctx context.Context) context.Context {
	return s.sess.bind(ctx)
}

// Commit 提交事务。
func (s *txScope) Commit(ctx context.Context) error {
	s.commitAttempted = true
	if err := s.sess.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("xmongo commit: %w", err)
	}
	s.w.scopesCommitted.Add(1)
	return nil
}

// Close 幂等。未提交时中止事务，随后结束会话。
func (s *txScope) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer s.sess.EndSession(ctx)

	if s.commitAttempted {
		return nil
	}
	s.w.scopesAborted.Add(1)
	if err := s.sess.AbortTransaction(ctx); err != nil {
		return fmt.Errorf("xmongo abort: %w", err)
	}
	return nil
}
