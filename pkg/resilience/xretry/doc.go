// Package xretry 提供基于 [avast/retry-go/v5] 的重试执行器。
//
// Retryer 组合重试次数、指数退避和可重试判定：
//
//	r := xretry.NewRetryer(
//	    xretry.WithAttempts(3),
//	    xretry.WithRetryIf(xmongo.IsTransient),
//	)
//	v, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) (int, error) {
//	    return writeBatch(ctx)
//	})
//
// 实现 Retryable() bool 的错误（如熔断器打开）按其返回值判定，优先于 RetryIf。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
