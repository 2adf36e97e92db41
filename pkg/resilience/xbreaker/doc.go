// Package xbreaker 基于 [sony/gobreaker/v2] 提供熔断器。
//
// 连续失败达到阈值后熔断器打开，后续调用立即返回 *BreakerError，
// 经过 Timeout 后进入半开状态放行探测请求。
//
// 调用方 context 取消或超时不计为失败。*BreakerError 实现 Retryable() 返回 false，
// 与 xretry 组合时熔断错误不会被重试。
//
// [sony/gobreaker/v2]: https://github.com/sony/gobreaker
package xbreaker
