package xmongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
)

// IsTransient 报告 err 是否为可整体重试的事务错误：
// 带 TransientTransactionError 或 UnknownTransactionCommitResult 标签的服务端错误，
// 以及网络错误。
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorLabel(labelTransientTransaction) || se.HasErrorLabel(labelUnknownCommitResult) {
			return true
		}
	}
	return mongo.IsNetworkError(err)
}
