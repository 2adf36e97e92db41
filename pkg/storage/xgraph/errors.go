package xgraph

import "errors"

var (
	// ErrNilMongo 表示传入的 xmongo.Mongo 为 nil。
	ErrNilMongo = errors.New("xgraph: nil mongo")

	// ErrEmptyDatabase 表示未指定数据库名。
	ErrEmptyDatabase = errors.New("xgraph: empty database name")

	// ErrEmptyKey 表示顶点或边缺少键。
	ErrEmptyKey = errors.New("xgraph: empty key")
)
