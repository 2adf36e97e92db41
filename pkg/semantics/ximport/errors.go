package ximport

import "errors"

var (
	// ErrNilStore 表示图存储为 nil。
	ErrNilStore = errors.New("ximport: nil store")

	// ErrNilResource 表示事务资源为 nil。
	ErrNilResource = errors.New("ximport: nil resource")

	// ErrNilReader 表示输入为 nil。
	ErrNilReader = errors.New("ximport: nil reader")

	// ErrEmptyName 表示未提供文件名，无法识别格式。
	ErrEmptyName = errors.New("ximport: empty file name")

	// ErrNilMongo 表示 MongoReportSink 的 Mongo 为 nil。
	ErrNilMongo = errors.New("ximport: nil mongo")

	// ErrEmptyDatabase 表示未指定数据库名。
	ErrEmptyDatabase = errors.New("ximport: empty database name")
)
