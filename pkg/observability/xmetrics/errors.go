package xmetrics

import "errors"

var (
	// ErrCreateInstrument 表示创建 OTel 指标仪器失败。
	ErrCreateInstrument = errors.New("xmetrics: create instrument failed")

	// ErrNilStatsFunc 表示 RegisterPool 的统计函数为 nil。
	ErrNilStatsFunc = errors.New("xmetrics: nil stats func")
)
