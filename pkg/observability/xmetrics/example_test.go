package xmetrics_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
)

func ExampleStart() {
	// 未配置 observer 时使用空实现
	ctx, span := xmetrics.Start(context.Background(), nil, xmetrics.SpanOptions{
		Component: "ximport",
		Operation: "batch",
	})
	span.End(xmetrics.Result{Err: errors.New("store unavailable")})

	fmt.Println(ctx != nil)
	// Output:
	// true
}
