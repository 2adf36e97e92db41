package xpool_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

func Example() {
	pool, err := xpool.New(xpool.Config{MinWorkers: 1, MaxWorkers: 2, QueueCapacity: 8})
	if err != nil {
		panic(err)
	}

	var count atomic.Int32
	for range 5 {
		if err := pool.Execute(context.Background(), func() { count.Add(1) }); err != nil {
			fmt.Println("execute error:", err)
		}
	}

	// Close 等待所有任务处理完成
	if err := pool.Close(); err != nil {
		panic(err)
	}
	fmt.Println("processed:", count.Load())
	// Output:
	// processed: 5
}

func ExampleSubmit() {
	pool, err := xpool.New(xpool.Config{MaxWorkers: 2})
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	f, err := xpool.Submit(context.Background(), pool, func() (string, error) {
		return "triples loaded", nil
	})
	if err != nil {
		panic(err)
	}

	v, err := f.Get(context.Background())
	fmt.Println(v, err)
	// Output:
	// triples loaded <nil>
}

func ExamplePool_Shutdown() {
	pool, err := xpool.New(xpool.Config{MaxWorkers: 1})
	if err != nil {
		panic(err)
	}

	pool.Shutdown()
	pool.Shutdown()

	err = pool.Execute(context.Background(), func() {})
	fmt.Println(pool.IsShutdown(), errors.Is(err, xpool.ErrPoolShutdown))
	// Output:
	// true true
}
