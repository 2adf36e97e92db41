package xmongo

import (
	"context"

	"github.com/omeyang/ontoimport/pkg/storage/xtx"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Mongo 定义 MongoDB 包装器接口。
type Mongo interface {
	// Client 返回底层的 mongo.Client。
	Client() *mongo.Client

	// Health 通过 Ping 检测连接状态。
	Health(ctx context.Context) error

	// Stats 返回统计信息。
	Stats() Stats

	// Close 断开连接。重复调用返回 ErrClosed。
	Close(ctx context.Context) error

	// Resource 返回基于会话和事务的 xtx.Resource。
	Resource(opts ...ResourceOption) xtx.Resource

	// BulkInsert 将文档分批插入。
	BulkInsert(ctx context.Context, coll *mongo.Collection, docs []any, opts BulkOptions) (*BulkResult, error)

	// BulkUpsert 将按键的 upsert 分批写入。
	BulkUpsert(ctx context.Context, coll *mongo.Collection, upserts []Upsert, opts BulkOptions) (*BulkResult, error)
}

// BulkOptions 批量写入选项。
type BulkOptions struct {
	// BatchSize 每批大小，默认 1000，上限 10000。
	BatchSize int

	// Ordered 是否有序写入。有序写入时，遇到错误会停止后续操作。
	Ordered bool
}

// Upsert 是一条按 Filter 定位、不存在时插入的更新。
type Upsert struct {
	Filter any
	Update any
}

// BulkResult 批量写入结果。
//
// 即使返回的 error 不为 nil，result 仍可能包含部分成功的计数。
type BulkResult struct {
	// InsertedCount 插入的文档数。
	InsertedCount int64

	// MatchedCount upsert 命中已有文档数。
	MatchedCount int64

	// ModifiedCount upsert 实际修改的文档数。
	ModifiedCount int64

	// UpsertedCount upsert 新建的文档数。
	UpsertedCount int64

	// Errors 每个失败批次的错误。
	Errors []error
}

func (r *BulkResult) add(other BulkResult) {
	r.InsertedCount += other.InsertedCount
	r.MatchedCount += other.MatchedCount
	r.ModifiedCount += other.ModifiedCount
	r.UpsertedCount += other.UpsertedCount
}

// New 创建 MongoDB 包装器。client 必须是已初始化的 mongo.Client。
func New(client *mongo.Client, opts ...Option) (Mongo, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newWrapper(client, clientAdapter{client}, opts...), nil
}

func newWrapper(client *mongo.Client, ops clientOperations, opts ...Option) *mongoWrapper {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &mongoWrapper{client: client, clientOps: ops, options: o}
}
