package xmongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// =============================================================================
// 内部接口定义 - 用于依赖注入和测试
// =============================================================================

// clientOperations 定义客户端级别操作接口。
type clientOperations interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
	NumberSessionsInProgress() int
	startSession(opts ...options.Lister[options.SessionOptions]) (session, error)
}

// session 定义事务会话操作接口。
type session interface {
	StartTransaction(opts ...options.Lister[options.TransactionOptions]) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
	EndSession(ctx context.Context)
	bind(ctx context.Context) context.Context
}

// collectionOperations 定义集合级别操作接口。
// *mongo.Collection 通过 collectionAdapter 实现此接口。
type collectionOperations interface {
	InsertMany(ctx context.Context, documents []any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error)
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error)
	Name() string
}

// =============================================================================
// 适配器
// =============================================================================

// clientAdapter 将 *mongo.Client 适配为 clientOperations。
type clientAdapter struct {
	*mongo.Client
}

func (a clientAdapter) startSession(opts ...options.Lister[options.SessionOptions]) (session, error) {
	s, err := a.StartSession(opts...)
	if err != nil {
		return nil, err
	}
	return sessionAdapter{s}, nil
}

// sessionAdapter 将 *mongo.Session 适配为 session。
type sessionAdapter struct {
	*mongo.Session
}

func (a sessionAdapter) bind(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, a.Session)
}

// collectionAdapter 将 *mongo.Collection 适配为 collectionOperations。
type collectionAdapter struct {
	coll *mongo.Collection
}

func (a *collectionAdapter) InsertMany(ctx context.Context, documents []any, opts ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	return a.coll.InsertMany(ctx, documents, opts...)
}

func (a *collectionAdapter) BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error) {
	return a.coll.BulkWrite(ctx, models, opts...)
}

func (a *collectionAdapter) Name() string {
	return a.coll.Name()
}
