package xgraph

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
)

const (
	// DefaultVerticesCollection 顶点集合默认名称。
	DefaultVerticesCollection = "vertices"

	// DefaultEdgesCollection 边集合默认名称。
	DefaultEdgesCollection = "edges"
)

var _ Store = (*MongoStore)(nil)

// upserter 是 MongoStore 依赖的写入能力，xmongo.Mongo 实现此接口。
type upserter interface {
	BulkUpsert(ctx context.Context, coll *mongo.Collection, upserts []xmongo.Upsert, opts xmongo.BulkOptions) (*xmongo.BulkResult, error)
}

// StoreOption 配置 MongoStore。
type StoreOption func(*storeOptions)

type storeOptions struct {
	vertices  string
	edges     string
	batchSize int
}

// WithCollections 设置顶点和边的集合名，空字符串保持默认。
func WithCollections(vertices, edges string) StoreOption {
	return func(o *storeOptions) {
		if vertices != "" {
			o.vertices = vertices
		}
		if edges != "" {
			o.edges = edges
		}
	}
}

// WithBatchSize 设置单次 BulkWrite 的文档数，0 使用 xmongo 默认值。
func WithBatchSize(n int) StoreOption {
	return func(o *storeOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// MongoStore 将顶点和边写入 MongoDB 的两个集合。
//
// 顶点文档：{_id: key, iri, labels: [...], props: {...}}
// 边文档：{_id: edgeKey, from, to, label, props: {...}}
type MongoStore struct {
	w        upserter
	vertices *mongo.Collection
	edges    *mongo.Collection
	bulk     xmongo.BulkOptions
}

// NewMongoStore 在 database 上创建图存储。
func NewMongoStore(m xmongo.Mongo, database string, opts ...StoreOption) (*MongoStore, error) {
	if m == nil {
		return nil, ErrNilMongo
	}
	if database == "" {
		return nil, ErrEmptyDatabase
	}
	return newMongoStore(m, m.Client().Database(database), opts...), nil
}

func newMongoStore(w upserter, db *mongo.Database, opts ...StoreOption) *MongoStore {
	o := storeOptions{vertices: DefaultVerticesCollection, edges: DefaultEdgesCollection}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &MongoStore{
		w:        w,
		vertices: db.Collection(o.vertices),
		edges:    db.Collection(o.edges),
		bulk:     xmongo.BulkOptions{BatchSize: o.batchSize, Ordered: true},
	}
}

// EnsureIndexes 创建查询图所需的索引，可重复调用。
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.vertices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "iri", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "labels", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("xgraph ensure vertex indexes: %w", err)
	}
	if _, err := s.edges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from", Value: 1}, {Key: "label", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "label", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("xgraph ensure edge indexes: %w", err)
	}
	return nil
}

// Apply 先写顶点再写边。ctx 中绑定的事务会话由 driver 自动使用。
func (s *MongoStore) Apply(ctx context.Context, m Mutation) (Applied, error) {
	var applied Applied

	if len(m.Vertices) > 0 {
		ups := make([]xmongo.Upsert, len(m.Vertices))
		for i, v := range m.Vertices {
			if v.Key == "" {
				return applied, fmt.Errorf("%w: vertex %q", ErrEmptyKey, v.IRI)
			}
			ups[i] = vertexUpsert(v)
		}
		res, err := s.w.BulkUpsert(ctx, s.vertices, ups, s.bulk)
		applied.Vertices = written(res)
		if err != nil {
			return applied, fmt.Errorf("xgraph apply vertices: %w", err)
		}
	}

	if len(m.Edges) > 0 {
		ups := make([]xmongo.Upsert, len(m.Edges))
		for i, e := range m.Edges {
			if e.From == "" || e.To == "" {
				return applied, fmt.Errorf("%w: edge %q", ErrEmptyKey, e.Label)
			}
			ups[i] = edgeUpsert(e)
		}
		res, err := s.w.BulkUpsert(ctx, s.edges, ups, s.bulk)
		applied.Edges = written(res)
		if err != nil {
			return applied, fmt.Errorf("xgraph apply edges: %w", err)
		}
	}
	return applied, nil
}

func written(res *xmongo.BulkResult) int64 {
	if res == nil {
		return 0
	}
	return res.UpsertedCount + res.MatchedCount
}

func vertexUpsert(v Vertex) xmongo.Upsert {
	set := bson.M{"iri": v.IRI}
	setProps(set, v.Props)
	update := bson.M{"$set": set}
	if len(v.Labels) > 0 {
		update["$addToSet"] = bson.M{"labels": bson.M{"$each": v.Labels}}
	}
	return xmongo.Upsert{Filter: bson.M{"_id": v.Key}, Update: update}
}

func edgeUpsert(e Edge) xmongo.Upsert {
	set := bson.M{"from": e.From, "to": e.To, "label": e.Label}
	setProps(set, e.Props)
	return xmongo.Upsert{Filter: bson.M{"_id": e.Key()}, Update: bson.M{"$set": set}}
}

func setProps(set bson.M, props map[string]any) {
	for name, value := range props {
		set["props."+fieldName(name)] = value
	}
}

// fieldName 将属性名转换为合法的字段路径片段。
func fieldName(name string) string {
	name = strings.ReplaceAll(name, ".", "_")
	return strings.TrimLeft(name, "$")
}
