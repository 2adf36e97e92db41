package ximport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/storage/xmongo"
)

// Outcome 是导入结果，对应文件的路由方向。
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// DefaultReportCollection 导入记录默认集合名。
const DefaultReportCollection = "imports"

// Report 是一次导入的汇总。
type Report struct {
	ID         string
	File       string
	Format     xrdf.Format
	Statements int64
	Batches    int64
	Vertices   int64
	Edges      int64
	Outcome    Outcome
	Err        error
	Started    time.Time
	Duration   time.Duration
}

// Failed 报告导入是否失败。
func (r *Report) Failed() bool {
	return r.Outcome != OutcomeSuccess
}

func (r *Report) finish(err error) {
	r.Duration = time.Since(r.Started)
	r.Err = err
	r.Outcome = OutcomeSuccess
	if err != nil {
		r.Outcome = OutcomeFailure
	}
}

// String 返回单行摘要。
func (r *Report) String() string {
	s := fmt.Sprintf("%s %s [%s] statements=%d batches=%d vertices=%d edges=%d duration=%s",
		r.Outcome, r.File, r.Format, r.Statements, r.Batches, r.Vertices, r.Edges, r.Duration.Round(time.Millisecond))
	if r.Err != nil {
		s += " error=" + r.Err.Error()
	}
	return s
}

// LogValue 实现 slog.LogValuer。
func (r *Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", r.ID),
		slog.String("file", r.File),
		slog.String("format", string(r.Format)),
		slog.String("outcome", string(r.Outcome)),
		slog.Int64("statements", r.Statements),
		slog.Int64("batches", r.Batches),
		slog.Int64("vertices", r.Vertices),
		slog.Int64("edges", r.Edges),
		slog.Duration("duration", r.Duration),
	}
	if r.Err != nil {
		attrs = append(attrs, slog.String("error", r.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// ReportSink 持久化导入记录。
type ReportSink interface {
	Record(ctx context.Context, reports ...*Report) error
}

// inserter 是 MongoReportSink 依赖的写入能力，xmongo.Mongo 实现此接口。
type inserter interface {
	BulkInsert(ctx context.Context, coll *mongo.Collection, docs []any, opts xmongo.BulkOptions) (*xmongo.BulkResult, error)
}

// MongoReportSink 将导入记录追加到 MongoDB 集合。
type MongoReportSink struct {
	w    inserter
	coll *mongo.Collection
}

var _ ReportSink = (*MongoReportSink)(nil)

// NewMongoReportSink 创建导入记录集合的写入器，collection 为空时使用 imports。
func NewMongoReportSink(m xmongo.Mongo, database, collection string) (*MongoReportSink, error) {
	if m == nil {
		return nil, ErrNilMongo
	}
	if database == "" {
		return nil, ErrEmptyDatabase
	}
	if collection == "" {
		collection = DefaultReportCollection
	}
	return &MongoReportSink{w: m, coll: m.Client().Database(database).Collection(collection)}, nil
}

// Record 写入导入记录，nil 记录被跳过。
func (s *MongoReportSink) Record(ctx context.Context, reports ...*Report) error {
	docs := make([]any, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			docs = append(docs, newReportDocument(r))
		}
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.w.BulkInsert(ctx, s.coll, docs, xmongo.BulkOptions{}); err != nil {
		return fmt.Errorf("ximport record reports: %w", err)
	}
	return nil
}

type reportDocument struct {
	ID         string    `bson:"_id"`
	File       string    `bson:"file"`
	Format     string    `bson:"format"`
	Outcome    string    `bson:"outcome"`
	Statements int64     `bson:"statements"`
	Batches    int64     `bson:"batches"`
	Vertices   int64     `bson:"vertices"`
	Edges      int64     `bson:"edges"`
	Error      string    `bson:"error,omitempty"`
	Started    time.Time `bson:"started"`
	DurationMS int64     `bson:"duration_ms"`
}

func newReportDocument(r *Report) reportDocument {
	d := reportDocument{
		ID:         r.ID,
		File:       r.File,
		Format:     string(r.Format),
		Outcome:    string(r.Outcome),
		Statements: r.Statements,
		Batches:    r.Batches,
		Vertices:   r.Vertices,
		Edges:      r.Edges,
		Started:    r.Started,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		d.Error = r.Err.Error()
	}
	return d
}
