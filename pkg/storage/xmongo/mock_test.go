package xmongo

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// mockClientOps 实现 clientOperations 接口。
type mockClientOps struct {
	mu                 sync.Mutex
	pingErr            error
	pingCount          int
	disconnectErr      error
	disconnected       bool
	sessionsInProgress int
	sessionErr         error
	sessions           []*mockSession
	nextSession        *mockSession
}

func (m *mockClientOps) Ping(_ context.Context, _ *readpref.ReadPref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCount++
	return m.pingErr
}

func (m *mockClientOps) Disconnect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnected = true
	return m.disconnectErr
}

func (m *mockClientOps) NumberSessionsInProgress() int {
	return m.sessionsInProgress
}

func (m *mockClientOps) startSession(_ ...options.Lister[options.SessionOptions]) (session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	s := m.nextSession
	if s == nil {
		s = &mockSession{}
	}
	m.nextSession = nil
	m.sessions = append(m.sessions, s)
	return s, nil
}

type sessionKey struct{}

// mockSession 记录事务调用序列。
type mockSession struct {
	startErr  error
	commitErr error
	abortErr  error
	calls     []string
}

func (s *mockSession) StartTransaction(_ ...options.Lister[options.TransactionOptions]) error {
	s.calls = append(s.calls, "start")
	return s.startErr
}

func (s *mockSession) CommitTransaction(_ context.Context) error {
	s.calls = append(s.calls, "commit")
	return s.commitErr
}

func (s *mockSession) AbortTransaction(_ context.Context) error {
	s.calls = append(s.calls, "abort")
	return s.abortErr
}

func (s *mockSession) EndSession(_ context.Context) {
	s.calls = append(s.calls, "end")
}

func (s *mockSession) bind(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// mockCollectionOps 实现 collectionOperations 接口。
type mockCollectionOps struct {
	insertErr   error
	insertCalls [][]any
	bulkErr     error
	bulkResult  *mongo.BulkWriteResult
	bulkCalls   [][]mongo.WriteModel
	// failOnCall 仅第 n 次调用（从 1 开始）返回错误，0 表示每次都返回。
	failOnCall int
	collName   string
}

func (m *mockCollectionOps) shouldFail(call int) bool {
	return m.failOnCall == 0 || m.failOnCall == call
}

func (m *mockCollectionOps) InsertMany(_ context.Context, documents []any, _ ...options.Lister[options.InsertManyOptions]) (*mongo.InsertManyResult, error) {
	m.insertCalls = append(m.insertCalls, documents)
	if m.insertErr != nil && m.shouldFail(len(m.insertCalls)) {
		return nil, m.insertErr
	}
	ids := make([]any, len(documents))
	for i := range documents {
		ids[i] = bson.NewObjectID()
	}
	return &mongo.InsertManyResult{InsertedIDs: ids}, nil
}

func (m *mockCollectionOps) BulkWrite(_ context.Context, models []mongo.WriteModel, _ ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error) {
	m.bulkCalls = append(m.bulkCalls, models)
	if m.bulkErr != nil && m.shouldFail(len(m.bulkCalls)) {
		return m.bulkResult, m.bulkErr
	}
	if m.bulkResult != nil {
		return m.bulkResult, nil
	}
	return &mongo.BulkWriteResult{UpsertedCount: int64(len(models))}, nil
}

func (m *mockCollectionOps) Name() string {
	return m.collName
}
