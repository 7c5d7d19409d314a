package testutil

import (
	"context"
	"fmt"
	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu        sync.Mutex
	Cycles    map[string]int
	Profiles  map[string]int
	Decisions map[string]int // key: "sink/action"
	Requests  map[string]int
}

func (m *MockMetrics) init() {
	if m.Cycles == nil {
		m.Cycles = map[string]int{}
		m.Profiles = map[string]int{}
		m.Decisions = map[string]int{}
		m.Requests = map[string]int{}
	}
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (m *MockMetrics) ObserveSinkDuration(_ string, _ time.Duration)    {}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Requests[endpoint]++
}

func (m *MockMetrics) IncCycles(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Cycles[status]++
}

func (m *MockMetrics) AddProfiles(outcome string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Profiles[outcome] += count
}

func (m *MockMetrics) AddDecisions(sink string, action string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.Decisions[sink+"/"+action] += count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	return nil
}

// MockCompressor implements the compressor interface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockSession implements services.SessionProvider.
type MockSession struct {
	Err   error
	Calls int
}

func (m *MockSession) EnsureSession(_ context.Context) error {
	m.Calls++
	return m.Err
}

// MockFetcher implements services.ProfileFetcher from canned data.
type MockFetcher struct {
	mu          sync.Mutex
	Users       []string
	UsersErr    error
	Profiles    map[string]models.RawProfile
	ProfileErrs map[string]error
	Requested   []string
}

func (m *MockFetcher) OnlineUsers(_ context.Context) ([]string, error) {
	return m.Users, m.UsersErr
}

func (m *MockFetcher) Profile(_ context.Context, nickname string) (models.RawProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requested = append(m.Requested, nickname)
	if err, ok := m.ProfileErrs[nickname]; ok {
		return models.RawProfile{}, err
	}
	if p, ok := m.Profiles[nickname]; ok {
		return p, nil
	}
	return models.RawProfile{Nickname: nickname}, nil
}

// MockTagSource implements sink.TagSource.
type MockTagSource struct {
	Table *models.TagTable
	Err   error
	Loads int
}

func (m *MockTagSource) Name() string { return "mock-tags" }

func (m *MockTagSource) Load(_ context.Context) (*models.TagTable, error) {
	m.Loads++
	return m.Table, m.Err
}

// MockSink is an in-memory sink. FailNicknames makes Apply fail those records.
type MockSink struct {
	mu            sync.Mutex
	SinkName      string
	Rows          []models.PersistedRow
	LoadErr       error
	FailNicknames map[string]error
	Applied       [][]models.Decision
}

func (m *MockSink) Name() string {
	if m.SinkName == "" {
		return "mock"
	}
	return m.SinkName
}

func (m *MockSink) Load(_ context.Context) ([]models.PersistedRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]models.PersistedRow, len(m.Rows))
	copy(out, m.Rows)
	return out, nil
}

func (m *MockSink) Apply(_ context.Context, decisions []models.Decision) models.ApplyResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Applied = append(m.Applied, decisions)

	var res models.ApplyResult
	for _, d := range decisions {
		if err, ok := m.FailNicknames[d.Record.Nickname]; ok {
			res.Fail(d.Record.Nickname, err)
			continue
		}
		switch d.Action {
		case models.ActionInsert:
			m.Rows = append(m.Rows, models.PersistedRow{
				RowIndex:      len(m.Rows),
				Record:        d.Record,
				FirstSeenAt:   d.Record.ScrapedAt,
				LastUpdatedAt: d.Record.ScrapedAt,
			})
			res.Inserted++
		case models.ActionUpdate:
			m.Rows[d.RowIndex].Record = d.Record
			m.Rows[d.RowIndex].LastUpdatedAt = d.Record.ScrapedAt
			res.Updated++
		case models.ActionUnchanged:
			res.Unchanged++
		}
	}
	return res
}

// CountNickname returns how many stored rows carry nickname.
func (m *MockSink) CountNickname(nickname string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Rows {
		if r.Record.Nickname == nickname {
			n++
		}
	}
	return n
}
