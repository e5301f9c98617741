package testutil

import (
	"context"
	"errors"
	"fmt"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"strconv"
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

// MockMetrics implements providers.MetricsProviderInterface and records calls.
type MockMetrics struct {
	mu              sync.Mutex
	Requests        map[string]int
	CacheHits       int
	CacheMisses     int
	PersistenceOps  []string
	Rebuilds        []*models.RebuildReport
	ChannelsSkipped int
	Queries         map[string]int
	LedgerEntries   int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests: make(map[string]int),
		Queries:  make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint+":"+strconv.Itoa(status)]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceOps = append(m.PersistenceOps, op)
}

func (m *MockMetrics) ObserveRebuild(report *models.RebuildReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rebuilds = append(m.Rebuilds, report)
}

func (m *MockMetrics) IncChannelsSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelsSkipped++
}

func (m *MockMetrics) IncQueries(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries[kind]++
}

func (m *MockMetrics) SetLedgerEntries(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LedgerEntries = count
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Clears int
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

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Clears++
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
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

// MockStore implements interfaces.StoreInterface in memory. Every Save bumps
// the version and is kept in Saves.
type MockStore struct {
	mu      sync.Mutex
	Ledger  models.Ledger
	Saves   []models.Ledger
	SaveErr error
	version int
}

func (m *MockStore) Load() models.Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Ledger == nil {
		return models.Ledger{}
	}
	return m.Ledger
}

func (m *MockStore) Save(ledger models.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves = append(m.Saves, ledger)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Ledger = ledger
	m.version++
	return nil
}

func (m *MockStore) Version() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version == 0 && m.Ledger == nil {
		return ""
	}
	return "v" + strconv.Itoa(m.version)
}

// SetVersion lets tests simulate a snapshot replaced by another process.
func (m *MockStore) SetVersion(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = v
}

// FakeSource implements interfaces.Source over canned history. Cursors are
// plain offsets into the canned slices.
type FakeSource struct {
	mu sync.Mutex

	ChannelList []models.Channel
	ChannelsErr error
	History     map[string][]models.Message // by channel ID
	Reactors    map[string][]string         // by ReactorKey

	// ChannelErr fails Messages for a channel once ChannelErrPage pages
	// have been served.
	ChannelErr     map[string]error
	ChannelErrPage map[string]int

	MessagePageSize int
	UserPageSize    int

	// StuckCursor makes every message page point back at its own cursor.
	StuckCursor bool

	MessageCalls  int
	ReactionCalls int
	pagesServed   map[string]int
}

func ReactorKey(messageID string, emoji models.Emoji) string {
	return messageID + "|" + emoji.Key()
}

func (f *FakeSource) Channels(_ context.Context, _ string) ([]models.Channel, error) {
	if f.ChannelsErr != nil {
		return nil, f.ChannelsErr
	}
	return f.ChannelList, nil
}

func (f *FakeSource) Messages(ctx context.Context, channel models.Channel, cursor string) (models.MessagePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MessageCalls++
	if err := ctx.Err(); err != nil {
		return models.MessagePage{}, err
	}
	if f.pagesServed == nil {
		f.pagesServed = make(map[string]int)
	}
	if err, ok := f.ChannelErr[channel.ID]; ok && f.pagesServed[channel.ID] >= f.ChannelErrPage[channel.ID] {
		return models.MessagePage{}, err
	}
	f.pagesServed[channel.ID]++

	msgs, next, err := paginate(f.History[channel.ID], cursor, f.MessagePageSize)
	if err != nil {
		return models.MessagePage{}, err
	}
	if f.StuckCursor {
		next = cursor
		if next == "" {
			next = "0"
		}
	}
	return models.MessagePage{Messages: msgs, Next: next}, nil
}

func (f *FakeSource) ReactionUsers(_ context.Context, _ models.Channel, messageID string, emoji models.Emoji, cursor string) (models.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReactionCalls++
	users, next, err := paginate(f.Reactors[ReactorKey(messageID, emoji)], cursor, f.UserPageSize)
	if err != nil {
		return models.UserPage{}, err
	}
	return models.UserPage{UserIDs: users, Next: next}, nil
}

func paginate[T any](items []T, cursor string, size int) ([]T, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
		offset = n
	}
	if offset > len(items) {
		return nil, "", errors.New("cursor out of range")
	}
	if size <= 0 || offset+size >= len(items) {
		return items[offset:], "", nil
	}
	return items[offset : offset+size], strconv.Itoa(offset + size), nil
}

// MockReactionService implements services.ReactionServiceInterface.
type MockReactionService struct {
	mu sync.Mutex

	ScopeID    string
	Report     *models.RebuildReport
	RebuildErr error
	StartErr   error
	InProgress bool
	Version    string
	Results    map[string]map[string]int // by "kind:user"

	RebuildCalls int
	StartCalls   int
	QueryCalls   int
}

func (m *MockReactionService) Scope() string { return m.ScopeID }

func (m *MockReactionService) Rebuild(_ context.Context) (*models.RebuildReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RebuildCalls++
	return m.Report, m.RebuildErr
}

func (m *MockReactionService) StartRebuild() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
	return m.StartErr
}

func (m *MockReactionService) Rebuilding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InProgress
}

func (m *MockReactionService) LastReport() *models.RebuildReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Report
}

func (m *MockReactionService) Query(kind, userID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls++
	switch kind {
	case "credit", "debit", "balance":
	default:
		return nil, fmt.Errorf("unknown query %q", kind)
	}
	if res, ok := m.Results[kind+":"+userID]; ok {
		return res, nil
	}
	return map[string]int{}, nil
}

func (m *MockReactionService) Credit(userID string) map[string]int {
	res, _ := m.Query("credit", userID)
	return res
}

func (m *MockReactionService) Debit(userID string) map[string]int {
	res, _ := m.Query("debit", userID)
	return res
}

func (m *MockReactionService) Balance(userID string) map[string]int {
	res, _ := m.Query("balance", userID)
	return res
}

func (m *MockReactionService) SnapshotVersion() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Version
}

func (m *MockReactionService) RebuildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RebuildCalls
}
