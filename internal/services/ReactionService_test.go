package services_test

import (
	"context"
	"errors"
	"reactledger/internal/models"
	"reactledger/internal/services"
	"reactledger/internal/structures"
	"reactledger/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu      sync.Mutex
	report  *models.RebuildReport
	err     error
	scopes  []string
	running bool
}

func (f *fakeEngine) Rebuild(_ context.Context, scope string) (*models.RebuildReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
	return f.report, f.err
}

func (f *fakeEngine) RebuildAsync(ctx context.Context, scope string, done func(*models.RebuildReport, error)) error {
	if f.running {
		return models.ErrRebuildInProgress
	}
	go func() {
		report, err := f.Rebuild(ctx, scope)
		done(report, err)
	}()
	return nil
}

func (f *fakeEngine) Running() bool { return f.running }

func ledgerFixture() models.Ledger {
	l := models.Ledger{}
	m1 := models.NewLedgerEntry("A")
	m1.Record("👍").Observe("B", "A")
	m1.Record("👍").Observe("C", "A")
	l["m1"] = m1

	m2 := models.NewLedgerEntry("B")
	m2.Record("👍").Observe("A", "B")
	l["m2"] = m2
	return l
}

type fixture struct {
	svc     services.ReactionServiceInterface
	store   *testutil.MockStore
	engine  *fakeEngine
	cache   *testutil.MockCache
	metrics *testutil.MockMetrics
	logger  *testutil.MockLogger
}

func newFixture(guild string) *fixture {
	f := &fixture{
		store:   &testutil.MockStore{Ledger: ledgerFixture()},
		engine:  &fakeEngine{report: &models.RebuildReport{Scope: guild, Entries: 7}},
		cache:   testutil.NewMockCache(),
		metrics: testutil.NewMockMetrics(),
		logger:  &testutil.MockLogger{},
	}
	conf := &structures.Config{Discord: structures.DiscordConfig{GuildID: guild}}
	f.svc = services.NewReactionService(conf, f.store, f.engine, f.cache, f.logger, f.metrics)
	return f
}

func TestReactionService_Queries(t *testing.T) {
	f := newFixture("guild")

	assert.Equal(t, map[string]int{"👍": 2}, f.svc.Credit("A"))
	assert.Equal(t, map[string]int{"👍": 1}, f.svc.Debit("A"))
	assert.Equal(t, map[string]int{"👍": 1}, f.svc.Balance("A"))
	assert.Empty(t, f.svc.Balance("nobody"))

	assert.Equal(t, 1, f.metrics.Queries[services.QueryCredit])
	assert.Equal(t, 1, f.metrics.Queries[services.QueryDebit])
	assert.Equal(t, 2, f.metrics.Queries[services.QueryBalance])
}

func TestReactionService_Query(t *testing.T) {
	f := newFixture("guild")

	totals, err := f.svc.Query(services.QueryCredit, "A")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"👍": 2}, totals)

	_, err = f.svc.Query("karma", "A")
	assert.Error(t, err)
}

// Queries read the snapshot each time, so a ledger replaced underneath the
// service is picked up without a restart.
func TestReactionService_ReadsLatestSnapshot(t *testing.T) {
	f := newFixture("guild")
	assert.Equal(t, map[string]int{"👍": 2}, f.svc.Credit("A"))

	require.NoError(t, f.store.Save(models.Ledger{}))
	assert.Empty(t, f.svc.Credit("A"))
	assert.Equal(t, "v1", f.svc.SnapshotVersion())
}

func TestReactionService_Rebuild(t *testing.T) {
	f := newFixture("guild")
	f.cache.Set("credit:v0:A", []byte("{}"))

	report, err := f.svc.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, report.Entries)
	assert.Equal(t, []string{"guild"}, f.engine.scopes)
	assert.Empty(t, f.cache.Data)
	assert.Equal(t, 7, f.metrics.LedgerEntries)

	last := f.svc.LastReport()
	require.NotNil(t, last)
	assert.Equal(t, *report, *last)
}

func TestReactionService_RebuildFailureKeepsReport(t *testing.T) {
	f := newFixture("guild")
	f.engine.report.Aborted = true
	f.engine.err = errors.New("rebuild aborted: boom")

	_, err := f.svc.Rebuild(context.Background())
	assert.Error(t, err)
	require.NotNil(t, f.svc.LastReport())
	assert.True(t, f.svc.LastReport().Aborted)
	assert.Equal(t, 1, f.logger.Count("error"))
}

func TestReactionService_RebuildInProgress(t *testing.T) {
	f := newFixture("guild")
	f.engine.report = nil
	f.engine.err = models.ErrRebuildInProgress

	_, err := f.svc.Rebuild(context.Background())
	assert.ErrorIs(t, err, models.ErrRebuildInProgress)
	assert.Nil(t, f.svc.LastReport())
	assert.Zero(t, f.cache.Clears)
}

func TestReactionService_NoGuild(t *testing.T) {
	f := newFixture("")

	_, err := f.svc.Rebuild(context.Background())
	assert.ErrorIs(t, err, models.ErrNoScope)
	assert.ErrorIs(t, f.svc.StartRebuild(), models.ErrNoScope)
	assert.Empty(t, f.engine.scopes)
}

func TestReactionService_StartRebuild(t *testing.T) {
	f := newFixture("guild")

	require.NoError(t, f.svc.StartRebuild())
	assert.Eventually(t, func() bool { return f.svc.LastReport() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "guild", f.svc.LastReport().Scope)

	f.engine.running = true
	assert.True(t, f.svc.Rebuilding())
	assert.ErrorIs(t, f.svc.StartRebuild(), models.ErrRebuildInProgress)
}

func TestReactionService_LastReportIsCopy(t *testing.T) {
	f := newFixture("guild")
	_, err := f.svc.Rebuild(context.Background())
	require.NoError(t, err)

	f.svc.LastReport().Entries = 0
	assert.Equal(t, 7, f.svc.LastReport().Entries)
}
