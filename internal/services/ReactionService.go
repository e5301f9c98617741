package services

import (
	"context"
	"fmt"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"reactledger/internal/structures"
	"sync"
)

const (
	QueryCredit  = "credit"
	QueryDebit   = "debit"
	QueryBalance = "balance"
)

type ReactionServiceInterface interface {
	Scope() string
	Rebuild(ctx context.Context) (*models.RebuildReport, error)
	StartRebuild() error
	Rebuilding() bool
	LastReport() *models.RebuildReport
	Query(kind, userID string) (map[string]int, error)
	Credit(userID string) map[string]int
	Debit(userID string) map[string]int
	Balance(userID string) map[string]int
	SnapshotVersion() string
}

// ReactionService serves queries straight from the persisted snapshot, so a
// rebuild finished by another process is visible on the next query.
type ReactionService struct {
	scope   string
	store   interfaces.StoreInterface
	engine  interfaces.RebuildEngineInterface
	cache   providers.CacheProviderInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu   sync.RWMutex
	last *models.RebuildReport
}

func NewReactionService(conf *structures.Config, store interfaces.StoreInterface, engine interfaces.RebuildEngineInterface, cache providers.CacheProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ReactionServiceInterface {
	return &ReactionService{
		scope:   conf.Discord.GuildID,
		store:   store,
		engine:  engine,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *ReactionService) Scope() string {
	return s.scope
}

func (s *ReactionService) Rebuild(ctx context.Context) (*models.RebuildReport, error) {
	if s.scope == "" {
		return nil, models.ErrNoScope
	}
	report, err := s.engine.Rebuild(ctx, s.scope)
	s.finish(report, err)
	return report, err
}

// StartRebuild returns as soon as the rebuild is claimed. The outcome is
// available from LastReport once it completes.
func (s *ReactionService) StartRebuild() error {
	if s.scope == "" {
		return models.ErrNoScope
	}
	return s.engine.RebuildAsync(context.Background(), s.scope, s.finish)
}

func (s *ReactionService) finish(report *models.RebuildReport, err error) {
	if report == nil {
		return
	}
	s.cache.Clear()
	s.metrics.SetLedgerEntries(report.Entries)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	if err != nil {
		s.logger.Errorf(providers.TypeScan, "Rebuild of %s failed: %s", report.Scope, err)
	}
}

func (s *ReactionService) Rebuilding() bool {
	return s.engine.Running()
}

func (s *ReactionService) LastReport() *models.RebuildReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	report := *s.last
	return &report
}

func (s *ReactionService) Query(kind, userID string) (map[string]int, error) {
	switch kind {
	case QueryCredit:
		return s.Credit(userID), nil
	case QueryDebit:
		return s.Debit(userID), nil
	case QueryBalance:
		return s.Balance(userID), nil
	}
	return nil, fmt.Errorf("unknown query %q", kind)
}

func (s *ReactionService) Credit(userID string) map[string]int {
	s.metrics.IncQueries(QueryCredit)
	return s.store.Load().Credit(userID)
}

func (s *ReactionService) Debit(userID string) map[string]int {
	s.metrics.IncQueries(QueryDebit)
	return s.store.Load().Debit(userID)
}

func (s *ReactionService) Balance(userID string) map[string]int {
	s.metrics.IncQueries(QueryBalance)
	return s.store.Load().Balance(userID)
}

func (s *ReactionService) SnapshotVersion() string {
	return s.store.Version()
}
