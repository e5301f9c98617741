package ledger

import (
	"context"
	"errors"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"reactledger/internal/services"
	"reactledger/internal/structures"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.ReactionServiceInterface
	store   interfaces.StoreInterface
	metrics providers.MetricsProviderInterface
	cron    *cron.Cron
}

// Init starts the periodic rebuild when a schedule is configured.
func (s *Scheduler) Init() {
	schedule := s.config.Rebuild.Schedule
	if schedule == "" {
		s.logger.Infof(providers.TypeApp, "Scheduled rebuild disabled")
		return
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, s.rebuild)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Invalid rebuild schedule %q: %s", schedule, err)
		s.cron = nil
		return
	}
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Scheduled rebuild with %q", schedule)
}

func (s *Scheduler) rebuild() {
	s.logger.Infof(providers.TypeScan, "Starting scheduled rebuild...")
	_, err := s.service.Rebuild(context.Background())
	if errors.Is(err, models.ErrRebuildInProgress) {
		s.logger.Warnf(providers.TypeScan, "Scheduled rebuild skipped: %s", err)
	}
}

// Stop prevents further runs. A rebuild in flight is left to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore reads the persisted snapshot once at startup.
func (s *Scheduler) Restore() {
	ledger := s.store.Load()
	s.metrics.SetLedgerEntries(len(ledger))
	s.logger.Infof(providers.TypeApp, "Restored %d ledger entries from %s", len(ledger), s.config.Persistence.FilePath)
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.ReactionServiceInterface, store interfaces.StoreInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		store:   store,
		metrics: metrics,
	}
}
