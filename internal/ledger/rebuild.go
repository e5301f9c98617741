package ledger

import (
	"context"
	"errors"
	"fmt"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/providers"
	"reactledger/internal/structures"
	"time"

	"go.uber.org/atomic"
)

// RebuildEngine replaces the stored ledger with one rebuilt from a full
// history scan. At most one rebuild runs at a time.
type RebuildEngine struct {
	store      interfaces.StoreInterface
	scanner    *Scanner
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	clearFirst bool
	running    atomic.Bool
}

func NewRebuildEngine(conf *structures.Config, store interfaces.StoreInterface, scanner *Scanner, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.RebuildEngineInterface {
	return &RebuildEngine{
		store:      store,
		scanner:    scanner,
		logger:     logger,
		metrics:    metrics,
		clearFirst: conf.Persistence.ClearOnRebuild,
	}
}

func (e *RebuildEngine) Running() bool {
	return e.running.Load()
}

func (e *RebuildEngine) Rebuild(ctx context.Context, scope string) (*models.RebuildReport, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, models.ErrRebuildInProgress
	}
	defer e.running.Store(false)
	return e.run(ctx, scope)
}

// RebuildAsync claims the engine synchronously and runs the rebuild in the
// background, handing the outcome to done.
func (e *RebuildEngine) RebuildAsync(ctx context.Context, scope string, done func(*models.RebuildReport, error)) error {
	if !e.running.CompareAndSwap(false, true) {
		return models.ErrRebuildInProgress
	}
	go func() {
		defer e.running.Store(false)
		report, err := e.run(ctx, scope)
		if done != nil {
			done(report, err)
		}
	}()
	return nil
}

func (e *RebuildEngine) run(ctx context.Context, scope string) (*models.RebuildReport, error) {
	report := &models.RebuildReport{Scope: scope, StartedAt: time.Now()}
	e.logger.Infof(providers.TypeScan, "Rebuilding reaction ledger for %s", scope)

	if e.clearFirst {
		if err := e.store.Save(models.Ledger{}); err != nil {
			e.logger.Errorf(providers.TypeScan, "Unable to clear ledger before rebuild: %s", err)
		}
	}

	ledger := models.Ledger{}
	onSkip := func(_ models.Channel, _ error) {
		report.ChannelsSkipped++
		e.metrics.IncChannelsSkipped()
	}

	var scanErr error
	for msg, err := range e.scanner.Scan(ctx, scope, onSkip) {
		if err != nil {
			scanErr = err
			break
		}
		report.MessagesScanned++
		report.ObservationsProcessed += applyMessage(ledger, msg)
	}

	if scanErr != nil {
		report.Aborted = true
		e.logger.Errorf(providers.TypeScan, "Rebuild aborted after %d messages: %s", report.MessagesScanned, scanErr)
		scanErr = fmt.Errorf("rebuild aborted: %w", scanErr)
	}

	var saveErr error
	if err := e.store.Save(ledger); err != nil {
		saveErr = fmt.Errorf("persist ledger: %w", err)
		e.logger.Errorf(providers.TypeScan, "Unable to persist rebuilt ledger: %s", err)
	}

	report.Entries = len(ledger)
	report.FinishedAt = time.Now()
	err := errors.Join(scanErr, saveErr)
	if err != nil {
		report.Error = err.Error()
	}
	e.metrics.ObserveRebuild(report)

	e.logger.Infof(providers.TypeScan, "Rebuild finished: messages scanned %d, reactions observed %d, channels skipped %d in %s",
		report.MessagesScanned, report.ObservationsProcessed, report.ChannelsSkipped, report.Duration())
	return report, err
}

// applyMessage stores a fresh entry for the message and returns how many
// user reactions were observed on it, duplicates included.
func applyMessage(ledger models.Ledger, msg *models.ScannedMessage) int {
	entry := models.NewLedgerEntry(msg.AuthorID)
	ledger[msg.MessageID] = entry

	observed := 0
	for _, reaction := range msg.Reactions {
		record := entry.Record(reaction.Emoji.Key())
		for _, userID := range reaction.UserIDs {
			record.Observe(userID, entry.AuthorID)
			observed++
		}
	}
	return observed
}
