package interfaces

import (
	"context"
	"reactledger/internal/models"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore()
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// StoreInterface persists the whole ledger as one snapshot.
type StoreInterface interface {
	Load() models.Ledger
	Save(ledger models.Ledger) error
	Version() string
}

// Source is the read-only view of the chat platform used by rebuilds.
// Errors that deny access to a channel must wrap models.ErrForbidden.
type Source interface {
	Channels(ctx context.Context, scope string) ([]models.Channel, error)
	Messages(ctx context.Context, channel models.Channel, cursor string) (models.MessagePage, error)
	ReactionUsers(ctx context.Context, channel models.Channel, messageID string, emoji models.Emoji, cursor string) (models.UserPage, error)
}

type RebuildEngineInterface interface {
	Rebuild(ctx context.Context, scope string) (*models.RebuildReport, error)
	RebuildAsync(ctx context.Context, scope string, done func(*models.RebuildReport, error)) error
	Running() bool
}
