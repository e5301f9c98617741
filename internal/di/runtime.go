package di

import (
	"reactledger/internal/providers"
	"reactledger/internal/services"
	"reactledger/internal/structures"
)

// Runtime is what one-shot CLI commands need: no HTTP server, no scheduler.
type Runtime struct {
	Config  *structures.Config
	Logger  providers.Logger
	Service services.ReactionServiceInterface
}
