//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"reactledger/internal"
	"reactledger/internal/controllers"
	"reactledger/internal/discord"
	"reactledger/internal/ledger"
	"reactledger/internal/providers"
	"reactledger/internal/services"
	"reactledger/internal/structures"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,

	ledger.NewCompressor,
	ledger.NewFileStore,
	discord.NewSource,
	ledger.NewScanner,
	ledger.NewRebuildEngine,
	services.NewReactionService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		coreSet,
		ledger.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitRuntime(cfg *structures.CliFlags) (*Runtime, func(), error) {

	wire.Build(
		coreSet,
		wire.Struct(new(Runtime), "*"),
	)

	return nil, nil, nil
}
