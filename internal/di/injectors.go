//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"onlinesync/internal"
	"onlinesync/internal/controllers"
	"onlinesync/internal/providers"
	"onlinesync/internal/scheduler"
	"onlinesync/internal/scheduler/interfaces"
	"onlinesync/internal/scraper"
	"onlinesync/internal/services"
	"onlinesync/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		ProvideLogger,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		scraper.NewClient,
		wire.Bind(new(services.SessionProvider), new(*scraper.Client)),
		wire.Bind(new(services.ProfileFetcher), new(*scraper.Client)),

		ProvideFileManager,
		ProvideSheetsClient,
		ProvideSinks,
		ProvideTagSource,

		services.NewSyncService,
		wire.Bind(new(services.SyncServiceInterface), new(*services.SyncService)),
		scheduler.NewScheduler,
		wire.Bind(new(controllers.SummarySource), new(interfaces.SchedulerInterface)),

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
