package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"qualitysite/internal/bootstrap/config"
	"qualitysite/internal/bootstrap/database"
	"qualitysite/internal/bootstrap/logging"
	feedinfra "qualitysite/internal/infrastructure/feed"
	sqliterepo "qualitysite/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "qualitysite/internal/infrastructure/persistence/sqlite/uow"
	"qualitysite/internal/metrics"
	"qualitysite/internal/ports"
	ingestuc "qualitysite/internal/usecase/ingest"
	"qualitysite/internal/usecase/report"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewQualityRepository,
			fx.As(new(ports.QualityRepository)),
		),
	),
	fx.Provide(func(repo ports.QualityRepository) ports.QualityReadRepository { return repo }),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			feedinfra.NewHTTPFetcher,
			fx.As(new(ports.FeedFetcher)),
		),
	),
	fx.Provide(metrics.NewRegistry),
	fx.Provide(provideIngestService),
	fx.Provide(report.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideIngestService(
	repo ports.QualityRepository,
	uow ports.UnitOfWork,
	fetcher ports.FeedFetcher,
	reg *metrics.Registry,
	cfg config.Config,
) *ingestuc.Service {
	return ingestuc.NewService(repo, uow, fetcher, reg, cfg.Ingest.FeedsFile)
}
