package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"gentletalk/internal/bootstrap/config"
	"gentletalk/internal/bootstrap/database"
	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/errs"
	cacheinfra "gentletalk/internal/infrastructure/cache"
	"gentletalk/internal/infrastructure/generation"
	"gentletalk/internal/infrastructure/lock"
	sqliterepo "gentletalk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "gentletalk/internal/infrastructure/persistence/sqlite/uow"
	"gentletalk/internal/ports"
	"gentletalk/internal/prompts"
	accountuc "gentletalk/internal/usecase/account"
	issueuc "gentletalk/internal/usecase/issue"
	mediationuc "gentletalk/internal/usecase/mediation"
	negotiationuc "gentletalk/internal/usecase/negotiation"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(
		fx.Annotate(sqliterepo.NewIssueRepository, fx.As(new(ports.IssueRepository))),
		fx.Annotate(sqliterepo.NewProposalLogRepository, fx.As(new(ports.ProposalLogRepository))),
		fx.Annotate(sqliterepo.NewNegotiationRepository, fx.As(new(ports.NegotiationRepository))),
		fx.Annotate(sqliterepo.NewUserRepository, fx.As(new(ports.UserDirectory))),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(provideGenerationLock),
	fx.Provide(provideGenerationClient),
	fx.Provide(providePrompts),
	fx.Provide(provideIssueService),
	fx.Provide(provideMediationService),
	fx.Provide(negotiationuc.NewService),
	fx.Provide(func(s *issueuc.Service) accountuc.OpponentLinker { return s }),
	fx.Provide(accountuc.NewService),
	fx.Provide(provideApp),
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

// openRedis parses url and closes the client when the app stops.
func openRedis(lc fx.Lifecycle, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, errs.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return errs.Wrap(client.Ping(ctx).Err(), "ping redis")
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideCache(lc fx.Lifecycle, ctx context.Context, cfg config.Config, db *gorm.DB) (ports.Cache, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	switch strings.ToLower(cfg.Cache.Backend) {
	case "redis":
		client, err := openRedis(lc, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		logging.Info(logCtx, "cache backend selected", slog.String("backend", "redis"))
		return cacheinfra.NewRedisCache(client), nil
	case "none":
		logging.Info(logCtx, "cache backend selected", slog.String("backend", "none"))
		return cacheinfra.NopCache{}, nil
	default:
		logging.Info(logCtx, "cache backend selected", slog.String("backend", "sqlite"))
		return cacheinfra.NewSQLiteCache(db), nil
	}
}

func provideGenerationLock(lc fx.Lifecycle, cfg config.Config) (ports.GenerationLock, error) {
	if strings.ToLower(cfg.Lock.Backend) != "redis" {
		return lock.Local{}, nil
	}
	client, err := openRedis(lc, cfg.Lock.RedisURL)
	if err != nil {
		return nil, err
	}
	return lock.NewRedisLock(client, cfg.Lock.TTL, cfg.Lock.PollInterval), nil
}

func provideGenerationClient(cfg config.Config) ports.GenerationClient {
	return generation.NewOpenAIClient(generation.Options{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Timeout:     cfg.Generation.Timeout,
	})
}

func providePrompts(cfg config.Config) (*prompts.Catalog, error) {
	catalog, err := prompts.Load(cfg.Mediation.PromptsFile)
	if err != nil {
		return nil, errs.Wrap(err, "load prompt catalog")
	}
	return catalog, nil
}

type issueParams struct {
	fx.In

	Config    config.Config
	Repo      ports.IssueRepository
	Users     ports.UserDirectory
	Generator ports.GenerationClient
	Catalog   *prompts.Catalog
	UoW       ports.UnitOfWork
	Cache     ports.Cache
}

func provideIssueService(p issueParams) *issueuc.Service {
	return issueuc.NewService(p.Repo, p.Users, p.Generator, p.Catalog, p.UoW, p.Cache, issueuc.Options{
		CodeAttempts: p.Config.Mediation.IssueCodeAttempts,
		CacheTTL:     p.Config.Cache.TTL,
	})
}

type mediationParams struct {
	fx.In

	Config    config.Config
	Logs      ports.ProposalLogRepository
	Issues    ports.IssueRepository
	Generator ports.GenerationClient
	Catalog   *prompts.Catalog
	UoW       ports.UnitOfWork
	Lease     ports.GenerationLock
	Cache     ports.Cache
}

func provideMediationService(p mediationParams) *mediationuc.Service {
	return mediationuc.NewService(p.Logs, p.Issues, p.Generator, p.Catalog, p.UoW, p.Lease, p.Cache, mediationuc.Options{
		VariantCount: p.Config.Mediation.VariantCount,
		CacheTTL:     p.Config.Cache.TTL,
	})
}

type appParams struct {
	fx.In

	Config       config.Config
	DB           *gorm.DB
	Issues       *issueuc.Service
	Mediation    *mediationuc.Service
	Negotiations *negotiationuc.Service
	Accounts     *accountuc.Service
}

func provideApp(p appParams) *App {
	return &App{
		Config:       p.Config,
		DB:           p.DB,
		Issues:       p.Issues,
		Mediation:    p.Mediation,
		Negotiations: p.Negotiations,
		Accounts:     p.Accounts,
	}
}
