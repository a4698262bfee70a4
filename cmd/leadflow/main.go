package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/leadflowhq/leadflow/modules/entitlement"
	"github.com/leadflowhq/leadflow/pkg/billing"
	"github.com/leadflowhq/leadflow/pkg/config"
	"github.com/leadflowhq/leadflow/pkg/httpserver"
	"github.com/leadflowhq/leadflow/pkg/logger"
	"github.com/leadflowhq/leadflow/pkg/notification"
	"github.com/leadflowhq/leadflow/pkg/pg"
	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
	"github.com/leadflowhq/leadflow/pkg/redis"
	"github.com/leadflowhq/leadflow/pkg/usage"
)

type appConfig struct {
	Environment  string `env:"APP_ENV" envDefault:"development"`
	ProfileStore string `env:"PROFILE_STORE" envDefault:"postgres"`
	PriceMapFile string `env:"BILLING_PRICE_MAP_FILE"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "leadflow"),
		logger.WithContextExtractors(requestIDExtractor),
	)
	logger.SetAsDefault(log)

	store, storeCheck, err := newProfileStore(ctx, appCfg, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize profile store", logger.Error(err))
		os.Exit(1)
	}

	accountant, err := usage.NewAccountant(plan.DefaultCatalog(), store)
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize accountant", logger.Error(err))
		os.Exit(1)
	}

	prices, err := loadPriceMap(appCfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to load billing price map", logger.Error(err))
		os.Exit(1)
	}

	reconciler, err := billing.NewReconciler(prices, store, newNotifier(appCfg, log),
		billing.WithLogger(log))
	if err != nil {
		log.ErrorContext(ctx, "failed to initialize billing reconciler", logger.Error(err))
		os.Exit(1)
	}

	svc := entitlement.NewService(accountant, reconciler, entitlement.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, storeCheck))
	r.Mount("/entitlements", svc.Handle())

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "http server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// newProfileStore builds the configured profile store and its readiness
// check. Postgres is the default; redis exists for deployments that keep
// profiles in the cache tier.
func newProfileStore(ctx context.Context, appCfg appConfig, log *slog.Logger) (profile.Store, func(context.Context) error, error) {
	switch appCfg.ProfileStore {
	case "redis":
		var cfg redis.Config
		config.MustLoad(&cfg)

		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return profile.NewRedisStore(client), redis.Healthcheck(client), nil

	default:
		var cfg pg.Config
		config.MustLoad(&cfg)

		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, profile.Migrations, cfg, log); err != nil {
			return nil, nil, err
		}
		return profile.NewPostgresStore(pool), pg.Healthcheck(pool), nil
	}
}

// loadPriceMap prefers the YAML file when configured, falling back to the
// individual price-id env vars.
func loadPriceMap(appCfg appConfig) (billing.PriceMap, error) {
	if appCfg.PriceMapFile != "" {
		return billing.LoadPriceMap(appCfg.PriceMapFile)
	}

	var cfg billing.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return billing.NewPriceMap(cfg)
}

// newNotifier uses Postmark when tokens are configured and the log-only
// notifier otherwise, so local development never sends real email.
func newNotifier(appCfg appConfig, log *slog.Logger) notification.Notifier {
	var cfg notification.Config
	if err := config.Load(&cfg); err != nil ||
		cfg.PostmarkServerToken == "" || appCfg.Environment == "development" {
		return notification.NewDevNotifier(log)
	}
	return notification.MustNewPostmarkNotifier(cfg)
}

// requestIDExtractor surfaces the chi request id on every log record.
func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return slog.String("request_id", id), true
	}
	return slog.Attr{}, false
}
