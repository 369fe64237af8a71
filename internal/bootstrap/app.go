// Package bootstrap wires configuration, storage and transport into a
// runnable service.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yaddak/yaddak/internal/auth/guard"
	authhttp "github.com/yaddak/yaddak/internal/auth/http"
	"github.com/yaddak/yaddak/internal/auth/service"
	"github.com/yaddak/yaddak/internal/common/clock"
	"github.com/yaddak/yaddak/internal/common/config"
	"github.com/yaddak/yaddak/internal/common/constants"
	"github.com/yaddak/yaddak/internal/common/crypto"
	"github.com/yaddak/yaddak/internal/common/db"
	commonhttp "github.com/yaddak/yaddak/internal/common/http"
	"github.com/yaddak/yaddak/internal/common/logger"
	srv "github.com/yaddak/yaddak/internal/common/server"
	monsterhttp "github.com/yaddak/yaddak/internal/monster/http"
	monsterrepo "github.com/yaddak/yaddak/internal/monster/repository"
	"github.com/yaddak/yaddak/internal/monster/seed"
	"github.com/yaddak/yaddak/internal/store"
	userrepo "github.com/yaddak/yaddak/internal/user/repository"
)

const ServiceName = "yaddak"

type App struct {
	Config   config.Config
	Log      *logger.Logger
	Pool     *pgxpool.Pool
	Users    *userrepo.PgRepository
	Monsters *monsterrepo.PgRepository
	Hasher   crypto.CredentialHasher
	IDs      crypto.IDGenerator
	Auth     *service.AuthService
	Guard    *guard.Guard
}

// New connects to PostgreSQL and builds every component. The caller owns
// Close.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	hasher, err := crypto.NewArgon2Hasher(cfg.CredentialSecret, crypto.DefaultArgon2Params)
	if err != nil {
		return nil, err
	}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	opts := store.Options{
		Retry: db.DefaultRetryConfig,
		Breaker: db.NewDBCircuitBreaker(
			cfg.CircuitBreakerThreshold,
			cfg.CircuitBreakerTimeout,
			cfg.CircuitBreakerReset,
			log,
		),
	}
	users := userrepo.NewPgRepository(pool, log, opts)
	monsters := monsterrepo.NewPgRepository(pool, log, opts)
	ids := crypto.NewUUIDGenerator()

	tokens, verifier, err := tokenMode(cfg, users)
	if err != nil {
		pool.Close()
		return nil, err
	}

	auth := service.NewAuthService(service.AuthServiceDeps{
		Repo:        users,
		Hasher:      hasher,
		IDGenerator: ids,
		Tokens:      tokens,
		Log:         log,
	})

	log.WithFields(ctx, logger.Fields{
		"token_mode": cfg.TokenMode,
		"action":     "app_initialized",
	}).Info("application initialized")

	return &App{
		Config:   cfg,
		Log:      log,
		Pool:     pool,
		Users:    users,
		Monsters: monsters,
		Hasher:   hasher,
		IDs:      ids,
		Auth:     auth,
		Guard:    guard.New(verifier, cfg.TokenMode, log),
	}, nil
}

func tokenMode(cfg config.Config, users *userrepo.PgRepository) (service.TokenIssuer, guard.Verifier, error) {
	if cfg.TokenMode == config.TokenModeDigest {
		return service.DigestTokenIssuer{}, guard.NewDigestVerifier(users), nil
	}
	issuer, err := service.NewSessionTokenIssuer(cfg.CredentialSecret, cfg.AccessTokenTTL, clock.System{})
	if err != nil {
		return nil, nil, err
	}
	return issuer, guard.NewSessionVerifier(issuer, users), nil
}

// Migrate creates users before monsters, which reference them, then makes
// sure the catalog owner exists so its identity is claimed before any
// registration is served.
func (a *App) Migrate(ctx context.Context) error {
	err := MigrateAll(ctx, a.Log,
		Step{Name: userrepo.Table, Migrator: a.Users},
		Step{Name: monsterrepo.Table, Migrator: a.Monsters},
	)
	if err != nil {
		return err
	}
	return a.importer().EnsureCatalogOwner(ctx)
}

// Seed imports the bestiary file within SeedTimeout.
func (a *App) Seed(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.SeedTimeout)
	defer cancel()

	return a.importer().ImportFile(ctx, a.Config.SeedFile)
}

func (a *App) importer() *seed.Importer {
	return seed.NewImporter(a.Monsters, a.Users, a.Hasher, a.IDs, a.Log)
}

func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", commonhttp.HealthHandler(a.Log, a.Pool))
	mux.Handle("GET /metrics", promhttp.Handler())

	authhttp.NewHandler(a.Auth, a.Log).Routes(mux, a.Guard.Middleware)
	monsterhttp.NewHandler(a.Monsters, a.IDs, a.Log).Routes(mux, a.Guard.Middleware)

	return commonhttp.BuildBaseHandler(a.Log, a.Config.RequestTimeout, mux)
}

// Serve migrates, seeds and serves until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Migrate(ctx); err != nil {
		return err
	}

	inserted, err := a.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed monsters: %w", err)
	}
	a.Log.Infof("seed complete: %d monsters inserted", inserted)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	db.StartPoolMetrics(metricsCtx, a.Pool, constants.DBPoolMetricsInterval)

	server := srv.New(":"+a.Config.HTTPPort, a.Handler())

	return srv.Run(ctx, server, a.Log, ServiceName, func(context.Context) error {
		a.Log.Infof("%s service: stopping pool metrics", ServiceName)
		stopMetrics()
		return nil
	})
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
