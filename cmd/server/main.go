// @title        Financial Organizer Auth API
// @version      1.0
// @description  Account registration, login and token refresh.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pskiad17/FinancialOrganizer/internal/api"
	"github.com/pskiad17/FinancialOrganizer/internal/api/handler"
	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
	"github.com/pskiad17/FinancialOrganizer/internal/core/service"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/config"
	mongostore "github.com/pskiad17/FinancialOrganizer/internal/infrastructure/db/mongo"
	redisstore "github.com/pskiad17/FinancialOrganizer/internal/infrastructure/db/redis"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/password"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/queue"
	"github.com/pskiad17/FinancialOrganizer/internal/infrastructure/token"
	"github.com/pskiad17/FinancialOrganizer/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "financial-organizer-auth",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	if err := mongostore.SeedRoles(ctx, db, domain.RoleUser, domain.RoleAdmin); err != nil {
		return err
	}

	checks := map[string]handler.HealthCheck{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// The role cache is optional; without Redis every lookup reads MongoDB.
	var roleCache ports.RoleCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, role cache disabled")
		} else {
			defer func() { _ = rdb.Close() }()
			roleCache = redisstore.NewRoleCache(rdb)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	// --- Token and password primitives ---
	signer, err := token.NewSigner([]byte(cfg.Auth.TokenKey), cfg.Auth.TokenIssuer)
	if err != nil {
		return err
	}
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)

	// --- Audit trail ---
	dispatcherCtx, cancelDispatcher := context.WithCancel(context.Background())
	defer cancelDispatcher()
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer,
		mongostore.NewAuthEventRepository(db), logger.Component("audit"))
	dispatcher.Start(dispatcherCtx)
	defer dispatcher.Close()

	// --- Services ---
	roles := mongostore.NewRoleRepository(db)
	resolver := service.NewRoleResolver(roles, roleCache, cfg.Redis.RoleCacheTTL, logger.Component("role_resolver"))
	authService := service.NewAuthService(
		mongostore.NewAccountRepository(db),
		roles,
		resolver,
		signer,
		hasher,
		dispatcher,
		service.AuthOptions{
			TokenTTL:           cfg.Auth.TokenTTL,
			MaskUnknownAccount: cfg.Auth.MaskUnknownAccount,
		},
		logger.Component("auth"),
	)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		AuthService:  authService,
		Verifier:     signer,
		HealthChecks: checks,
		Registry:     prometheus.NewRegistry(),
		RateLimit:    rate.Limit(cfg.Auth.RateLimit),
		RateBurst:    cfg.Auth.RateBurst,
		Log:          logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
