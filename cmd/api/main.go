package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dependencies := map[string]handlers.Pinger{}
	var userRepo repository.UserRepository

	switch cfg.Store.Backend {
	case "redis":
		rdb := persistence.NewRedis(cfg.Redis, logger)
		defer rdb.Close()
		userRepo = repository.NewRedisUserRepository(rdb.Client)
		dependencies["redis"] = rdb
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		dependencies["postgres"] = pg
	}

	tokens := token.NewService(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenTTL(),
		cfg.Auth.RefreshTokenTTL(),
	)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Tokens:   tokens,
		Logger:   logger,
	})

	sessions := auth.NewSessionResolver(tokens)
	cookies := auth.NewCookieWriter(cfg.App.IsProduction(), tokens.AccessTTL(), tokens.RefreshTTL())
	gate := auth.NewRoleGate(sessions)

	restricted := make(map[string][]domain.Role, len(cfg.Gate.AdminPrefixes))
	for _, prefix := range cfg.Gate.AdminPrefixes {
		restricted[prefix] = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
	}
	edge := auth.NewEdgeGate(auth.EdgeGateConfig{
		Protected:  cfg.Gate.ProtectedPrefixes,
		Restricted: restricted,
		Bypass:     cfg.Gate.BypassPrefixes,
	}, tokens, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:    handlers.NewAuthHandler(authService, sessions, cookies),
		Pages:   handlers.NewPagesHandler(),
		Metrics: handlers.NewMetricsHandler(metrics),
		Gate:    gate,
		Edge:    edge,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
