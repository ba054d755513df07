package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/atifjaved999/mini-coaching/internal/app"
	"github.com/atifjaved999/mini-coaching/internal/config"
	"github.com/atifjaved999/mini-coaching/internal/database"
	"github.com/atifjaved999/mini-coaching/internal/http/handler"
	"github.com/atifjaved999/mini-coaching/internal/http/middleware"
	"github.com/atifjaved999/mini-coaching/internal/http/router"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/security"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	observability.NewLogger,
	provideObservabilityRuntime,
)

var RuntimeInfraSet = wire.NewSet(
	provideOpenDB,
	provideRedisClient,
	provideSessionCacheStore,
	provideSessionNotifier,
	providePasswordResetNotifier,
	provideStorageService,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSessionRepository,
	repository.NewPasswordResetTokenRepository,
)

var SecuritySet = wire.NewSet(provideTokenManager)

var ServiceSet = wire.NewSet(
	provideAuthService,
	provideSessionService,
	provideBookingService,
	provideUserService,
)

var HTTPSet = wire.NewSet(
	middleware.NewAuthenticator,
	handler.NewAuthHandler,
	handler.NewSessionHandler,
	handler.NewUserHandler,
	provideRouterDependencies,
	router.New,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideObservabilityRuntime(cfg *config.Config, logger *slog.Logger) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	client.AddHook(observability.RedisMetricsHook{})
	return client
}

func provideSessionCacheStore(cfg *config.Config, client redis.UniversalClient) service.SessionCacheStore {
	if cfg.RedisEnabled && client != nil {
		return service.NewRedisSessionCacheStore(client, "session_cache")
	}
	return service.NewInMemorySessionCacheStore()
}

func provideSessionNotifier(cfg *config.Config, client redis.UniversalClient, logger *slog.Logger) service.SessionNotifier {
	if cfg.RedisEnabled && client != nil {
		return service.NewRedisQueueNotifier(client, cfg.NotificationQueueKey)
	}
	return service.NewDevNotifier(logger)
}

func providePasswordResetNotifier(logger *slog.Logger) service.PasswordResetNotifier {
	return service.NewDevNotifier(logger)
}

func provideStorageService(cfg *config.Config) (service.StorageService, error) {
	if !cfg.StorageEnabled {
		return service.NewNoopStorageService(), nil
	}
	svc, err := service.NewMinIOStorageService(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageUseSSL,
	)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure storage bucket: %w", err)
	}
	return svc, nil
}

func provideTokenManager(cfg *config.Config) *security.TokenManager {
	return security.NewTokenManager(cfg.AuthTokenIssuer, cfg.AuthTokenAudience, cfg.AuthTokenSecret)
}

func provideAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	resetTokens repository.PasswordResetTokenRepository,
	tokens *security.TokenManager,
	notifier service.PasswordResetNotifier,
	logger *slog.Logger,
) service.AuthServiceInterface {
	return service.NewAuthService(users, resetTokens, tokens, notifier, cfg.AuthTokenTTL, cfg.ResetTokenTTL, cfg.ResetTokenPepper, logger)
}

func provideSessionService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	cache service.SessionCacheStore,
	notifier service.SessionNotifier,
	logger *slog.Logger,
) service.SessionServiceInterface {
	return service.NewSessionService(sessions, users, cache, notifier, cfg.SessionCacheTTL, logger)
}

func provideBookingService(
	sessions repository.SessionRepository,
	cache service.SessionCacheStore,
	notifier service.SessionNotifier,
	logger *slog.Logger,
) service.BookingServiceInterface {
	return service.NewBookingService(sessions, cache, notifier, logger)
}

func provideUserService(users repository.UserRepository, storage service.StorageService, logger *slog.Logger) service.UserServiceInterface {
	return service.NewUserService(users, storage, logger)
}

func provideRouterDependencies(
	auth *handler.AuthHandler,
	sessions *handler.SessionHandler,
	users *handler.UserHandler,
	authenticator *middleware.Authenticator,
	_ *observability.Runtime,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		Auth:             auth,
		Sessions:         sessions,
		Users:            users,
		Authenticator:    authenticator,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// MigrationRunner applies the schema and seeds the role rows. Run by the
// `migrate` subcommand, never at server startup.
type MigrationRunner struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewMigrationRunner(db *gorm.DB, logger *slog.Logger) *MigrationRunner {
	return &MigrationRunner{db: db, logger: logger}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	report, err := database.SeedSync(m.db)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	m.logger.Info("migration complete", "created_roles", report.CreatedRoles, "noop", report.Noop)
	return nil
}
