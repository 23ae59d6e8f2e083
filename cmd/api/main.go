package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tanvirio/contactbook/internal/api/router"
	"github.com/tanvirio/contactbook/internal/auth"
	appconfig "github.com/tanvirio/contactbook/internal/config"
	"github.com/tanvirio/contactbook/internal/contacts"
	"github.com/tanvirio/contactbook/internal/database"
	"github.com/tanvirio/contactbook/internal/notify"
	"github.com/tanvirio/contactbook/internal/observability/metrics"
	"github.com/tanvirio/contactbook/internal/phone"
	"github.com/tanvirio/contactbook/internal/profile"
	"github.com/tanvirio/contactbook/internal/stats"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// redisOptions builds client options from config; TLS deployments get a
// modern-minimum handshake.
func redisOptions(cfg *appconfig.Config) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting contactbook API server", "env", cfg.Env, "port", cfg.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Separate database/sql handle for the reporting queries.
	reportDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open reporting db failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = reportDB.Close() }()

	redisClient := redis.NewClient(redisOptions(cfg))
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	contactMetrics := metrics.NewContactMetrics(registry)
	authMetrics := metrics.NewAuthMetrics(registry)

	runner := database.NewRunner(pool)
	normalizer := phone.NewNormalizer(cfg.DefaultCountryCode)

	userRepo := users.NewPostgresRepository(pool)
	profileRepo := profile.NewPostgresRepository(pool)

	contactStore := contacts.NewStore(pool)
	contactSvc := contacts.NewService(contactStore, runner, normalizer, logger.WithComponent("contacts"), contactMetrics)

	mailer := notify.NewService(notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger), logger.WithComponent("notify"))

	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := auth.NewService(auth.Config{
		Users:      userRepo,
		Profiles:   profileRepo,
		Importer:   contactSvc,
		Tokens:     tokens,
		Refresh:    auth.NewRedisTokenStore(redisClient),
		Tx:         runner,
		Mailer:     mailer,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger.WithComponent("auth"),
		Metrics:    authMetrics,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		AuthHandler:        auth.NewHandler(authSvc, logger),
		ContactsHandler:    contacts.NewHandler(contactSvc, logger),
		ProfileHandler:     profile.NewHandler(profileRepo, logger),
		StatsHandler:       stats.NewHandler(stats.NewService(reportDB), logger),
		Tokens:             tokens,
		Users:              userRepo,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
