// Package main is the entry point for the shopcart server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/shopcart/internal/auth"
	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/config"
	"github.com/vyrodovalexey/shopcart/internal/events"
	"github.com/vyrodovalexey/shopcart/internal/server"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is normal; the environment may already be set.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to read .env file", zap.Error(envErr))
	}

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("auth_mode", cfg.AuthMode),
		zap.String("catalog_path", cfg.CatalogPath),
		zap.Bool("redis_enabled", cfg.RedisAddr != ""),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
	)

	authenticator, err := createAuthenticator(cfg, logger)
	if err != nil {
		logger.Error("failed to create authenticator", zap.Error(err))
		return 1
	}

	cat, err := loadCatalog(cfg, logger)
	if err != nil {
		logger.Error("failed to load catalog", zap.Error(err))
		return 1
	}

	cart := store.NewMemoryCart()

	stopSnapshots, err := attachSnapshots(context.Background(), cfg, cart, logger)
	if err != nil {
		logger.Error("failed to set up cart snapshots", zap.Error(err))
		return 1
	}
	defer stopSnapshots()

	stopEvents, err := attachEvents(cfg, cart, logger)
	if err != nil {
		logger.Error("failed to set up cart events", zap.Error(err))
		return 1
	}
	defer stopEvents()

	srv := server.New(cfg, logger, cat, cart, authenticator)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// createAuthenticator creates an authenticator based on the config auth
// mode. It returns nil when authentication is disabled.
func createAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	switch cfg.AuthMode {
	case "none", "":
		logger.Info("authentication disabled")
		return nil, nil
	case "basic":
		logger.Info("authentication mode: basic auth")
		return auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
	case "apikey":
		logger.Info("authentication mode: API key")
		return auth.NewAPIKeyAuthenticator(cfg.APIKeys)
	case "jwt":
		logger.Info("authentication mode: JWT",
			zap.String("issuer", cfg.JWTIssuer),
			zap.String("audience", cfg.JWTAudience),
		)
		return newJWTAuthenticator(cfg)
	case "multi":
		logger.Info("authentication mode: multi")
		return createMultiAuthenticator(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}

// createMultiAuthenticator combines every configured method. Order is
// JWT, basic, API key.
func createMultiAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	var authenticators []auth.Authenticator

	if cfg.JWTSecret != "" {
		ja, err := newJWTAuthenticator(cfg)
		if err != nil {
			return nil, err
		}
		authenticators = append(authenticators, ja)
		logger.Info("multi-auth: JWT enabled")
	}

	if cfg.BasicAuthUsers != "" {
		ba, err := auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
		if err != nil {
			return nil, fmt.Errorf("creating basic authenticator: %w", err)
		}
		authenticators = append(authenticators, ba)
		logger.Info("multi-auth: basic auth enabled")
	}

	if cfg.APIKeys != "" {
		ak, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, fmt.Errorf("creating API key authenticator: %w", err)
		}
		authenticators = append(authenticators, ak)
		logger.Info("multi-auth: API key auth enabled")
	}

	if len(authenticators) == 0 {
		return nil, errors.New("multi auth mode requires at least one authenticator")
	}

	return auth.NewMultiAuthenticator(authenticators...), nil
}

func newJWTAuthenticator(cfg *config.Config) (*auth.TokenAuthenticator, error) {
	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}
	return auth.NewTokenAuthenticator(verifier), nil
}

// loadCatalog reads the seed file, or returns an empty catalog when no
// file is configured.
func loadCatalog(cfg *config.Config, logger *zap.Logger) (catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		logger.Warn("no catalog file configured, serving an empty catalog")
		return catalog.NewMemoryCatalog(), nil
	}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	products, orders := cat.Len()
	logger.Info("catalog loaded",
		zap.String("path", cfg.CatalogPath),
		zap.Int("products", products),
		zap.Int("orders", orders),
	)

	return cat, nil
}

// attachSnapshots restores the cart from Redis and keeps the snapshot up
// to date. It is a no-op when Redis is not configured.
func attachSnapshots(
	ctx context.Context,
	cfg *config.Config,
	cart *store.MemoryCart,
	logger *zap.Logger,
) (stop func(), err error) {
	if cfg.RedisAddr == "" {
		return func() {}, nil
	}

	client, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	snap := store.NewRedisSnapshotter(client, cfg.RedisKey)

	restoreCtx, cancel := context.WithTimeout(ctx, store.DefaultSnapshotTimeout)
	defer cancel()

	n, err := store.RestoreFrom(restoreCtx, cart, snap)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("cart restored from redis",
		zap.String("addr", cfg.RedisAddr),
		zap.String("key", cfg.RedisKey),
		zap.Int("line_items", n),
	)

	unsubscribe := store.PersistOnChange(cart, snap, logger, store.DefaultSnapshotTimeout)

	return func() {
		unsubscribe()
		if err := client.Close(); err != nil {
			logger.Debug("error closing redis client", zap.Error(err))
		}
	}, nil
}

// attachEvents publishes cart changes to NATS. It is a no-op when NATS is
// not configured.
func attachEvents(cfg *config.Config, cart store.Cart, logger *zap.Logger) (stop func(), err error) {
	if cfg.NATSURL == "" {
		return func() {}, nil
	}

	conn, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}

	pub, err := events.NewNATSPublisher(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("publishing cart events",
		zap.String("url", cfg.NATSURL),
		zap.String("subject", cfg.NATSSubject),
	)

	unsubscribe := events.Forward(cart, pub, cfg.NATSSubject, logger)

	return func() {
		unsubscribe()
		if err := conn.Drain(); err != nil {
			logger.Debug("error draining nats connection", zap.Error(err))
		}
	}, nil
}
