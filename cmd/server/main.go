package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jaysk9599-stack/jaygogamilknew/internal/cache"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/config"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/httpapi"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/lock"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/logging"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/service"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/sheetsync"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store"
	"github.com/jaysk9599-stack/jaygogamilknew/internal/store/memory"
	pgstore "github.com/jaysk9599-stack/jaygogamilknew/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := validateSecurityConfig(cfg); err != nil {
		logger.WithError(err).Fatal("invalid security configuration")
	}
	sheetCfg := sheetSyncConfig(cfg)
	if err := sheetCfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid sheet sync configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback")
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Fatal("apply postgres schema")
		}
		repo = pg
		closers = append(closers, pg.Close)
		logger.WithField("repository", "postgres").Info("storage ready")
	} else {
		repo = memory.NewSeeded()
		logger.WithField("repository", "memory").Warn("DATABASE_URL not set; data is lost on restart")
	}

	opts := service.Options{
		CacheTTL: time.Duration(cfg.StatementCacheTTLSeconds) * time.Second,
		Logger:   logger,
	}
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		statementCache := cache.NewRedisStatementCache(client)
		if err := statementCache.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis unavailable, using noop cache and local locks")
			_ = client.Close()
		} else {
			opts.Cache = statementCache
			opts.Locker = lock.NewRedisLocker(client)
			closers = append(closers, client.Close)
			logger.WithField("addr", cfg.RedisAddr).Info("cache and locks: redis")
		}
	} else {
		logger.Info("cache: noop, locks: local")
	}

	if sheetCfg.Enabled() {
		client, err := sheetsync.NewClient(sheetCfg)
		if err != nil {
			logger.WithError(err).Fatal("sheet sync client")
		}
		opts.Sheets = client
		logger.Info("sheet sync: enabled")
	}

	svc := service.New(repo, opts)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)
	api := httpapi.New(svc, auth, httpapi.Options{
		AllowedOrigin:     cfg.AllowedOrigin,
		AllowRegistration: cfg.AllowRegistration,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.Address()).Info("dairy ledger listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}
	closeAll(logger, closers)
	logger.Info("server stopped")
}

func closeAll(logger logrus.FieldLogger, closers []func() error) {
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.WithError(err).Warn("close error")
		}
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if cfg.AllowedOrigin == "*" && cfg.AllowRegistration {
		return fmt.Errorf("ALLOWED_ORIGIN must name the front-end origin when registration is open")
	}
	return nil
}

func sheetSyncConfig(cfg config.Config) sheetsync.Config {
	return sheetsync.Config{
		URL:      cfg.SheetSyncURL,
		Username: cfg.SheetSyncUsername,
		Password: cfg.SheetSyncPassword,
		Timeout:  time.Duration(cfg.SheetSyncTimeoutSeconds) * time.Second,
	}
}
