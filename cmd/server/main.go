package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/zenite-dash/internal/analytics"
	"github.com/AngelCh415/zenite-dash/internal/config"
	"github.com/AngelCh415/zenite-dash/internal/crm"
	"github.com/AngelCh415/zenite-dash/internal/httpx"
	"github.com/AngelCh415/zenite-dash/internal/metrics"
	"github.com/AngelCh415/zenite-dash/internal/store"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := crm.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.StartupRetries)
	if err != nil {
		return err
	}
	defer db.Close()

	kv, err := store.Open(ctx, store.Options{
		Backend:       cfg.KVBackend,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		BadgerDir:     cfg.BadgerDir,
		Retries:       cfg.StartupRetries,
	}, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	m := metrics.NewCollector()
	svc := analytics.NewService(crm.NewSQLSource(db), logger,
		analytics.WithClosedStages(analytics.ClosedStages{Prefixes: cfg.ClosedStagePrefixes, Exact: cfg.ClosedStages}),
		analytics.WithFetchObserver(m.RecordFetchError),
	)

	r := httpx.NewRouter(httpx.Deps{
		Log:         logger,
		Data:        svc,
		Layouts:     store.NewLayoutRepository(kv),
		Metrics:     m,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout,
	}
	if cfg.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET not set, any bearer token is accepted")
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port), slog.String("kv", cfg.KVBackend), slog.String("db", cfg.DBDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
