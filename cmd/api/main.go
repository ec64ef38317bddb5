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

	"go.uber.org/zap"

	apiappraisal "project_appraisal/pkg/api/appraisal"
	apiconfig "project_appraisal/pkg/api/config"
	"project_appraisal/pkg/core/config"
	"project_appraisal/pkg/core/logging"
	"project_appraisal/pkg/core/store"
)

func main() {
	settings := config.LoadSettings()

	logger, err := logging.New(settings.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(settings, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(settings config.Settings, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(settings.ConfigPath)
	if err != nil {
		return err
	}
	logger.Info("engine config loaded",
		zap.String("path", settings.ConfigPath),
		zap.Int("scenarios", len(cfg.Scenarios)),
		zap.Float64("vgf_target_firr", cfg.VGF.TargetFIRR))

	runs, err := openRunStore(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	mux := http.NewServeMux()
	apiappraisal.NewHandler(cfg, runs, logger.Named("appraisal")).Register(mux)
	mux.HandleFunc("/api/config", apiconfig.NewHandler(cfg).HandleConfig)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
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

// openRunStore prefers PostgreSQL and falls back to the file cache when
// DATABASE_URL is unset or unreachable.
func openRunStore(ctx context.Context, settings config.Settings, logger *zap.Logger) (store.RunStore, error) {
	if settings.DatabaseURL != "" {
		if err := store.InitDB(ctx, settings.DatabaseURL); err != nil {
			logger.Warn("database unavailable, using file cache", zap.Error(err))
		} else {
			logger.Info("storing appraisal runs in PostgreSQL")
			return store.NewAppraisalRepo(store.GetPool()), nil
		}
	}

	cache, err := store.NewResultCache(settings.CacheDir)
	if err != nil {
		return nil, err
	}
	logger.Info("storing appraisal runs on disk", zap.String("dir", cache.Dir()))
	return cache, nil
}
