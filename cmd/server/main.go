package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/api"
	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/logger"
	"github.com/xtding233/craps-backend/internal/metrics"
	"github.com/xtding233/craps-backend/internal/platform/config"
	"github.com/xtding233/craps-backend/internal/platform/otel"
	"github.com/xtding233/craps-backend/internal/service"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

const serviceName = "craps-server"

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(serviceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	if log, err = logger.WithLevel(log, cfg.LogLevel); err != nil {
		panic(fmt.Errorf("logger level: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, serviceName)
	if err != nil {
		log.Fatal("otel setup failed", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	loader := tablecfg.NewLoader(cfg.RulesDir)
	if _, _, err := loader.Resolve("", "", tablecfg.Overrides{}); err != nil {
		log.Fatal("default table rules invalid", zap.String("dir", cfg.RulesDir), zap.Error(err))
	}
	if _, err := loader.Paths().All(); err != nil {
		log.Fatal("list rules files", zap.Error(err))
	}
	watcher := tablecfg.NewTreeWatcher(loader.Paths(), cfg.WatchInterval, func(path string) {
		loader.Invalidate()
		log.Info("rules changed, cache cleared", zap.String("file", path))
	})
	watcher.Start()
	defer watcher.Stop()

	runner := &service.Runner{
		Rules:       loader,
		Metrics:     metrics.New(),
		Log:         log,
		Workers:     cfg.Workers,
		MaxSessions: cfg.MaxSessions,
	}
	if cfg.HistoryDB != "" {
		store, err := history.Open(ctx, cfg.HistoryDB)
		if err != nil {
			log.Fatal("open history", zap.Error(err))
		}
		defer store.Close()
		runner.History = store
		log.Info("roll history enabled", zap.String("db", cfg.HistoryDB))
	}

	srv := api.NewServer(runner, runner.Metrics, log)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("starting service", zap.String("addr", cfg.HTTPAddr), zap.String("rules", cfg.RulesDir))
	if err := srv.Listen(cfg.HTTPAddr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
