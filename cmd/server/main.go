package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/junholee/matching-engine/internal/api"
	"github.com/junholee/matching-engine/internal/config"
	"github.com/junholee/matching-engine/internal/engine"
	"github.com/junholee/matching-engine/internal/service"
	"github.com/junholee/matching-engine/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	orders, err := newOrderStore(cfg.Store)
	if err != nil {
		log.Fatal("order store init failed", zap.Error(err))
	}

	cache := engine.NewBookCache()
	manager := engine.NewManager(
		cfg.Engine.Symbols,
		cfg.Engine.QueueCapacity,
		cfg.Engine.ShutdownGrace,
		cache,
		orders,
		log,
	)
	manager.Start()

	svc := service.NewOrderService(manager, cache, orders, log)
	stream := api.NewDepthStream(svc, cfg.Stream.Interval, log)
	server := api.NewServer(svc, stream, log)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}
	metricsSrv := &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: promhttp.Handler(),
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()
	go func() {
		log.Info("metrics server listening", zap.String("addr", cfg.Server.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Stop accepting requests first, then drain the engines.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	manager.Stop()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", zap.Error(err))
	}
	log.Info("bye")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func newOrderStore(cfg config.StoreConfig) (store.OrderStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return store.NewSQLiteStore(cfg.DSN)
	default:
		return store.NewMemoryStore(), nil
	}
}
