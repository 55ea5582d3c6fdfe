// Package main is the entry point for the production portal's MRP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/config"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/domain/mrp/quantity"
	v1 "github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/http/v1"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/cache/mrpcache"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/storage/postgres"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/storage/postgres/erp"
	"github.com/dangquyenbui-dotcom/production-portal-github/internal/infrastructure/storage/postgres/projections"
	"github.com/dangquyenbui-dotcom/production-portal-github/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.DevLogging,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting production portal MRP server")

	erpPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.ERPDatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to ERP read mirror", "error", err)
	}
	defer erpPool.Close()
	log.Info("ERP read mirror connection established")

	projectionsPool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.ProjectionDatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to projection store", "error", err)
	}
	defer projectionsPool.Close()
	log.Info("local projection store connection established")

	store := projections.New(projectionsPool.Unwrap())
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalw("failed to ensure projection store schema", "error", err)
	}

	gateway := erp.New(erpPool.Unwrap())

	engine := mrp.NewEngine(gateway, store, mrp.EngineConfig{
		QtyTolerance: quantity.FromFloat64(cfg.QtyTolerance),
		ScrapCap:     quantity.FromFloat64(cfg.ScrapCap),
	})

	cache := mrpcache.New(func(runCtx context.Context) (mrp.RunOutput, error) {
		runCtx, cancel := context.WithTimeout(runCtx, cfg.RequestDeadline)
		defer cancel()
		return engine.Run(runCtx)
	}, cfg.CacheTTL)

	router := v1.NewRouter(v1.RouterConfig{
		Cache:           cache,
		Store:           store,
		ERPPool:         erpPool.Unwrap(),
		ProjectionsPool: projectionsPool.Unwrap(),
		Logger:          log,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestDeadline + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
