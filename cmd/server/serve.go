package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gasdepot/internal/cache"
	"gasdepot/internal/database"
	"gasdepot/internal/router"
	"gasdepot/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the pending-payment reaper",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if log != nil {
		defer func() { _ = log.Sync() }()
	}
	if err != nil {
		if log != nil {
			log.Error("startup failed", zap.Error(err))
		}
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Error("migrate failed", zap.Error(err))
		return err
	}
	if seeded, err := database.SeedAdmin(db, &cfg.Admin); err != nil {
		log.Error("seed admin failed", zap.Error(err))
	} else if !seeded {
		log.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, back office login disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var idem *cache.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, idempotency keys disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer rdb.Close()
			idem = cache.NewIdempotencyStore(rdb, cache.DefaultTTL)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := router.Setup(ctx, router.Deps{
		Config:      cfg,
		DB:          db,
		Gateway:     newGateway(cfg, log),
		Idempotency: idem,
		Registry:    reg,
		Log:         log,
	})

	reaper := service.NewReaper(app.Payments, cfg.Reaper.Interval, cfg.Reaper.PendingTTL, cfg.Reaper.BatchSize, log)
	go reaper.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("listen failed", zap.Error(err))
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
