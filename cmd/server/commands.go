package main

import (
	"context"
	"os/signal"
	"syscall"

	"gasdepot/internal/database"
	"gasdepot/internal/repository"
	"gasdepot/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	var seedAdmin bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			log.Info("schema migrated")
			if seedAdmin {
				seeded, err := database.SeedAdmin(db, &cfg.Admin)
				if err != nil {
					return err
				}
				log.Info("admin seed", zap.Bool("configured", seeded))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seedAdmin, "seed-admin", true, "create the admin account from ADMIN_EMAIL/ADMIN_PASSWORD")
	return cmd
}

func sweepCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reaper pass over stale pending transactions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if batch <= 0 {
				batch = cfg.Reaper.BatchSize
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			txRepo := repository.NewTransactionRepository(db)
			orders := service.NewOrderService(repository.NewOrderRepository(db), txRepo)
			payments := service.NewPaymentService(orders, txRepo, newGateway(cfg, log), service.PaymentConfig{
				Currency:      cfg.Store.Currency,
				WebhookSecret: cfg.NotchPay.WebhookSecret,
			}, nil, nil, log)
			expired, err := service.NewReaper(payments, cfg.Reaper.Interval, cfg.Reaper.PendingTTL, batch, log).Sweep(ctx)
			if err != nil {
				return err
			}
			log.Info("sweep complete", zap.Int("expired", expired))
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "maximum transactions to check (default REAPER_BATCH_SIZE)")
	return cmd
}
