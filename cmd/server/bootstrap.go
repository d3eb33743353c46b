package main

import (
	"fmt"

	"gasdepot/config"
	"gasdepot/internal/database"
	"gasdepot/internal/logger"
	"gasdepot/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bootstrap loads configuration, builds the logger and opens the database.
// Missing provider keys are logged; a missing or unreachable database is fatal.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		return nil, log, nil, err
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return nil, log, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, log, db, nil
}

// newGateway returns the NotchPay client, or the in-memory stub when running
// outside production without credentials.
func newGateway(cfg *config.Config, log *zap.Logger) payment.Gateway {
	if cfg.NotchPay.PublicKey == "" && !cfg.IsProduction() {
		log.Warn("NOTCHPAY_PUBLIC_KEY not set, using stub payment gateway")
		return payment.NewStubGateway()
	}
	return payment.NewNotchPayClient(cfg.NotchPay.BaseURL, cfg.NotchPay.PublicKey, cfg.NotchPay.PrivateKey, cfg.NotchPay.Timeout, log)
}
