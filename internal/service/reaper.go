package service

import (
	"context"
	"time"

	"gasdepot/internal/domain"

	"go.uber.org/zap"
)

// Reaper closes out transactions that stayed pending past their TTL. Each one
// is re-checked with the provider first so a late payment is still honoured,
// and a row whose check fails is left for the next sweep.
type Reaper struct {
	payments *PaymentService
	interval time.Duration
	ttl      time.Duration
	batch    int
	log      *zap.Logger
}

func NewReaper(payments *PaymentService, interval, ttl time.Duration, batch int, log *zap.Logger) *Reaper {
	if log == nil {
		log = zap.NewNop()
	}
	if batch <= 0 {
		batch = 100
	}
	return &Reaper{payments: payments, interval: interval, ttl: ttl, batch: batch, log: log.Named("reaper")}
}

// Run sweeps every interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("reaper disabled")
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.log.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep handles one batch of stale pending transactions and returns how many
// were marked failed.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	s := r.payments
	cutoff := s.now().Add(-r.ttl)
	stale, err := s.txRepo.ListStalePending(ctx, cutoff, r.batch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, tx := range stale {
		if ctx.Err() != nil {
			break
		}
		resp, err := s.getPaymentStatus(ctx, tx.Reference)
		if err != nil {
			// Left pending; the next sweep asks again.
			r.log.Warn("provider check failed, skipping", zap.String("reference", tx.Reference), zap.Error(err))
			continue
		}
		sig := SignalFailed
		if resp.IsComplete() {
			sig = SignalComplete
		}
		out, err := s.reconcile(ctx, domain.ChannelReaper, tx.Reference, sig, resp.Raw)
		if err != nil {
			r.log.Error("reconcile stale transaction", zap.String("reference", tx.Reference), zap.Error(err))
			continue
		}
		if out.Applied && out.TransactionStatus == domain.TransactionStatusFailed {
			expired++
		}
	}
	s.metrics.AddReaperExpired(expired)
	if len(stale) > 0 {
		r.log.Info("sweep done", zap.Int("checked", len(stale)), zap.Int("expired", expired))
	}
	return expired, nil
}
