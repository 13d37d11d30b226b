package confirmation

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-confirm-mailer/internal/metrics"
)

// Sweeper periodically evicts expired confirmations. Redemption checks expiry
// on its own, so the sweeper only bounds how long dead records linger.
type Sweeper struct {
	store    Store
	interval time.Duration
}

func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("confirmation sweeper started", "interval", s.interval)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("confirmation sweeper stopped")
			return
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single sweep and returns the number of removed records.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	n, err := s.store.Sweep(ctx)
	if err != nil {
		metrics.SweepRuns.WithLabelValues(metrics.ResultError).Inc()
		slog.Warn("confirmation sweep failed", "removed", n, "err", err)
	} else {
		metrics.SweepRuns.WithLabelValues("ok").Inc()
	}
	if n > 0 {
		metrics.ConfirmationsSwept.Add(float64(n))
		slog.Info("cleaned up expired confirmation codes", "removed", n)
	}
	return n
}
