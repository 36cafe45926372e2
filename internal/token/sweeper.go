package token

import (
	"context"
	"log/slog"
	"time"

	tokenDatamodel "github.com/frahmantamala/staff-portal/internal/core/datamodel/token"
)

// Sweeper deletes token rows past the store-wide TTL, replacing the TTL
// index a document store would provide. It runs until its context is
// cancelled.
type Sweeper struct {
	store    SweepStore
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(store SweepStore, ttl, interval time.Duration, logger *slog.Logger) *Sweeper {
	if ttl <= 0 {
		ttl = tokenDatamodel.DefaultTTL
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("token sweeper started", "ttl", s.ttl, "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.ttl)
	deleted, err := s.store.DeleteCreatedBefore(cutoff)
	if err != nil {
		s.logger.Error("token sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("token sweep completed", "deleted", deleted, "cutoff", cutoff)
	}
}
