// Package sweeper periodically deletes expired session tokens.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
)

// Sessions is implemented by repository.SessionStore.
type Sessions interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Locker serializes sweeps across replicas sharing one database. ok is false
// when another replica holds the lock.
type Locker interface {
	Lock(ctx context.Context) (release func(), ok bool, err error)
}

type Sweeper struct {
	Sessions Sessions
	Locker   Locker
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  *metrics.Registry
	Now      func() time.Time
}

// RunOnce performs a single sweep and returns how many sessions were removed.
func (s Sweeper) RunOnce(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if s.Locker != nil {
		release, ok, err := s.Locker.Lock(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
		defer release()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	n, err := s.Sessions.SweepExpired(ctx, now())
	s.Metrics.ObserveSwept(n)
	return n, err
}

// Run sweeps every Interval until ctx is done.
func (s Sweeper) Run(ctx context.Context) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("starting session sweeper", "interval", s.Interval)
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session sweeper exiting")
			return
		case <-t.C:
			n, err := s.RunOnce(ctx)
			if err != nil && ctx.Err() == nil {
				logger.Error("sweep sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
