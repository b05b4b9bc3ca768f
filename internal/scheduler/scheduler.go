package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BookingSweeper is the slice of the booking service the sweeper drives.
type BookingSweeper interface {
	ProcessExpiredBookings(ctx context.Context) (int, error)
}

// Sweeper periodically reclaims capacity from expired unpaid holds.
type Sweeper struct {
	svc      BookingSweeper
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(svc BookingSweeper, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		svc:      svc,
		interval: interval,
		log:      log.With(zap.String("worker", "expiry_sweeper")),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs immediately so holds
// that expired while the process was down are reclaimed on boot.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		defer close(s.done)

		s.log.Info("Expiry sweeper started", zap.Duration("interval", s.interval))

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Expiry sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Sweep panicked", zap.Any("panic", r))
		}
	}()

	cancelled, err := s.svc.ProcessExpiredBookings(ctx)
	if err != nil {
		s.log.Error("Sweep failed", zap.Error(err))
		return
	}
	if cancelled > 0 {
		s.log.Info("Sweep reclaimed expired holds", zap.Int("cancelled", cancelled))
	}
}
