package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AttendanceCloser is the slice of the attendance engine the scheduler
// drives.
type AttendanceCloser interface {
	AutoCloseOpenRecords(ctx context.Context, now time.Time) (int, error)
}

// BroadcastSweeper deletes expired broadcasts and their dependents.
type BroadcastSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the two maintenance loops. Each loop ticks on its own
// timer; a failing run is logged and swallowed so the next tick always
// happens. Stopping is via context cancellation only.
type Scheduler struct {
	closer  AttendanceCloser
	sweeper BroadcastSweeper
	clock   Clock
	logger  *zap.Logger

	autoCloseInterval time.Duration
	sweepInterval     time.Duration
}

func New(closer AttendanceCloser, sweeper BroadcastSweeper, clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Scheduler{
		closer:            closer,
		sweeper:           sweeper,
		clock:             clock,
		logger:            logger.Named("scheduler"),
		autoCloseInterval: time.Minute,
		sweepInterval:     time.Hour,
	}
}

// Start launches both loops and returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runAutoCloseLoop(ctx)
	go s.runSweepLoop(ctx)
}

// runAutoCloseLoop checks every minute whether the day is in its final
// minute and, if so, force-closes today's open records. If the process
// is down across a 23:59 window that day's close-out is skipped; the
// scan only ever looks at "today", so such records stay open until a
// manual edit.
func (s *Scheduler) runAutoCloseLoop(ctx context.Context) {
	ticker := time.NewTicker(s.autoCloseInterval)
	defer ticker.Stop()

	s.logger.Info("auto close loop started", zap.Duration("interval", s.autoCloseInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("auto close loop stopped")
			return
		case <-ticker.C:
			s.autoCloseTick(ctx)
		}
	}
}

func (s *Scheduler) autoCloseTick(ctx context.Context) {
	now := s.clock.Now()
	if now.Hour() != 23 || now.Minute() < 59 {
		return
	}

	closed, err := s.closer.AutoCloseOpenRecords(ctx, now)
	if err != nil {
		s.logger.Error("auto close run failed", zap.Error(err))
		return
	}
	if closed > 0 {
		s.logger.Info("auto closed open attendance records", zap.Int("count", closed))
	}
}

// runSweepLoop purges expired broadcasts once immediately and then
// every hour.
func (s *Scheduler) runSweepLoop(ctx context.Context) {
	s.logger.Info("expiry sweep loop started", zap.Duration("interval", s.sweepInterval))
	s.sweepTick(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweep loop stopped")
			return
		case <-ticker.C:
			s.sweepTick(ctx)
		}
	}
}

func (s *Scheduler) sweepTick(ctx context.Context) {
	deleted, err := s.sweeper.SweepExpired(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error("expiry sweep run failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("expired broadcasts swept", zap.Int("count", deleted))
	}
}
