package guestbook

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Start loads the board and stats, then reloads the board every interval.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.sched != nil {
		c.mu.Unlock()
		return nil
	}
	tickCtx, cancel := context.WithCancel(ctx)
	logger := cronLogger{c.log.Sugar()}
	sched := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.sched = sched
	c.cancelTicks = cancel
	c.mu.Unlock()

	if err := c.LoadMessages(ctx); err != nil {
		c.log.Warn("initial guestbook load failed, waiting for next refresh", zap.Error(err))
	}
	c.UpdateStats(ctx)

	sched.Schedule(refreshSchedule{c}, cron.FuncJob(func() { c.Refresh(tickCtx) }))
	sched.Start()
	c.log.Info("guestbook refresh started", zap.Duration("interval", c.interval))
	return nil
}

// Stop halts the refresh schedule and waits for a running refresh to return.
func (c *Controller) Stop() {
	c.mu.Lock()
	sched, cancel := c.sched, c.cancelTicks
	c.sched, c.cancelTicks = nil, nil
	c.mu.Unlock()
	if sched == nil {
		return
	}
	cancel()
	<-sched.Stop().Done()
	c.log.Info("guestbook refresh stopped")
}

// Refresh reloads the board unless a load started within the last interval.
// It reports whether a reload was issued.
func (c *Controller) Refresh(ctx context.Context) bool {
	c.mu.Lock()
	recent := !c.lastStart.IsZero() && c.now().Sub(c.lastStart) < c.interval
	c.mu.Unlock()
	if recent {
		return false
	}
	_ = c.LoadMessages(ctx)
	return true
}

// refreshSchedule fires one full interval after the last load started,
// at sub-second precision.
type refreshSchedule struct {
	c *Controller
}

func (s refreshSchedule) Next(t time.Time) time.Time {
	s.c.mu.Lock()
	last := s.c.lastStart
	s.c.mu.Unlock()
	if next := last.Add(s.c.interval); next.After(t) {
		return next
	}
	return t.Add(s.c.interval)
}

// cronLogger routes cron's logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
