package rotation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
)

// Scheduler ticks on a fixed interval and triggers the engine once the
// refresh hour has passed for a date that has not rotated yet. There is at
// most one live ticking goroutine: reconfiguration cancels the current one
// and starts a replacement, never a second timer. The goroutine owns a
// snapshot of its parameters and never takes s.mu, so stopping can wait
// for it with the lock held.
type Scheduler struct {
	engine *Engine
	nowFn  func() time.Time

	mu           sync.Mutex
	refreshHour  int
	interval     time.Duration
	initialDelay time.Duration
	parent       context.Context
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewScheduler creates a scheduler. Start must be called before it ticks.
func NewScheduler(engine *Engine, schedule shop.Schedule, initialDelay time.Duration) *Scheduler {
	return &Scheduler{
		engine:       engine,
		nowFn:        time.Now,
		refreshHour:  schedule.RefreshHour,
		interval:     schedule.CheckInterval,
		initialDelay: initialDelay,
	}
}

// Start launches the ticking goroutine bound to ctx. Calling Start while
// running restarts the timer.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.parent = ctx
	s.startLocked()
}

// Reconfigure swaps the refresh hour and tick interval, cancelling the
// pending timer and starting a single replacement with the new parameters.
func (s *Scheduler) Reconfigure(schedule shop.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.refreshHour = schedule.RefreshHour
	if schedule.CheckInterval > 0 {
		s.interval = schedule.CheckInterval
	}
	// Reconfiguration mid-run restarts immediately; before Start it only
	// records the new parameters.
	if s.parent != nil && s.parent.Err() == nil {
		s.startLocked()
	}

	slog.Info("[Scheduler] Reconfigured",
		"refresh_hour", s.refreshHour,
		"check_interval", s.interval)
}

// Stop cancels the pending timer. No further ticks fire after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Schedule returns the active schedule parameters.
func (s *Scheduler) Schedule() shop.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return shop.Schedule{RefreshHour: s.refreshHour, CheckInterval: s.interval}
}

// NextRotationAt computes the single authoritative next rotation instant:
// today's refresh hour if it is still ahead and today has not rotated,
// tomorrow's refresh hour if today already rotated, and "now" when a
// rotation is overdue (the next tick will fire it).
func (s *Scheduler) NextRotationAt(now time.Time) time.Time {
	s.mu.Lock()
	hour := s.refreshHour
	s.mu.Unlock()

	due := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if s.engine.SelectionDate() == shop.DateOf(now) {
		return due.AddDate(0, 0, 1)
	}
	if now.Before(due) {
		return due
	}
	return now
}

func (s *Scheduler) startLocked() {
	runCtx, cancel := context.WithCancel(s.parent)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	slog.Info("[Scheduler] Starting rotation scheduler",
		"refresh_hour", s.refreshHour,
		"check_interval", s.interval,
		"initial_delay", s.initialDelay)

	go s.run(runCtx, done, s.refreshHour, s.interval, s.initialDelay)
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}, hour int, interval, delay time.Duration) {
	defer close(done)

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}

	s.tick(ctx, hour)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx, hour)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return
		}
	}
}

// tick applies the once-per-day guard: rotate iff the refresh hour has
// passed and the active rotation is from another date. A rotation failure
// is logged and the previous rotation retained; it is never fatal to the
// host process.
func (s *Scheduler) tick(ctx context.Context, hour int) {
	now := s.nowFn()
	if now.Hour() < hour {
		return
	}
	if s.engine.SelectionDate() == shop.DateOf(now) {
		return
	}

	if _, err := s.engine.Rotate(ctx); err != nil {
		slog.Error("[Scheduler] Daily rotation failed, keeping previous rotation", "error", err)
	}
}
