package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval is how often the chain is re-entered without a hotkey.
const DefaultInterval = 20 * time.Second

// Timer calls Fire on every tick from its own goroutine.
type Timer struct {
	Interval time.Duration
	Fire     func()
	// Active gates each tick; nil means always active.
	Active func() bool
	// Ticks replaces the internal ticker when set.
	Ticks  <-chan time.Time
	Logger *slog.Logger
}

// Run blocks until ctx is cancelled. Fire runs inline, so a slow Fire
// delays the next tick rather than overlapping with it.
func (t *Timer) Run(ctx context.Context) error {
	if t.Fire == nil {
		return fmt.Errorf("timer: nil fire func")
	}
	log := t.Logger
	if log == nil {
		log = slog.Default()
	}

	ticks := t.Ticks
	if ticks == nil {
		if t.Interval <= 0 {
			return fmt.Errorf("timer: interval must be positive, got %s", t.Interval)
		}
		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	log.Info("timer started", "interval", t.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("timer stopped")
			return nil
		case <-ticks:
			if t.Active != nil && !t.Active() {
				log.Debug("timer tick skipped, paused")
				continue
			}
			t.Fire()
		}
	}
}
