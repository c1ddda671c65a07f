package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/gridtile/internal/board"
)

// Saver persists boards with unsaved changes. *board.Registry implements it.
type Saver interface {
	SaveAll(ctx context.Context) error
}

// AutosaverConfig holds configuration for the autosaver.
type AutosaverConfig struct {
	Interval time.Duration
	Logger   *log.Logger
}

// Autosaver periodically flushes dirty boards to the store.
type Autosaver struct {
	interval time.Duration
	saver    Saver
	logger   *log.Logger
}

var _ Saver = (*board.Registry)(nil)

// NewAutosaver creates an autosaver. A non-positive interval means 30s.
func NewAutosaver(cfg AutosaverConfig, saver Saver) *Autosaver {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Autosaver{
		interval: interval,
		saver:    saver,
		logger:   logger,
	}
}

// Run saves on every tick until ctx is cancelled, then saves once more.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Debug("autosave started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			// ctx is already done; the final flush gets its own deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			a.save(flushCtx)
			cancel()
			a.logger.Debug("autosave stopped")
			return
		case <-ticker.C:
			a.save(ctx)
		}
	}
}

// SaveNow triggers an immediate save pass.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	return a.save(ctx)
}

func (a *Autosaver) save(ctx context.Context) (err error) {
	// A misbehaving store must not take the daemon down.
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("autosave panic recovered", "error", r)
			err = fmt.Errorf("autosave panic: %v", r)
		}
	}()

	if err = a.saver.SaveAll(ctx); err != nil {
		a.logger.Warn("autosave failed", "error", err)
	}
	return err
}
