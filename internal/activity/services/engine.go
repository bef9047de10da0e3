package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"go-falcon/internal/activity/dto"
)

// SnapshotPublisher receives a freshly computed snapshot after every tick
// that changed state (spec.md §4.5, wired to internal/gateway's
// Redis/websocket fan-out). Engine never imports gateway directly — it
// depends on this narrow interface instead, the same inversion the
// teacher uses for AuthModule/SDEModule in internal/scheduler.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, crews []dto.SerializedCrew)
}

// ArchiveSink persists drained crews (spec.md §4.5, wired to
// internal/archive's Mongo repository).
type ArchiveSink interface {
	Archive(ctx context.Context, crews []dto.SerializedCrew) error
}

// Engine is the thin facade that schedules Registry.Tick on a cron-driven
// loop and fans the results out, grounded on internal/scheduler/engine.go's
// cron.Cron wiring.
type Engine struct {
	registry  *Registry
	cron      *cron.Cron
	publisher SnapshotPublisher
	archive   ArchiveSink

	tickInterval time.Duration

	mu      sync.RWMutex
	running bool
}

// NewEngine constructs an Engine around an already-configured Registry.
// publisher/archive may be nil (useful in tests) — a nil dependency is
// simply skipped after each tick.
func NewEngine(registry *Registry, publisher SnapshotPublisher, archive ArchiveSink, tickInterval time.Duration) *Engine {
	if tickInterval <= 0 {
		tickInterval = 10 * time.Second
	}
	return &Engine{
		registry:     registry,
		cron:         cron.New(cron.WithSeconds()),
		publisher:    publisher,
		archive:      archive,
		tickInterval: tickInterval,
	}
}

// Start schedules the periodic tick and begins running it. Matches the
// teacher's cron.New/AddFunc/Start sequence in internal/scheduler/engine.go.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	spec := secondsSpec(e.tickInterval)
	if _, err := e.cron.AddFunc(spec, func() { e.runTick(ctx) }); err != nil {
		return err
	}

	slog.Info("activity engine starting", slog.Duration("tick_interval", e.tickInterval))
	e.cron.Start()
	return nil
}

// Stop halts the cron scheduler and waits for any in-flight tick to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	stopCtx := e.cron.Stop()
	<-stopCtx.Done()
	slog.Info("activity engine stopped")
}

// Registry exposes the underlying registry for direct Ingest/Snapshot
// calls from internal/feed and internal/activity/routes.
func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) runTick(ctx context.Context) {
	now := time.Now()
	changed := e.registry.Tick(now)

	if archived := e.registry.DrainArchive(); len(archived) > 0 && e.archive != nil {
		if err := e.archive.Archive(ctx, archived); err != nil {
			slog.Error("failed to archive crews", slog.String("error", err.Error()), slog.Int("count", len(archived)))
		}
	}

	if changed && e.publisher != nil {
		e.publisher.PublishSnapshot(ctx, e.registry.Snapshot())
	}
}

// secondsSpec turns a Go duration into a robfig/cron "every N seconds"
// spec; the engine's tick cadence is a handful of seconds, well under
// cron's usual minute granularity, hence cron.WithSeconds() above.
func secondsSpec(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return "@every " + time.Duration(secs*int(time.Second)).String()
}
