package activity

import (
	"context"
	"time"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/routes"
	"go-falcon/internal/activity/services"
	"go-falcon/pkg/database"
	"go-falcon/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module wires the crew registry, cron-driven engine, and HTTP surface of
// the activity detection engine into the application, grounded on
// internal/killmails/module.go's Module shape.
type Module struct {
	*module.BaseModule
	registry *services.Registry
	engine   *services.Engine
}

// New creates a new activity module instance. publisher/archive are the
// narrow interfaces defined in services/engine.go — pass nil for either
// to run the engine without fan-out/persistence (e.g. in tests).
func New(mongodb *database.MongoDB, redis *database.Redis, cfg dto.Config, publisher services.SnapshotPublisher, archive services.ArchiveSink, tickInterval time.Duration) *Module {
	registry := services.NewRegistry(cfg, services.SystemClock{})
	engine := services.NewEngine(registry, publisher, archive, tickInterval)

	return &Module{
		BaseModule: module.NewBaseModule("activity", mongodb, redis),
		registry:   registry,
		engine:     engine,
	}
}

// RegisterUnifiedRoutes registers activity routes with the unified API gateway.
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterActivityRoutes(api, basePath, m.engine)
}

// Routes implements module.Module's Chi hook. The activity module uses
// only Huma v2 unified routes.
func (m *Module) Routes(r chi.Router) {}

// Initialize starts the cron-driven tick loop.
func (m *Module) Initialize(ctx context.Context) error {
	return m.engine.Start(ctx)
}

// StartBackgroundTasks is a no-op beyond Initialize: the engine's own
// cron scheduler drives ticks, so there is nothing to run on the
// BaseModule's default ticker.
func (m *Module) StartBackgroundTasks(ctx context.Context) {}

// Stop halts the engine's cron scheduler before stopping the base module.
func (m *Module) Stop() {
	m.engine.Stop()
	m.BaseModule.Stop()
}

// Engine exposes the underlying engine so internal/feed can push events
// into it and internal/admin can issue operator commands.
func (m *Module) Engine() *services.Engine {
	return m.engine
}

// Registry exposes the underlying registry directly, for callers (e.g.
// internal/feed) that only need Ingest and don't hold an Engine reference.
func (m *Module) Registry() *services.Registry {
	return m.registry
}
