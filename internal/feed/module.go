package feed

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	activityModels "go-falcon/internal/activity/models"
	activityServices "go-falcon/internal/activity/services"
	"go-falcon/internal/feed/routes"
	"go-falcon/internal/feed/services"
	"go-falcon/pkg/database"
	"go-falcon/pkg/module"
)

// Module is the RedisQ-style feed consumer, decoupled from
// internal/activity's engine via the Registry.Ingest boundary (SPEC_FULL.md
// "Consumer service state machine").
type Module struct {
	*module.BaseModule

	consumer *services.Consumer
}

// New builds the feed module. registry is the activity engine's Registry;
// only its Ingest method is used, keeping this module's coupling to
// internal/activity to a single call site.
func New(mongodb *database.MongoDB, redis *database.Redis, cfg services.Config, catalog services.ShipCatalog, systems services.SystemCatalog, locator services.CelestialProvider, registry *activityServices.Registry) *Module {
	base := module.NewBaseModule("feed", mongodb, redis)
	converter := services.NewConverter(catalog, systems, locator)
	consumer := services.NewConsumer(cfg, converter, func(ev activityModels.Event) error {
		return registry.Ingest(ev)
	})

	return &Module{
		BaseModule: base,
		consumer:   consumer,
	}
}

// RegisterUnifiedRoutes registers this module's huma operations under
// basePath, mirroring the teacher's per-module route registration call from
// cmd/gateway/main.go.
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterFeedRoutes(api, basePath, m.consumer)
}

// Routes implements pkg/module.Module for chi.Router compatibility; the
// feed module is huma-only, like the teacher's zkillboard/killmails modules.
func (m *Module) Routes(r chi.Router) {}

// StartBackgroundTasks auto-starts the consumer when FEED_ENABLED=true,
// mirroring the teacher's zkillboard module's ZKB_ENABLED gate.
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	if strings.ToLower(os.Getenv("FEED_ENABLED")) != "true" {
		slog.Info("FEED_ENABLED not set to true, feed consumer ready for manual start")
		return
	}
	if err := m.consumer.Start(ctx); err != nil {
		slog.Error("failed to auto-start feed consumer", "error", err)
	}
}

// Stop stops the consumer and the base module.
func (m *Module) Stop() {
	if err := m.consumer.Stop(); err != nil {
		slog.Warn("failed to stop feed consumer gracefully", "error", err)
	}
	m.BaseModule.Stop()
}

// Consumer exposes the underlying feed consumer.
func (m *Module) Consumer() *services.Consumer {
	return m.consumer
}
