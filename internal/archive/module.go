package archive

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"go-falcon/internal/archive/services"
	"go-falcon/internal/activity/dto"
	"go-falcon/pkg/database"
	"go-falcon/pkg/module"
)

// Module is the Mongo-backed archive sink for closed crew sessions
// (spec.md §4.5's "hands off closed sessions" handoff). It implements
// activity/services.ArchiveSink without internal/activity importing it,
// via the narrow Archive(ctx, []dto.SerializedCrew) error method.
type Module struct {
	*module.BaseModule

	repository *services.Repository
}

// New builds the archive module against the shared MongoDB connection.
func New(mongodb *database.MongoDB, redis *database.Redis) *Module {
	return &Module{
		BaseModule: module.NewBaseModule("archive", mongodb, redis),
		repository: services.NewRepository(mongodb.Database),
	}
}

// Initialize creates the archive collection's indexes.
func (m *Module) Initialize(ctx context.Context) error {
	return m.repository.CreateIndexes(ctx)
}

// Archive implements activity/services.ArchiveSink: a fire-and-forget batch
// write of closed crew sessions.
func (m *Module) Archive(ctx context.Context, crews []dto.SerializedCrew) error {
	if len(crews) == 0 {
		return nil
	}
	if err := m.repository.SaveBatch(ctx, crews); err != nil {
		slog.Error("failed to archive crews", "error", err, "count", len(crews))
		return err
	}
	slog.Info("archived closed crew sessions", "count", len(crews))
	return nil
}

// Repository exposes the underlying archive repository.
func (m *Module) Repository() *services.Repository {
	return m.repository
}

// Routes implements pkg/module.Module; the archive has no HTTP surface.
func (m *Module) Routes(r chi.Router) {}

// StartBackgroundTasks has nothing to run; archiving happens inline from
// Engine.runTick via the ArchiveSink interface.
func (m *Module) StartBackgroundTasks(ctx context.Context) {}
