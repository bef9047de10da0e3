package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	activityDto "go-falcon/internal/activity/dto"
	"go-falcon/internal/gateway/dto"
	"go-falcon/internal/gateway/services"
	"go-falcon/pkg/database"
	"go-falcon/pkg/module"
)

const wsPath = "/gateway/ws"

// Module is the one concrete push adapter the engine's snapshot pull
// contract gets wired to (spec.md §4.5): a websocket feed of every tick's
// snapshot, fanned out across replicas via Redis. It implements
// activity/services.SnapshotPublisher's PublishSnapshot method.
type Module struct {
	*module.BaseModule

	hub    *services.Hub
	bridge *services.RedisBridge
	cancel context.CancelFunc
}

func New(mongodb *database.MongoDB, redis *database.Redis) *Module {
	hub := services.NewHub()
	return &Module{
		BaseModule: module.NewBaseModule("gateway", mongodb, redis),
		hub:        hub,
		bridge:     services.NewRedisBridge(redis.Client, hub),
	}
}

// PublishSnapshot implements activity/services.SnapshotPublisher. It never
// blocks the engine's tick loop on a slow or disconnected subscriber.
func (m *Module) PublishSnapshot(ctx context.Context, crews []activityDto.SerializedCrew) {
	if err := m.bridge.Publish(ctx, crews, time.Now().UnixMilli()); err != nil {
		slog.Error("gateway failed to publish snapshot", "error", err)
	}
}

// StartBackgroundTasks starts the hub's event loop and the cross-instance
// Redis relay. Gated on nothing: unlike the feed consumer, the gateway has
// no external rate limit to respect and is cheap to always run.
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.hub.Run(runCtx)
	m.bridge.Start(runCtx)
}

func (m *Module) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.bridge.Stop()
	m.BaseModule.Stop()
}

// Routes registers the raw websocket upgrade endpoint directly on the chi
// router, the same way internal/websocket's RegisterHTTPHandler bypasses
// Huma for the upgrade handshake (protocol upgrade needs direct response
// control Huma's operation wrapper doesn't give).
func (m *Module) Routes(r chi.Router) {
	r.Get(wsPath, services.HandleUpgrade(m.hub))
}

// RegisterUnifiedRoutes registers the gateway's status endpoint.
func (m *Module) RegisterUnifiedRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getGatewayStatus",
		Method:      "GET",
		Path:        "/gateway/status",
		Summary:     "Get snapshot gateway status",
		Description: "Returns the number of websocket subscribers currently connected to this instance's snapshot feed.",
		Tags:        []string{"gateway"},
	}, func(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
		return &dto.StatusOutput{Body: dto.StatusResponse{
			ConnectedClients: m.hub.ClientCount(),
			WebsocketPath:    wsPath,
		}}, nil
	})
}
