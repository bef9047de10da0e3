package routes

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"go-falcon/internal/admin/dto"
	"go-falcon/internal/admin/services"
	activityServices "go-falcon/internal/activity/services"
)

// RegisterAdminRoutes wires the operator-override surface (SPEC_FULL.md
// "Supplemented features"): force-evict a stuck crew and hot-reload the
// domain tables, both gated the way internal/scheduler gates its own
// admin-only endpoints.
func RegisterAdminRoutes(api huma.API, basePath string, registry *activityServices.Registry, loader *services.ConfigLoader, perms *services.PermissionEnforcer) {
	huma.Register(api, huma.Operation{
		OperationID: "adminEvictCrew",
		Method:      "POST",
		Path:        basePath + "/crews/{crew_id}/evict",
		Summary:     "Force-evict a live crew",
		Description: "Immediately expires a live crew regardless of its timeout and queues it for archival, for operators clearing a stuck or miscalculated session.",
		Tags:        []string{"admin"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, input *dto.EvictCrewInput) (*dto.EvictCrewOutput, error) {
		if err := perms.CheckAdminPermission(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		evicted := registry.ForceEvict(input.CrewID)
		return &dto.EvictCrewOutput{Body: dto.EvictCrewResponse{CrewID: input.CrewID, Evicted: evicted}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "adminReloadConfig",
		Method:      "POST",
		Path:        basePath + "/config/reload",
		Summary:     "Reload the engine's domain tables",
		Description: "Re-reads the TOML threat-ship/smartbomb/permanent-camp tables and env-var tunables without restarting the process.",
		Tags:        []string{"admin"},
		Security:    []map[string][]string{{"bearerAuth": {}}},
	}, func(ctx context.Context, input *dto.ReloadConfigInput) (*dto.ReloadConfigOutput, error) {
		if err := perms.CheckAdminPermission(ctx, input.Authorization, input.Cookie); err != nil {
			return nil, err
		}
		cfg, err := loader.Load()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to reload config", err)
		}
		registry.SetConfig(cfg)
		return &dto.ReloadConfigOutput{Body: dto.ReloadConfigResponse{
			ThreatShipCount:      len(cfg.ThreatShips),
			PermanentCampCount:   len(cfg.PermanentCamps),
			SmartbombShipCount:   len(cfg.SmartbombShips),
			InterdictorShipCount: len(cfg.InterdictorShips),
			CampTimeoutSeconds:   cfg.CampTimeout.Seconds(),
			RoamTimeoutSeconds:   cfg.RoamTimeout.Seconds(),
		}}, nil
	})
}
