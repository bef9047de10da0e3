package routes

import (
	"context"
	"net/http"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/services"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterActivityRoutes registers the read-only public surface of the
// activity detection engine (spec.md §6 "External interfaces"), grounded
// on internal/killmails/routes/routes.go's huma.Register conventions.
func RegisterActivityRoutes(api huma.API, basePath string, engine *services.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "getActivityStatus",
		Method:        http.MethodGet,
		Path:          basePath + "/status",
		Summary:       "Get activity engine status",
		Description:   "Returns the health status of the activity detection engine.",
		Tags:          []string{"Module Status"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
		stats := engine.Registry().Stats()
		return &dto.StatusOutput{
			Body: dto.ModuleStatusResponse{
				Module:    "activity",
				Status:    "healthy",
				LiveCrews: stats.LiveCrews,
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "getActivitySnapshot",
		Method:        http.MethodGet,
		Path:          basePath + "/snapshot",
		Summary:       "Get the current activity snapshot",
		Description:   "Returns every live crew ordered by descending probability then recency (spec.md §4.1 snapshot()).",
		Tags:          []string{"Activity"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *struct{}) (*dto.SnapshotOutput, error) {
		crews := engine.Registry().Snapshot()
		return &dto.SnapshotOutput{
			Body: dto.SnapshotResponse{
				Crews: crews,
				Count: len(crews),
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "getActivityCrew",
		Method:        http.MethodGet,
		Path:          basePath + "/crews/{crew_id}",
		Summary:       "Get a single live crew",
		Description:   "Looks up one crew from the current snapshot by id.",
		Tags:          []string{"Activity"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *dto.GetCrewInput) (*dto.CrewOutput, error) {
		for _, crew := range engine.Registry().Snapshot() {
			if crew.ID == input.CrewID {
				return &dto.CrewOutput{Body: crew}, nil
			}
		}
		return nil, huma.Error404NotFound("crew not found")
	})

	huma.Register(api, huma.Operation{
		OperationID:   "getActivityStats",
		Method:        http.MethodGet,
		Path:          basePath + "/stats",
		Summary:       "Get ingest statistics",
		Description:   "Returns drop counters for malformed and NPC-only events (spec.md §7 Error handling).",
		Tags:          []string{"Activity"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *struct{}) (*dto.StatsOutput, error) {
		stats := engine.Registry().Stats()
		return &dto.StatsOutput{
			Body: dto.StatsResponse{
				DroppedInvalid: stats.DroppedInvalid,
				DroppedNPCOnly: stats.DroppedNPCOnly,
				LiveCrews:      stats.LiveCrews,
			},
		}, nil
	})
}
