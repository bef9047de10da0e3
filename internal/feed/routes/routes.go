package routes

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"go-falcon/internal/feed/dto"
	"go-falcon/internal/feed/services"
)

// RegisterFeedRoutes mounts the feed consumer's status endpoint, grounded on
// internal/killmails/routes/routes.go's huma.Register conventions.
func RegisterFeedRoutes(api huma.API, basePath string, consumer *services.Consumer) {
	huma.Register(api, huma.Operation{
		OperationID: "getFeedStatus",
		Method:      "GET",
		Path:        basePath + "/status",
		Summary:     "Get feed consumer status",
		Description: "Returns the RedisQ-style feed consumer's polling state and metrics.",
		Tags:        []string{"feed"},
	}, func(ctx context.Context, input *struct{}) (*dto.ServiceStatusOutput, error) {
		return consumer.GetStatus(), nil
	})
}
