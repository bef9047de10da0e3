// Command campwatch runs the PvP activity detection engine: it consumes a
// zKillboard-style RedisQ killmail feed, classifies gate camps/roams/battles,
// and serves the live snapshot over a unified Huma v2 API plus a websocket
// fan-out, grounded on cmd/falcon/main.go's module-wiring shape.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "go.uber.org/automaxprocs"

	"go-falcon/internal/activity"
	activityDto "go-falcon/internal/activity/dto"
	"go-falcon/internal/admin"
	adminServices "go-falcon/internal/admin/services"
	"go-falcon/internal/archive"
	"go-falcon/internal/feed"
	feedServices "go-falcon/internal/feed/services"
	"go-falcon/internal/gateway"
	"go-falcon/pkg/app"
	"go-falcon/pkg/config"
	"go-falcon/pkg/module"
)

func main() {
	ctx := context.Background()

	appCtx, err := app.InitializeApp("campwatch")
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	tablesPath := config.GetEnv("CAMPWATCH_TABLES_PATH", "data/campwatch/tables.toml")
	loader := adminServices.NewConfigLoader(tablesPath, activityDto.MapAdjacency{})
	cfg, err := loader.Load()
	if err != nil {
		slog.Warn("failed to load domain tables, continuing with defaults", "error", err, "path", tablesPath)
	}

	var catalog feedServices.ShipCatalog = feedServices.NewStaticShipCatalog(nil)
	if tables, err := config.LoadDomainTables(tablesPath); err == nil {
		catalog = feedServices.NewStaticShipCatalog(tables.ShipCategoriesByID())
	}

	gatewayModule := gateway.New(appCtx.MongoDB, appCtx.Redis)
	archiveModule := archive.New(appCtx.MongoDB, appCtx.Redis)
	if err := archiveModule.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize archive module: %v", err)
	}

	tickInterval := config.GetDurationEnv("ACTIVITY_TICK_INTERVAL", 10*time.Second)
	activityModule := activity.New(appCtx.MongoDB, appCtx.Redis, cfg, gatewayModule, archiveModule, tickInterval)
	if err := activityModule.Initialize(ctx); err != nil {
		log.Fatalf("failed to start activity engine: %v", err)
	}

	feedCfg := feedServices.DefaultConfig(config.GetEnv("FEED_QUEUE_ID", "campwatch"))
	feedModule := feed.New(appCtx.MongoDB, appCtx.Redis, feedCfg, catalog, nil, nil, activityModule.Registry())

	jwtValidator := adminServices.NewAdminJWTValidator(config.GetEnv("ADMIN_JWT_SECRET", "campwatch-dev-secret"))
	var permEnforcer *adminServices.PermissionEnforcer
	if appCtx.MongoDB != nil {
		permEnforcer, err = adminServices.NewPermissionEnforcer(appCtx.MongoDB.Client, "campwatch", jwtValidator)
		if err != nil {
			slog.Warn("failed to set up the admin permission enforcer, admin endpoints will be unavailable", "error", err)
		}
	}
	adminModule := admin.New(appCtx.MongoDB, appCtx.Redis, activityModule.Registry(), loader, permEnforcer)

	modules := []module.Module{activityModule, feedModule, gatewayModule, archiveModule, adminModule}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"campwatch"}`))
	})

	humaConfig := huma.DefaultConfig("campwatch", "1.0.0")
	humaConfig.Info.Description = "PvP activity detection engine: gate camp / roam / battle classification over a killmail feed"
	api := humachi.New(r, humaConfig)

	activityModule.RegisterUnifiedRoutes(api, "/activity")
	feedModule.RegisterUnifiedRoutes(api, "/feed")
	gatewayModule.RegisterUnifiedRoutes(api)
	adminModule.RegisterUnifiedRoutes(api)

	for _, mod := range modules {
		mod.Routes(r)
	}
	for _, mod := range modules {
		go mod.StartBackgroundTasks(ctx)
	}

	port := app.GetPort("8090")
	host := config.GetHost()
	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting campwatch server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("campwatch server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("received shutdown signal, draining campwatch")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("campwatch server forced to shutdown", "error", err)
	}
	for _, mod := range modules {
		mod.Stop()
	}
	appCtx.Shutdown(shutdownCtx)
	slog.Info("campwatch shutdown complete")
}
