// Command campwatch-migrate runs campwatch's own database migrations,
// grounded on cmd/migrate/main.go's flag-driven up/down/status runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go-falcon/pkg/app"
	pkgMigrations "go-falcon/pkg/migrations"

	campwatchMigrations "go-falcon/migrations/campwatch"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status")
		steps   = flag.Int("steps", 0, "Number of migrations to rollback (for down command)")
		dryRun  = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	appCtx, err := app.InitializeApp("campwatch-migrate")
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	runner := pkgMigrations.NewRunner(appCtx.MongoDB.Database)
	campwatchMigrations.RegisterAll(runner)

	switch *command {
	case "up":
		fmt.Println("running campwatch migrations...")
		if *dryRun {
			fmt.Println("dry run: no changes will be made")
			if err := runner.Status(ctx); err != nil {
				log.Fatalf("failed to show status: %v", err)
			}
			return
		}
		if err := runner.Run(ctx); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		fmt.Println("all migrations completed")

	case "down":
		if *steps == 0 {
			*steps = 1
		}
		fmt.Printf("rolling back %d migration(s)...\n", *steps)
		if *dryRun {
			fmt.Println("dry run: no changes will be made")
			if err := runner.Status(ctx); err != nil {
				log.Fatalf("failed to show status: %v", err)
			}
			return
		}
		if err := runner.Rollback(ctx, *steps); err != nil {
			log.Fatalf("rollback failed: %v", err)
		}
		fmt.Println("rollback completed")

	case "status":
		if err := runner.Status(ctx); err != nil {
			log.Fatalf("failed to get migration status: %v", err)
		}

	default:
		log.Fatalf("unknown command: %s", *command)
	}
}
