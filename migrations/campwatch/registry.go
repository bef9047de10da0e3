// Package campwatch holds campwatch's own migrations, registered through
// pkg/migrations the same way the root migrations package registers
// go-falcon's collections.
package campwatch

import (
	"go-falcon/pkg/migrations"
)

var registeredMigrations []migrations.RegisteredMigration

// Register adds a migration to the registry.
func Register(migration Migration) {
	registeredMigrations = append(registeredMigrations, migrations.RegisteredMigration{
		Version:     migration.Version,
		Description: migration.Description,
		Up:          migration.Up,
		Down:        migration.Down,
	})
}

// Migration is a convenience type for registering migrations.
type Migration struct {
	Version     string
	Description string
	Up          migrations.MigrationFunc
	Down        migrations.MigrationFunc
}

// RegisterAll registers all campwatch migrations with the runner.
func RegisterAll(runner *migrations.Runner) {
	for _, m := range registeredMigrations {
		runner.Register(m)
	}
}
