package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTables = `
capsule_ship_id = 670
mobile_tractor_ship_id = 35834

[threat_ships]
"11200" = 1.0

[[permanent_camp]]
system_id = 30000142
gates = ["Jita IV - Moon 4 - Stargate (Perimeter)"]
weight = 0.5
`

func TestConfigLoader_LoadsTablesAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.toml")
	require.NoError(t, os.WriteFile(path, []byte(testTables), 0o644))

	t.Setenv("ACTIVITY_CAMP_TIMEOUT", "45m")

	loader := NewConfigLoader(path, nil)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, int64(670), cfg.CapsuleShipID)
	assert.Len(t, cfg.ThreatShips, 1)
	assert.Equal(t, 1.0, cfg.ThreatShips[11200])
	assert.Len(t, cfg.PermanentCamps, 1)
	assert.Equal(t, 0.5, cfg.PermanentCamps[30000142].Weight)
	assert.Equal(t, 45*60.0, cfg.CampTimeout.Seconds())
}

func TestConfigLoader_NoTablesPathUsesDefaults(t *testing.T) {
	loader := NewConfigLoader("", nil)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.ThreatShips)
}
