package services

import (
	"fmt"
	"os"

	activityDto "go-falcon/internal/activity/dto"
	"go-falcon/pkg/config"
)

// ConfigLoader rebuilds the engine's dto.Config from the on-disk domain
// tables plus env-var overrides, the conversion cmd/campwatch runs once at
// startup and this module's /admin/config/reload endpoint re-runs on demand
// (SPEC_FULL.md "Supplemented features"). It lives in internal/admin, not
// pkg/config, so pkg never imports internal/activity.
type ConfigLoader struct {
	TablesPath string
	Adjacency  activityDto.AdjacencyRelation
}

func NewConfigLoader(tablesPath string, adjacency activityDto.AdjacencyRelation) *ConfigLoader {
	return &ConfigLoader{TablesPath: tablesPath, Adjacency: adjacency}
}

// Load reads the TOML domain tables and overlays env-var tunables on top of
// spec.md §6's reference defaults.
func (l *ConfigLoader) Load() (activityDto.Config, error) {
	cfg := activityDto.DefaultConfig()
	cfg.Adjacency = l.Adjacency

	cfg.CampTimeout = config.GetDurationEnv("ACTIVITY_CAMP_TIMEOUT", cfg.CampTimeout)
	cfg.RoamTimeout = config.GetDurationEnv("ACTIVITY_ROAM_TIMEOUT", cfg.RoamTimeout)
	cfg.DecayStart = config.GetDurationEnv("ACTIVITY_DECAY_START", cfg.DecayStart)
	cfg.MemberIdleTimeout = config.GetDurationEnv("ACTIVITY_MEMBER_IDLE_TIMEOUT", cfg.MemberIdleTimeout)
	cfg.MemberDepartedTimeout = config.GetDurationEnv("ACTIVITY_MEMBER_DEPARTED_TIMEOUT", cfg.MemberDepartedTimeout)
	cfg.BattleThreshold = config.GetIntEnv("ACTIVITY_BATTLE_THRESHOLD", cfg.BattleThreshold)
	cfg.CrewMinKillsToSave = config.GetIntEnv("ACTIVITY_CREW_MIN_KILLS_TO_SAVE", cfg.CrewMinKillsToSave)
	cfg.MatchThreshold = config.GetFloatEnv("ACTIVITY_MATCH_THRESHOLD", cfg.MatchThreshold)

	if l.TablesPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(l.TablesPath); err != nil {
		return cfg, fmt.Errorf("domain tables %s: %w", l.TablesPath, err)
	}

	tables, err := config.LoadDomainTables(l.TablesPath)
	if err != nil {
		return cfg, err
	}

	cfg.ThreatShips = tables.ThreatShipsByID()
	cfg.SmartbombShips = config.ToSet(tables.SmartbombShips)
	cfg.SmartbombWeapons = config.ToSet(tables.SmartbombWeapons)
	cfg.InterdictorShips = config.ToSet(tables.InterdictorShips)
	if tables.CapsuleShipID != 0 {
		cfg.CapsuleShipID = tables.CapsuleShipID
	}
	if tables.MobileTractorShipID != 0 {
		cfg.MobileTractorShipID = tables.MobileTractorShipID
	}

	cfg.PermanentCamps = make(map[int64]activityDto.PermanentCamp, len(tables.PermanentCamps))
	for systemID, entry := range tables.PermanentCampsBySystem() {
		cfg.PermanentCamps[systemID] = activityDto.PermanentCamp{Gates: entry.Gates, Weight: entry.Weight}
	}

	return cfg, nil
}
