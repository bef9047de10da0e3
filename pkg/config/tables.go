package config

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DomainTables is the on-disk shape of the engine's tunable ship/location
// tables — threat ship weights, smartbomb hulls/weapons, interdictor hulls,
// and permanent camp overrides. Kept in TOML rather than Go literals so
// operators can retune without a rebuild, the same way original_source's
// constants.py is hand-edited in place between deploys.
type DomainTables struct {
	CapsuleShipID       int64             `toml:"capsule_ship_id"`
	MobileTractorShipID int64             `toml:"mobile_tractor_ship_id"`
	ThreatShips         map[string]float64 `toml:"threat_ships"`
	SmartbombShips      []int64            `toml:"smartbomb_ships"`
	SmartbombWeapons    []int64            `toml:"smartbomb_weapons"`
	InterdictorShips    []int64            `toml:"interdictor_ships"`
	ShipCategories      map[string]string  `toml:"ship_categories"`
	PermanentCamps      []PermanentCampEntry `toml:"permanent_camp"`
}

// PermanentCampEntry is one [[permanent_camp]] block in the tables file: a
// known stationary camp location, identified by solar system, anchored on
// one or more gate names.
type PermanentCampEntry struct {
	SystemID int64    `toml:"system_id"`
	Gates    []string `toml:"gates"`
	Weight   float64  `toml:"weight"`
}

// LoadDomainTables parses a TOML tables file from disk. Missing keys default
// to the zero value, mirroring TOML's own "absent key" semantics; callers
// compose the result into internal/activity's dto.Config and internal/feed's
// ship catalog rather than consuming it directly.
func LoadDomainTables(path string) (*DomainTables, error) {
	var t DomainTables
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("load domain tables %s: %w", path, err)
	}
	return &t, nil
}

// ThreatShipsByID re-keys the TOML string-keyed threat table by numeric ship
// type id (TOML map keys are always strings; every other table consumer
// wants int64 type ids).
func (t *DomainTables) ThreatShipsByID() map[int64]float64 {
	out := make(map[int64]float64, len(t.ThreatShips))
	for k, v := range t.ThreatShips {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil {
			out[id] = v
		}
	}
	return out
}

// ShipCategoriesByID re-keys the TOML string-keyed category table by numeric
// ship type id, for internal/feed's static ship catalog.
func (t *DomainTables) ShipCategoriesByID() map[int64]string {
	out := make(map[int64]string, len(t.ShipCategories))
	for k, v := range t.ShipCategories {
		if id, err := strconv.ParseInt(k, 10, 64); err == nil {
			out[id] = v
		}
	}
	return out
}

// ToSet converts an id slice (smartbomb ships/weapons, interdictor ships)
// into the membership-set shape the engine's dto.Config fields use.
func ToSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// PermanentCampsBySystem keys the parsed permanent-camp table by solar
// system id, leaving the dto.PermanentCamp conversion (Gates/Weight) to the
// caller (internal/admin's ConfigLoader) so this package never imports
// internal code.
func (t *DomainTables) PermanentCampsBySystem() map[int64]PermanentCampEntry {
	out := make(map[int64]PermanentCampEntry, len(t.PermanentCamps))
	for _, c := range t.PermanentCamps {
		out[c.SystemID] = c
	}
	return out
}
