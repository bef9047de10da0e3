package dto

import "time"

// PermanentCamp is a known stationary gate-camp location (spec.md §4.4
// "Known location bonus").
type PermanentCamp struct {
	Gates  []string
	Weight float64
}

// Config bundles every static input the engine needs at construction time
// (spec.md §6 "Configuration (injected once at startup)"). Nothing here is
// mutated after the engine starts; it is read concurrently by the registry
// under no additional locking.
type Config struct {
	CampTimeout           time.Duration
	RoamTimeout           time.Duration
	DecayStart            time.Duration
	BattleThreshold        int
	MemberIdleTimeout      time.Duration
	MemberDepartedTimeout  time.Duration
	CrewMinKillsToSave     int
	MatchThreshold         float64

	ThreatShips      map[int64]float64
	SmartbombShips   map[int64]struct{}
	SmartbombWeapons map[int64]struct{}
	InterdictorShips map[int64]struct{}
	PermanentCamps   map[int64]PermanentCamp

	CapsuleShipID       int64
	MobileTractorShipID int64

	// Adjacency reports, for a system id, the set of systems directly
	// connected to it by a stargate (spec.md §6 "Adjacency relation").
	Adjacency AdjacencyRelation
}

// AdjacencyRelation is a read-only injected input; an unknown system is
// treated as having no neighbors (spec.md §7 "Adjacency missing").
type AdjacencyRelation interface {
	Neighbors(systemID int64) map[int64]struct{}
}

// MapAdjacency is the simplest AdjacencyRelation: a plain map built once
// from static universe data.
type MapAdjacency map[int64]map[int64]struct{}

func (m MapAdjacency) Neighbors(systemID int64) map[int64]struct{} {
	return m[systemID]
}

// DefaultConfig returns the reference timeout/threshold values from
// spec.md §6 with empty tables; callers fill in ThreatShips etc. from
// pkg/config (TOML-loaded in the full application).
func DefaultConfig() Config {
	return Config{
		CampTimeout:           30 * time.Minute,
		RoamTimeout:           15 * time.Minute,
		DecayStart:            5 * time.Minute,
		BattleThreshold:       40,
		MemberIdleTimeout:     15 * time.Minute,
		MemberDepartedTimeout: 45 * time.Minute,
		CrewMinKillsToSave:    2,
		MatchThreshold:        0.35,
		ThreatShips:           map[int64]float64{},
		SmartbombShips:        map[int64]struct{}{},
		SmartbombWeapons:      map[int64]struct{}{},
		InterdictorShips:      map[int64]struct{}{},
		PermanentCamps:        map[int64]PermanentCamp{},
		CapsuleShipID:         670,
		MobileTractorShipID:   35834,
	}
}
