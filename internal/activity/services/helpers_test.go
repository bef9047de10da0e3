package services

import (
	"time"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// testConfig returns a DefaultConfig with the reference timeouts and
// thresholds pinned explicitly and the domain tables emptied (only the
// interdictor 22456 is kept), so each test adds the table entries it needs.
func testConfig() dto.Config {
	cfg := dto.DefaultConfig()
	cfg.CampTimeout = 30 * time.Minute
	cfg.RoamTimeout = 15 * time.Minute
	cfg.DecayStart = 5 * time.Minute
	cfg.MemberIdleTimeout = 15 * time.Minute
	cfg.MemberDepartedTimeout = 45 * time.Minute
	cfg.CrewMinKillsToSave = 2
	cfg.MatchThreshold = 0.35
	cfg.InterdictorShips = map[int64]struct{}{22456: {}}
	cfg.SmartbombShips = map[int64]struct{}{}
	cfg.SmartbombWeapons = map[int64]struct{}{}
	cfg.ThreatShips = map[int64]float64{}
	cfg.PermanentCamps = map[int64]dto.PermanentCamp{}
	return cfg
}

type eventOpt func(*models.Event)

func withAttacker(charID, corpID, allianceID, shipTypeID int64) eventOpt {
	return func(e *models.Event) {
		e.Attackers = append(e.Attackers, models.Attacker{
			CharacterID:   charID,
			CorporationID: corpID,
			AllianceID:    allianceID,
			ShipTypeID:    shipTypeID,
		})
	}
}

func withWeapon(weaponTypeID int64) eventOpt {
	return func(e *models.Event) {
		if len(e.Attackers) == 0 {
			return
		}
		e.Attackers[len(e.Attackers)-1].WeaponTypeID = weaponTypeID
	}
}

// atGate marks the event as occurring at the named stargate. The name must
// contain "Stargate" for isGateKill to recognize it (spec.md §4.2).
func atGate(stargateName string) eventOpt {
	return func(e *models.Event) {
		e.Location.AtCelestial = true
		e.Location.NearestCelestialName = stargateName
		e.Location.Triangulation = models.TriangulationAtCelestial
	}
}

func withVictim(v models.Victim) eventOpt {
	return func(e *models.Event) { e.Victim = v }
}

func withValue(v float64) eventOpt {
	return func(e *models.Event) { e.Value = v }
}

// testEvent builds a minimal valid Event; id must be unique per call site.
func testEvent(id string, systemID int64, at time.Time, opts ...eventOpt) models.Event {
	e := models.Event{
		EventID:    id,
		EventTime:  at,
		SystemID:   systemID,
		SystemName: "Test System",
		RegionName: "Test Region",
		Victim: models.Victim{
			ShipTypeID:   601,
			ShipCategory: models.ShipCategoryCombat,
		},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
