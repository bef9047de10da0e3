package services

import (
	"strings"

	"go-falcon/internal/activity/models"
)

// isGateKill implements spec.md §4.2 "A gate kill is an event whose
// location.nearest_celestial_name matches 'stargate' (case-insensitive)
// AND (at_celestial OR triangulation in {direct_warp, near_celestial})."
func isGateKill(ev models.Event) bool {
	name := ev.Location.NearestCelestialName
	if name == "" || !strings.Contains(strings.ToLower(name), "stargate") {
		return false
	}
	if ev.Location.AtCelestial {
		return true
	}
	switch ev.Location.Triangulation {
	case models.TriangulationDirectWarp, models.TriangulationNearCelestial:
		return true
	default:
		return false
	}
}

// isFollowupPod implements spec.md §4.2 "A follow-up pod is a capsule-class
// victim kill whose victim character_id appears as the victim of an earlier
// *ship* kill in this crew's history."
func isFollowupPod(ev models.Event, earlierKills []models.Event, capsuleShipID int64) bool {
	if ev.Victim.ShipTypeID != capsuleShipID {
		return false
	}
	if ev.Victim.CharacterID == 0 {
		return false
	}
	for _, k := range earlierKills {
		if k.Victim.CharacterID == ev.Victim.CharacterID && k.Victim.ShipTypeID != capsuleShipID {
			return true
		}
	}
	return false
}

// effectiveKillCount implements spec.md §4.2 "Effective kill count = (count
// of ship kills) + (count of orphan pod kills, where orphan = not a
// follow-up)."
func effectiveKillCount(kills []models.Event, capsuleShipID int64) int {
	seenShipVictims := make(map[int64]struct{})
	count := 0
	for _, k := range kills {
		if k.Victim.ShipTypeID != capsuleShipID {
			if k.Victim.CharacterID != 0 {
				seenShipVictims[k.Victim.CharacterID] = struct{}{}
			}
			count++
			continue
		}
		// pod kill
		if k.Victim.CharacterID == 0 {
			count++ // no character id on the pod — count it to be safe
			continue
		}
		if _, isShipVictim := seenShipVictims[k.Victim.CharacterID]; !isShipVictim {
			count++
		}
	}
	return count
}

// deriveGateKillCount recomputes gate_kill_count from scratch over a
// time-sorted kill list, applying the same gate-kill/follow-up-pod rule
// updateSpatialState applies incrementally. Used at merge time (spec.md
// §4.1 "Merge") instead of summing two crews' pre-merge counters, since a
// kill can only be recognized as a cross-crew follow-up pod once the two
// histories are interleaved.
func deriveGateKillCount(kills []models.Event, capsuleShipID int64) int {
	count := 0
	for i, k := range kills {
		if !isGateKill(k) {
			continue
		}
		if k.Victim.ShipTypeID != capsuleShipID {
			count++
			continue
		}
		if !isFollowupPod(k, kills[:i], capsuleShipID) {
			count++
		}
	}
	return count
}

// updateSpatialState implements spec.md §4.2's per-event bookkeeping: it
// updates the crew's current system/visited history, the gate-kill counter
// and the sticky stargate_name, and re-clears stargate_name when the gate
// ratio is violated. The event must already have been appended to
// crew.Kills.
func updateSpatialState(crew *models.Crew, ev models.Event, capsuleShipID int64) {
	if crew.CurrentSystemID != ev.SystemID {
		crew.SystemsVisited = append(crew.SystemsVisited, models.SystemVisit{
			ID:     ev.SystemID,
			Name:   ev.SystemName,
			Region: ev.RegionName,
			Time:   ev.EventTime.UnixMilli(),
		})
		crew.CurrentSystemID = ev.SystemID
		crew.CurrentSystemName = ev.SystemName
		crew.CurrentRegion = ev.RegionName
	}
	if crew.VisitedSystemIDs == nil {
		crew.VisitedSystemIDs = make(map[int64]struct{})
	}
	crew.VisitedSystemIDs[ev.SystemID] = struct{}{}

	if ev.Location.NearestCelestialName != "" {
		crew.CurrentLocation = ev.Location.NearestCelestialName
	}

	gateKill := isGateKill(ev)
	isPod := ev.Victim.ShipTypeID == capsuleShipID

	if gateKill {
		if !isPod {
			crew.GateKillCount++
		} else {
			// earlier kills = everything before this one in the time-sorted
			// crew.Kills, where AppendKill has just inserted it.
			earlier := earlierKills(crew.Kills, ev.EventID)
			if !isFollowupPod(ev, earlier, capsuleShipID) {
				crew.GateKillCount++
			}
		}
		if ev.Location.NearestCelestialName != "" {
			crew.StargateName = ev.Location.NearestCelestialName
		}
	}

	effective := effectiveKillCount(crew.Kills, capsuleShipID)
	if effective > 0 && crew.GateKillCount < ceilDivTwo(effective) {
		crew.StargateName = ""
	}
}

// earlierKills returns every kill in history strictly before the kill with
// the given event id (kills are time-sorted; this is used to test
// follow-up-pod status against history prior to the just-appended event).
func earlierKills(kills []models.Event, eventID string) []models.Event {
	for i, k := range kills {
		if k.EventID == eventID {
			return kills[:i]
		}
	}
	return kills
}

// ceilDivTwo computes ceil(n/2) for the gate-ratio invariant
// (gate_kill_count >= ceil(effective_kills/2)).
func ceilDivTwo(n int) int {
	return (n + 1) / 2
}
