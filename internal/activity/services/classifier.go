package services

import (
	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// isStationaryRecent implements spec.md §4.3 "recent_stationary ≡ the last
// ≤ 5 kills are all in one system."
func isStationaryRecent(crew *models.Crew) bool {
	kills := crew.Kills
	if len(kills) == 0 {
		return true
	}
	start := 0
	if len(kills) > 5 {
		start = len(kills) - 5
	}
	recent := kills[start:]
	first := recent[0].SystemID
	for _, k := range recent[1:] {
		if k.SystemID != first {
			return false
		}
	}
	return true
}

// hasInterdictor reports whether any active/idle member flies a configured
// interdictor/HIC hull (spec.md §4.3 "solo_camp").
func hasInterdictor(crew *models.Crew, interdictors map[int64]struct{}) bool {
	for _, m := range crew.Members {
		if m.Status != models.MemberActive && m.Status != models.MemberIdle {
			continue
		}
		for st := range m.ShipTypeIDs {
			if _, ok := interdictors[st]; ok {
				return true
			}
		}
	}
	return false
}

// allSoloKills reports whether every kill in the crew's history had
// exactly one player attacker (spec.md §4.3 steps 3/4).
func allSoloKills(crew *models.Crew, capsuleShipID int64) bool {
	if len(crew.Kills) == 0 {
		return false
	}
	for _, k := range crew.Kills {
		if k.PlayerAttackerCount(capsuleShipID) != 1 {
			return false
		}
	}
	return true
}

// deriveClassification implements spec.md §4.3's 8-way priority chain.
func deriveClassification(crew *models.Crew, cfg dto.Config) models.Classification {
	isAtGate := crew.StargateName != ""
	systemsCount := len(crew.VisitedSystemIDs)

	// 1. smartbomb
	if crew.HasSmartbombs && isAtGate && isStationaryRecent(crew) {
		return models.ClassificationSmartbomb
	}

	// 2. battle
	if crew.ActiveOrIdleCount() >= cfg.BattleThreshold {
		return models.ClassificationBattle
	}

	soloHistory := allSoloKills(crew, cfg.CapsuleShipID)

	// 3. solo_camp
	if soloHistory && isAtGate && hasInterdictor(crew, cfg.InterdictorShips) {
		return models.ClassificationSoloCamp
	}

	// 4. solo_roam
	if soloHistory {
		return models.ClassificationSoloRoam
	}

	// 5. roaming_camp
	if isAtGate && crew.Probability >= 5 && systemsCount > 1 && isStationaryRecent(crew) {
		return models.ClassificationRoamingCamp
	}

	// 6. camp
	if isAtGate && crew.Probability >= 5 && (systemsCount == 1 || isStationaryRecent(crew)) {
		return models.ClassificationCamp
	}

	// 7. roam
	if systemsCount > 1 {
		return models.ClassificationRoam
	}

	// 8. activity
	return models.ClassificationActivity
}
