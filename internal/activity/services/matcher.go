package services

import (
	"sort"
	"time"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// matchCandidate is one scored crew match (spec.md §4.1 "Matcher scoring").
type matchCandidate struct {
	crew  *models.Crew
	score float64
}

// scoreCrew computes the spec.md §4.1 match score of an event against a
// single live crew.
func scoreCrew(crew *models.Crew, ev models.Event, cfg dto.Config, now time.Time) float64 {
	var score float64

	attackerChars := ev.PlayerAttackerCharIDs(cfg.CapsuleShipID)
	corpIDs, allianceIDs := eventCorpsAndAlliances(ev, cfg.CapsuleShipID)

	// 1. Character overlap + reverse overlap bonus.
	activeIdle := activeOrIdleMemberIDs(crew)
	if len(activeIdle) > 0 && len(attackerChars) > 0 {
		overlap := intersectCount(activeIdle, attackerChars)
		if overlap > 0 {
			score += (float64(overlap) / float64(len(attackerChars))) * 0.50
			score += (float64(overlap) / float64(len(activeIdle))) * 0.10
		}
	}

	// 2/3/4. Corp/alliance anchor.
	if crew.AnchorAllianceID != 0 && len(allianceIDs) > 0 {
		if _, ok := allianceIDs[crew.AnchorAllianceID]; ok {
			score += 0.25
		} else if intersectsSet(crew.AnchorCorpIDs, corpIDs) {
			score += 0.15
		}
	} else if crew.AnchorCorpID != 0 && len(corpIDs) > 0 {
		if _, ok := corpIDs[crew.AnchorCorpID]; ok {
			score += 0.20
		}
	}

	// 5/6. Spatial proximity.
	if crew.CurrentSystemID == ev.SystemID {
		score += 0.15
	} else if cfg.Adjacency != nil {
		if _, ok := cfg.Adjacency.Neighbors(crew.CurrentSystemID)[ev.SystemID]; ok {
			score += 0.075
		}
	}

	// 7/8/9. Temporal recency.
	timeSince := time.Duration(ev.EventTime.UnixMilli()-crew.LastKillAt) * time.Millisecond
	switch {
	case timeSince < 10*time.Minute:
		score += 0.10
	case timeSince < 30*time.Minute:
		score += 0.05
	case timeSince > 120*time.Minute:
		score -= 0.15
	}

	return score
}

// findMatches implements spec.md §4.1 "Matcher scoring": score the event
// against every live crew and return all matches with score >= threshold,
// sorted by score descending.
func findMatches(crews map[string]*models.Crew, ev models.Event, cfg dto.Config, now time.Time) []matchCandidate {
	var out []matchCandidate
	for _, crew := range crews {
		score := scoreCrew(crew, ev, cfg, now)
		if score >= cfg.MatchThreshold {
			out = append(out, matchCandidate{crew: crew, score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

func activeOrIdleMemberIDs(crew *models.Crew) map[int64]struct{} {
	out := make(map[int64]struct{})
	for id, m := range crew.Members {
		if m.Status == models.MemberActive || m.Status == models.MemberIdle {
			out[id] = struct{}{}
		}
	}
	return out
}

func eventCorpsAndAlliances(ev models.Event, capsuleShipID int64) (map[int64]struct{}, map[int64]struct{}) {
	corps := make(map[int64]struct{})
	alliances := make(map[int64]struct{})
	for _, a := range ev.Attackers {
		if !a.IsPlayer() || a.ShipTypeID == capsuleShipID {
			continue
		}
		if a.CorporationID != 0 {
			corps[a.CorporationID] = struct{}{}
		}
		if a.AllianceID != 0 {
			alliances[a.AllianceID] = struct{}{}
		}
	}
	return corps, alliances
}

func intersectCount(a, b map[int64]struct{}) int {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	n := 0
	for k := range small {
		if _, ok := big[k]; ok {
			n++
		}
	}
	return n
}

func intersectsSet(a, b map[int64]struct{}) bool {
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}
