package services

import (
	"time"

	"go-falcon/internal/activity/models"
)

// updateMembersFromKill implements spec.md §4.1 update-order step 2: add or
// update member state for every attacker, and transition any active member
// who appears as the victim to departed.
func updateMembersFromKill(crew *models.Crew, ev models.Event, capsuleShipID int64) {
	seenAt := ev.EventTime.UnixMilli()

	for _, a := range ev.Attackers {
		if !a.IsPlayer() || a.ShipTypeID == capsuleShipID {
			continue
		}
		upsertMember(crew, a.CharacterID, a.CorporationID, a.AllianceID, a.ShipTypeID, seenAt)
	}

	if ev.Victim.CharacterID != 0 {
		if m, ok := crew.Members[ev.Victim.CharacterID]; ok {
			m.Status = models.MemberDeparted
		}
	}
}

func upsertMember(crew *models.Crew, charID, corpID, allianceID, shipTypeID, seenAt int64) {
	if m, ok := crew.Members[charID]; ok {
		m.LastSeen = seenAt
		m.KillCount++
		m.Status = models.MemberActive
		if shipTypeID != 0 {
			if m.ShipTypeIDs == nil {
				m.ShipTypeIDs = make(map[int64]struct{})
			}
			m.ShipTypeIDs[shipTypeID] = struct{}{}
		}
		if corpID != 0 {
			m.CorpID = corpID
		}
		if allianceID != 0 {
			m.AllianceID = allianceID
		}
		return
	}
	crew.Members[charID] = models.NewMemberState(charID, corpID, allianceID, shipTypeID, seenAt)
}

// updateAnchor implements spec.md §3 invariant: anchor_corp_id and
// anchor_alliance_id are the modes over members with status in
// {active, idle}.
func updateAnchor(crew *models.Crew) {
	allianceCounts := make(map[int64]int)
	corpCounts := make(map[int64]int)
	corpSet := make(map[int64]struct{})

	any := false
	for _, m := range crew.Members {
		if m.Status != models.MemberActive && m.Status != models.MemberIdle {
			continue
		}
		any = true
		if m.AllianceID != 0 {
			allianceCounts[m.AllianceID]++
		}
		if m.CorpID != 0 {
			corpCounts[m.CorpID]++
			corpSet[m.CorpID] = struct{}{}
		}
	}
	if !any {
		return
	}

	crew.AnchorAllianceID = mode(allianceCounts)
	crew.AnchorCorpID = mode(corpCounts)
	crew.AnchorCorpIDs = corpSet
}

// mode returns the key with the highest count, or 0 if counts is empty.
// Ties resolve to whichever key the map iteration visits first among the
// maximum, so the winner among equal counts is not defined.
func mode(counts map[int64]int) int64 {
	var best int64
	bestCount := 0
	for k, c := range counts {
		if c > bestCount {
			best = k
			bestCount = c
		}
	}
	return best
}

// updateMemberStatuses implements spec.md §4.1 "Member aging".
func updateMemberStatuses(crew *models.Crew, now time.Time, cfg struct {
	Idle     time.Duration
	Departed time.Duration
}) {
	nowMs := now.UnixMilli()
	for _, m := range crew.Members {
		if m.Status == models.MemberDeparted {
			continue
		}
		since := time.Duration(nowMs-m.LastSeen) * time.Millisecond
		if since > cfg.Departed {
			m.Status = models.MemberDeparted
		} else if since > cfg.Idle {
			m.Status = models.MemberIdle
		}
	}
}
