package services

import (
	"sort"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// serializeCrew implements spec.md §4.5 "Snapshot / Archive adapter": it
// projects a live Crew into the stable, read-only SerializedCrew shape,
// computing the Metrics block the same way the source's _compute_metrics
// does (duration from first-to-last kill, not wall-clock since creation).
func serializeCrew(crew *models.Crew, nowMs int64, capsuleShipID int64) dto.SerializedCrew {
	out := dto.SerializedCrew{
		ID:                crew.ID,
		Classification:    crew.Classification,
		Probability:       crew.Probability,
		MaxProbability:    crew.MaxProbability,
		CurrentSystemID:   crew.CurrentSystemID,
		CurrentSystemName: crew.CurrentSystemName,
		CurrentRegion:     crew.CurrentRegion,
		StargateName:      crew.StargateName,
		SystemsVisited:    append([]models.SystemVisit(nil), crew.SystemsVisited...),
		AnchorCorpID:      crew.AnchorCorpID,
		AnchorAllianceID:  crew.AnchorAllianceID,
		ActiveCount:       crew.ActiveCount(),
		IdleCount:         crew.IdleCount(),
		DepartedCount:     crew.DepartedCount(),
		Transitions:       append([]models.Transition(nil), crew.Transitions...),
		ClassificationHistory: append([]models.ClassificationPoint(nil), crew.ClassificationHistory...),
		CreatedAt:         crew.CreatedAt,
		LastKillAt:        crew.LastKillAt,
		LastActivityAt:    crew.LastActivityAt,
		PrevSessionID:     crew.PrevSessionID,
	}

	if len(crew.SystemsVisited) > 0 {
		out.FirstSystemID = crew.SystemsVisited[0].ID
	} else {
		out.FirstSystemID = crew.CurrentSystemID
	}

	out.VisitedSystemIDs = make([]int64, 0, len(crew.VisitedSystemIDs))
	for id := range crew.VisitedSystemIDs {
		out.VisitedSystemIDs = append(out.VisitedSystemIDs, id)
	}
	sort.Slice(out.VisitedSystemIDs, func(i, j int) bool { return out.VisitedSystemIDs[i] < out.VisitedSystemIDs[j] })

	out.Kills = make([]dto.SerializedKill, 0, len(crew.Kills))
	for _, k := range crew.Kills {
		out.Kills = append(out.Kills, serializeKill(k))
	}

	corpSet := make(map[int64]struct{})
	allianceSet := make(map[int64]struct{})
	out.MemberIDs = make([]int64, 0, len(crew.Members))
	out.PerMemberShips = make(map[int64][]int64, len(crew.Members))
	for id, m := range crew.Members {
		out.MemberIDs = append(out.MemberIDs, id)
		if m.CorpID != 0 {
			corpSet[m.CorpID] = struct{}{}
		}
		if m.AllianceID != 0 {
			allianceSet[m.AllianceID] = struct{}{}
		}
		ships := make([]int64, 0, len(m.ShipTypeIDs))
		for st := range m.ShipTypeIDs {
			ships = append(ships, st)
		}
		sort.Slice(ships, func(i, j int) bool { return ships[i] < ships[j] })
		out.PerMemberShips[id] = ships
	}
	sort.Slice(out.MemberIDs, func(i, j int) bool { return out.MemberIDs[i] < out.MemberIDs[j] })
	out.NumCorps = len(corpSet)
	out.NumAlliances = len(allianceSet)

	out.Metrics = computeMetrics(crew, nowMs, capsuleShipID)
	return out
}

func serializeKill(k models.Event) dto.SerializedKill {
	labels := make([]string, 0, len(k.Labels))
	for l := range k.Labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return dto.SerializedKill{
		ID:                   k.EventID,
		Value:                k.Value,
		Labels:               labels,
		Time:                 k.EventTime.UnixMilli(),
		SystemID:             k.SystemID,
		VictimShipID:         k.Victim.ShipTypeID,
		VictimCharID:         k.Victim.CharacterID,
		ShipCategory:         k.Victim.ShipCategory,
		AtCelestial:          k.Location.AtCelestial,
		NearestCelestialName: k.Location.NearestCelestialName,
		Triangulation:        k.Location.Triangulation,
	}
}

// computeMetrics mirrors the source's _compute_metrics: the "active"
// duration spans first-to-last kill (the crew's actual window), while
// "camp" duration spans first kill to now (wall clock).
func computeMetrics(crew *models.Crew, nowMs int64, capsuleShipID int64) dto.Metrics {
	if len(crew.Kills) == 0 {
		return dto.Metrics{FirstSeenMs: nowMs, ShipCounts: map[int64]int{}}
	}

	earliest := crew.Kills[0].EventTime.UnixMilli()
	latest := crew.Kills[0].EventTime.UnixMilli()
	for _, k := range crew.Kills {
		t := k.EventTime.UnixMilli()
		if t < earliest {
			earliest = t
		}
		if t > latest {
			latest = t
		}
	}

	activeDur := int64(0)
	if latest > earliest {
		activeDur = (latest - earliest) / 60000
		if activeDur < 1 {
			activeDur = 1
		}
	}
	campDur := (nowMs - earliest) / 60000
	inactivity := (nowMs - latest) / 60000

	shipChars := make(map[int64]map[int64]struct{})
	characters := make(map[int64]struct{})
	corps := make(map[int64]struct{})
	alliances := make(map[int64]struct{})
	for id, m := range crew.Members {
		characters[id] = struct{}{}
		if m.CorpID != 0 {
			corps[m.CorpID] = struct{}{}
		}
		if m.AllianceID != 0 {
			alliances[m.AllianceID] = struct{}{}
		}
		for st := range m.ShipTypeIDs {
			if shipChars[st] == nil {
				shipChars[st] = make(map[int64]struct{})
			}
			shipChars[st][id] = struct{}{}
		}
	}
	shipCounts := make(map[int64]int, len(shipChars))
	for st, chars := range shipChars {
		shipCounts[st] = len(chars)
	}

	var totalValue float64
	podKills := 0
	for _, k := range crew.Kills {
		totalValue += k.Value
		if k.Victim.ShipTypeID == capsuleShipID {
			podKills++
		}
	}

	var killFreq float64
	if activeDur > 0 {
		killFreq = float64(len(crew.Kills)) / float64(activeDur)
	}
	avgValue := totalValue / float64(len(crew.Kills))

	return dto.Metrics{
		FirstSeenMs:           earliest,
		CampDurationMin:       campDur,
		ActiveDurationMin:     activeDur,
		InactivityDurationMin: inactivity,
		PodKills:              podKills,
		KillFrequency:         killFreq,
		AvgValuePerKill:       avgValue,
		ShipCounts:            shipCounts,
		Characters:            len(characters),
		Corporations:          len(corps),
		Alliances:             len(alliances),
	}
}
