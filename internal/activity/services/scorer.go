package services

import (
	"math"
	"sort"
	"time"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// filterRelevantKills implements spec.md §4.4's irrelevant-kill filter,
// restricted to gate kills only ("non-gate kills discarded"). Each named
// predicate mirrors a lettered bullet in the spec so scenarios can be
// driven against individual stages (spec.md §9 "Scoring as a pipeline").
func filterRelevantKills(kills []models.Event, cfg dto.Config) []models.Event {
	var out []models.Event
	for _, k := range kills {
		if !isGateKill(k) {
			continue
		}
		if isAwox(k) {
			continue
		}
		if isNPCVictim(k) {
			continue
		}
		if k.Victim.ShipCategory == models.ShipCategoryStructure {
			continue
		}
		if k.Victim.ShipTypeID == cfg.MobileTractorShipID {
			continue
		}
		if len(k.Attackers) > 0 && !k.HasAnyPlayerOrFactionAttacker() {
			continue
		}
		out = append(out, k)
	}
	return out
}

func isAwox(ev models.Event) bool { return ev.HasLabel("awox") }

func isNPCVictim(ev models.Event) bool {
	noPlayerVictim := ev.Victim.CorporationID != 0 && ev.Victim.CharacterID == 0
	return noPlayerVictim || ev.HasLabel("npc")
}

func splitShipsAndPods(kills []models.Event, capsuleShipID int64) (ships, pods []models.Event) {
	for _, k := range kills {
		if k.Victim.ShipTypeID == capsuleShipID {
			pods = append(pods, k)
		} else {
			ships = append(ships, k)
		}
	}
	sort.Slice(ships, func(i, j int) bool { return ships[i].EventTime.Before(ships[j].EventTime) })
	return ships, pods
}

// burstPenaltyDelta implements spec.md §4.4 "Burst penalty".
func burstPenaltyDelta(ships []models.Event, crew *models.Crew, now time.Time) float64 {
	if len(ships) < 2 {
		return 0
	}
	campAge := now.Sub(time.UnixMilli(crew.CreatedAt))
	if campAge > 15*time.Minute {
		return 0
	}
	for i := 1; i < len(ships); i++ {
		if ships[i].EventTime.Sub(ships[i-1].EventTime) < 2*time.Minute {
			return -0.20
		}
	}
	return 0
}

// threatShipsDelta implements spec.md §4.4 "Threat ships": every attacker
// in every gate kill (ship or pod) contributes its Threat-Ship weight,
// capped at 0.50.
func threatShipsDelta(relevant []models.Event, cfg dto.Config) float64 {
	var sum float64
	for _, k := range relevant {
		for _, a := range k.Attackers {
			if w, ok := cfg.ThreatShips[a.ShipTypeID]; ok {
				sum += w
			}
		}
	}
	return math.Min(0.50, sum)
}

// smartbombDelta implements spec.md §4.4 "Smartbomb bonus".
func smartbombDelta(crew *models.Crew, shipKillCount int, cfg dto.Config) float64 {
	if !crew.HasSmartbombs {
		return 0
	}
	delta := 0.16
	hasSBShip := false
	for _, k := range crew.Kills {
		for _, a := range k.Attackers {
			if _, ok := cfg.SmartbombShips[a.ShipTypeID]; ok {
				hasSBShip = true
				break
			}
		}
		if hasSBShip {
			break
		}
	}
	if hasSBShip {
		if shipKillCount > 1 {
			delta += 0.30
		} else {
			delta += 0.15
		}
	}
	return delta
}

// knownLocationDelta implements spec.md §4.4 "Known location bonus".
func knownLocationDelta(crew *models.Crew, cfg dto.Config) float64 {
	camp, ok := cfg.PermanentCamps[crew.CurrentSystemID]
	if !ok || crew.StargateName == "" {
		return 0
	}
	for _, gate := range camp.Gates {
		if containsFold(crew.StargateName, gate) {
			return camp.Weight
		}
	}
	return 0
}

func containsFold(haystack, needle string) bool {
	return indexFold(haystack, needle) >= 0
}

// indexFold is a tiny case-insensitive substring search, avoiding an extra
// dependency for what the teacher does with strings.Contains+ToLower
// elsewhere (pkg/config's GetAPIPrefix/duration helpers use the same
// stdlib-only string handling).
func indexFold(haystack, needle string) int {
	h := toLowerASCII(haystack)
	n := toLowerASCII(needle)
	if len(n) == 0 {
		return 0
	}
	for i := 0; i+len(n) <= len(h); i++ {
		if h[i:i+len(n)] == n {
			return i
		}
	}
	return -1
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// vulnerableVictimsDelta implements spec.md §4.4 "Vulnerable victims".
func vulnerableVictimsDelta(ships []models.Event) float64 {
	n := 0
	for _, k := range ships {
		if k.Victim.ShipCategory == models.ShipCategoryIndustrial || k.Victim.ShipCategory == models.ShipCategoryMining {
			n++
		}
	}
	switch {
	case n >= 2:
		return 0.40
	case n == 1:
		return 0.20
	default:
		return 0
	}
}

// attackerConsistencyDelta implements spec.md §4.4 "Attacker consistency".
func attackerConsistencyDelta(ships []models.Event, capsuleShipID int64) float64 {
	if len(ships) < 2 {
		return 0
	}
	start := 0
	if len(ships) > 3 {
		start = len(ships) - 3
	}
	check := ships[start:]

	if len(check) >= 2 && isBurstSequence(check) && shareSingleVictimCorpOrAlliance(check) {
		return 0
	}

	var consistency float64
	latest := attackerCharSet(check[len(check)-1])
	for i := len(check) - 2; i >= 0; i-- {
		prev := attackerCharSet(check[i])
		overlap := intersectCount(latest, prev)
		threshold := len(prev) / 3
		if threshold < 2 {
			threshold = 2
		}
		if overlap >= threshold {
			consistency += 0.15
		}
	}
	return math.Min(0.30, consistency)
}

func isBurstSequence(kills []models.Event) bool {
	for i := 1; i < len(kills); i++ {
		if kills[i].EventTime.Sub(kills[i-1].EventTime) < 2*time.Minute {
			return true
		}
	}
	return false
}

func shareSingleVictimCorpOrAlliance(kills []models.Event) bool {
	corps := make(map[int64]struct{})
	allis := make(map[int64]struct{})
	corpCount, alliCount := 0, 0
	for _, k := range kills {
		if k.Victim.CorporationID != 0 {
			corps[k.Victim.CorporationID] = struct{}{}
			corpCount++
		}
		if k.Victim.AllianceID != 0 {
			allis[k.Victim.AllianceID] = struct{}{}
			alliCount++
		}
	}
	if corpCount == len(kills) && len(corps) == 1 {
		return true
	}
	if alliCount == len(kills) && len(allis) == 1 {
		return true
	}
	return false
}

func attackerCharSet(ev models.Event) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, a := range ev.Attackers {
		if a.CharacterID != 0 {
			out[a.CharacterID] = struct{}{}
		}
	}
	return out
}

// widelySpacedDelta implements spec.md §4.4 "Widely-spaced bonus".
func widelySpacedDelta(ships []models.Event) float64 {
	if len(ships) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(ships); i++ {
		if ships[i].EventTime.Sub(ships[i-1].EventTime) > 5*time.Minute {
			sum += 0.15
		}
	}
	return math.Min(0.45, sum)
}

// podBonusDelta implements spec.md §4.4 "Pod bonus".
func podBonusDelta(pods, ships []models.Event, capsuleShipID int64) float64 {
	if len(pods) == 0 {
		return 0
	}
	var orphan, followup float64
	for _, p := range pods {
		if isFollowupPod(p, ships, capsuleShipID) {
			followup++
		} else {
			orphan++
		}
	}
	return math.Min(0.15, (orphan+0.5*followup)*0.03)
}

// computeProbability implements spec.md §4.4 end to end.
func computeProbability(crew *models.Crew, cfg dto.Config, now time.Time) int {
	if crew.StargateName == "" {
		return 0
	}

	relevant := filterRelevantKills(crew.Kills, cfg)
	if len(relevant) == 0 {
		return 0
	}

	ships, pods := splitShipsAndPods(relevant, cfg.CapsuleShipID)
	if len(ships) == 0 && len(pods) == 0 {
		return 0
	}

	base := 0.0
	base += burstPenaltyDelta(ships, crew, now)
	base += threatShipsDelta(relevant, cfg)
	base += smartbombDelta(crew, len(ships), cfg)
	base += knownLocationDelta(crew, cfg)
	base += vulnerableVictimsDelta(ships)
	base += attackerConsistencyDelta(ships, cfg.CapsuleShipID)
	base += widelySpacedDelta(ships)
	base += podBonusDelta(pods, ships, cfg.CapsuleShipID)

	base = clamp(base, 0, 0.95)

	minutesSince := now.Sub(time.UnixMilli(crew.LastKillAt)).Minutes()
	decayStartMin := cfg.DecayStart.Minutes()
	if minutesSince > decayStartMin {
		decayPct := math.Min(1.0, (minutesSince-decayStartMin)*0.10)
		base *= 1 - decayPct
	}

	base = clamp(base, 0, 0.95)
	pct := int(math.Round(base * 100))
	if pct < 5 {
		return 0
	}
	if pct > crew.MaxProbability {
		crew.MaxProbability = pct
	}
	return pct
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
