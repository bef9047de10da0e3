package services

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

// Registry is the Crew Registry (spec.md §4.1): an indexed collection of
// live crews, guarded by a single mutex (single-writer discipline, spec.md
// §5). Ingest/Tick/merge, SetConfig and ForceEvict write under it;
// Snapshot/DrainArchive take the same lock to observe a consistent instant.
type Registry struct {
	mu sync.Mutex

	cfg   dto.Config
	clock Clock

	crews map[string]*models.Crew

	// eventIndex maps an ingested event id to the crew currently holding it,
	// for O(1) duplicate detection across all live crews (spec.md §4.1
	// "Idempotent on event_id", §7 "Out-of-order / duplicate event").
	eventIndex map[string]string

	archiveQueue []dto.SerializedCrew

	droppedInvalid int64
	droppedNPCOnly int64
}

// NewRegistry constructs an empty Registry against the given configuration
// and clock.
func NewRegistry(cfg dto.Config, clock Clock) *Registry {
	return &Registry{
		cfg:        cfg,
		clock:      clock,
		crews:      make(map[string]*models.Crew),
		eventIndex: make(map[string]string),
	}
}

// Stats exposes drop counters for observability (SPEC_FULL.md "Error
// handling" — grounded on the teacher's ConsumerMetrics).
type Stats struct {
	DroppedInvalid int64
	DroppedNPCOnly int64
	LiveCrews      int
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		DroppedInvalid: r.droppedInvalid,
		DroppedNPCOnly: r.droppedNPCOnly,
		LiveCrews:      len(r.crews),
	}
}

// Ingest implements spec.md §4.1 "ingest(event) -> void".
func (r *Registry) Ingest(ev models.Event) error {
	if err := validateEvent(ev); err != nil {
		r.mu.Lock()
		r.droppedInvalid++
		r.mu.Unlock()
		return err
	}

	attackerChars := ev.PlayerAttackerCharIDs(r.cfg.CapsuleShipID)
	if len(attackerChars) == 0 {
		r.mu.Lock()
		r.droppedNPCOnly++
		r.mu.Unlock()
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.eventIndex[ev.EventID]; dup {
		return nil
	}

	matches := findMatches(r.crews, ev, r.cfg, r.clock.Now())

	var crew *models.Crew
	switch {
	case len(matches) == 0:
		crew = models.NewCrew(uuid.NewString(), ev, ev.EventTime.UnixMilli())
		r.crews[crew.ID] = crew
	case len(matches) == 1:
		crew = matches[0].crew
	default:
		crew = r.mergeMatches(matches, ev)
	}

	r.applyEventToCrew(crew, ev)
	return nil
}

func validateEvent(ev models.Event) error {
	if ev.EventID == "" {
		return InvalidEventError("missing event_id")
	}
	if ev.EventTime.IsZero() {
		return InvalidEventError("missing event_time")
	}
	if ev.SystemID == 0 {
		return InvalidEventError("missing system_id")
	}
	if len(ev.Attackers) == 0 {
		return InvalidEventError("missing attackers")
	}
	return nil
}

// applyEventToCrew implements spec.md §4.1's per-event update order
// (steps 1-7) against the already-resolved (new, matched, or merged) crew.
func (r *Registry) applyEventToCrew(crew *models.Crew, ev models.Event) {
	// 1. Append event (dedup by event_id).
	crew.AppendKill(ev)
	r.eventIndex[ev.EventID] = crew.ID
	crew.LastKillAt = ev.EventTime.UnixMilli()
	crew.LastActivityAt = crew.LastKillAt

	// 2. Update member states.
	updateMembersFromKill(crew, ev, r.cfg.CapsuleShipID)

	// 3. Recompute anchors.
	updateAnchor(crew)

	// 4. Update spatial state.
	updateSpatialState(crew, ev, r.cfg.CapsuleShipID)

	// Sticky smartbomb flag.
	if eventHasSmartbombWeapon(ev, r.cfg.SmartbombWeapons) {
		crew.HasSmartbombs = true
	}

	// 5. Probability.
	crew.Probability = computeProbability(crew, r.cfg, r.clock.Now())

	// 6. Classification.
	prevClass := crew.Classification
	crew.Classification = deriveClassification(crew, r.cfg)

	// 7. Transition on change.
	if crew.Classification != prevClass {
		recordTransition(crew, prevClass, ev)
	}
}

func eventHasSmartbombWeapon(ev models.Event, smartbombWeapons map[int64]struct{}) bool {
	for _, a := range ev.Attackers {
		if a.WeaponTypeID == 0 {
			continue
		}
		if _, ok := smartbombWeapons[a.WeaponTypeID]; ok {
			return true
		}
	}
	return false
}

func recordTransition(crew *models.Crew, from models.Classification, ev models.Event) {
	crew.Transitions = append(crew.Transitions, models.Transition{
		From:              from,
		To:                crew.Classification,
		Time:              ev.EventTime.UnixMilli(),
		SystemID:          ev.SystemID,
		SystemName:        ev.SystemName,
		TriggeringEventID: ev.EventID,
	})
	crew.ClassificationHistory = append(crew.ClassificationHistory, models.ClassificationPoint{
		Classification: crew.Classification,
		Time:           ev.EventTime.UnixMilli(),
		SystemID:       ev.SystemID,
		SystemName:     ev.SystemName,
	})
}

// mergeMatches implements spec.md §4.1 "Merge": when an event scores above
// threshold against two or more live crews, they are collapsed into one
// before the triggering event is applied. The candidate with the most
// kills becomes primary; every other candidate is absorbed into it and
// removed from the registry.
func (r *Registry) mergeMatches(matches []matchCandidate, ev models.Event) *models.Crew {
	sort.Slice(matches, func(i, j int) bool {
		return len(matches[i].crew.Kills) > len(matches[j].crew.Kills)
	})

	primary := matches[0].crew
	for _, donor := range matches[1:] {
		r.absorb(primary, donor.crew, ev)
		delete(r.crews, donor.crew.ID)
	}
	return primary
}

// absorb merges donor into primary in place, per spec.md §4.1 "Merge".
func (r *Registry) absorb(primary, donor *models.Crew, ev models.Event) {
	mergeTime := ev.EventTime.UnixMilli()
	donorClass := donor.Classification

	// Kills: union, dedup by event id, re-sorted by time; re-point the
	// event index at primary.
	for _, k := range donor.Kills {
		if !primary.HasKill(k.EventID) {
			primary.AppendKill(k)
		}
		r.eventIndex[k.EventID] = primary.ID
	}

	// Members: union; where both sides know a character, sum kill_count
	// and take status together with whichever side's last_seen is newer,
	// so the two are never paired from unrelated events.
	for id, dm := range donor.Members {
		pm, ok := primary.Members[id]
		if !ok {
			primary.Members[id] = dm
			continue
		}
		pm.KillCount = dm.KillCount + pm.KillCount
		if dm.LastSeen > pm.LastSeen {
			pm.Status = dm.Status
			pm.LastSeen = dm.LastSeen
		}
		if dm.FirstSeen < pm.FirstSeen {
			pm.FirstSeen = dm.FirstSeen
		}
		for st := range dm.ShipTypeIDs {
			if pm.ShipTypeIDs == nil {
				pm.ShipTypeIDs = make(map[int64]struct{})
			}
			pm.ShipTypeIDs[st] = struct{}{}
		}
	}
	updateAnchor(primary)

	// Visited systems: union, dedup, sorted by time.
	seen := make(map[int64]struct{}, len(primary.VisitedSystemIDs))
	for id := range primary.VisitedSystemIDs {
		seen[id] = struct{}{}
	}
	for _, v := range donor.SystemsVisited {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		primary.SystemsVisited = append(primary.SystemsVisited, v)
		primary.VisitedSystemIDs[v.ID] = struct{}{}
	}
	sort.Slice(primary.SystemsVisited, func(i, j int) bool {
		return primary.SystemsVisited[i].Time < primary.SystemsVisited[j].Time
	})

	primary.HasSmartbombs = primary.HasSmartbombs || donor.HasSmartbombs

	if primary.StargateName == "" {
		primary.StargateName = donor.StargateName
	}

	// Gate kill count: re-derive from scratch over the merged, time-sorted
	// kill list (spec.md §4.2 effective-kill rule) instead of summing the
	// two crews' pre-merge incremental counters — a kill can reclassify as
	// a cross-crew follow-up pod only once the two histories are
	// interleaved, so summing the independent counters can overcount.
	effective := effectiveKillCount(primary.Kills, r.cfg.CapsuleShipID)
	primary.GateKillCount = deriveGateKillCount(primary.Kills, r.cfg.CapsuleShipID)
	if primary.GateKillCount < ceilDivTwo(effective) {
		primary.StargateName = ""
	}

	if donor.CreatedAt < primary.CreatedAt {
		primary.CreatedAt = donor.CreatedAt
	}
	if donor.LastKillAt > primary.LastKillAt {
		primary.LastKillAt = donor.LastKillAt
	}
	if donor.LastActivityAt > primary.LastActivityAt {
		primary.LastActivityAt = donor.LastActivityAt
	}
	if donor.MaxProbability > primary.MaxProbability {
		primary.MaxProbability = donor.MaxProbability
	}

	// Record the merge itself as a pseudo-transition ahead of whatever the
	// triggering event produces next.
	primary.Transitions = append(primary.Transitions, models.Transition{
		From:            donorClass,
		To:              primary.Classification,
		Time:            mergeTime,
		SystemID:        ev.SystemID,
		SystemName:      ev.SystemName,
		Merge:           true,
		MergedCrewID:    donor.ID,
		MergedCrewClass: donorClass,
	})
	primary.Transitions = append(primary.Transitions, donor.Transitions...)
	sort.Slice(primary.Transitions, func(i, j int) bool { return primary.Transitions[i].Time < primary.Transitions[j].Time })

	if primary.PrevSessionID == "" && len(donor.Kills) >= r.cfg.CrewMinKillsToSave {
		primary.PrevSessionID = donor.ID
	}
}

// Tick implements spec.md §4.1 "tick(now) -> changed: bool".
func (r *Registry) Tick(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	nowMs := now.UnixMilli()
	changed := false

	for id, crew := range r.crews {
		timeout := r.timeoutFor(crew.Classification)

		if time.Duration(nowMs-crew.LastActivityAt)*time.Millisecond > timeout {
			changed = true
			r.expireCrew(id, crew)
			continue
		}

		updateMemberStatuses(crew, now, struct {
			Idle     time.Duration
			Departed time.Duration
		}{Idle: r.cfg.MemberIdleTimeout, Departed: r.cfg.MemberDepartedTimeout})

		if crew.IsDissolving() {
			changed = true
			r.expireCrew(id, crew)
			continue
		}

		prevProb := crew.Probability
		prevClass := crew.Classification
		crew.Probability = computeProbability(crew, r.cfg, now)
		crew.Classification = deriveClassification(crew, r.cfg)
		if crew.Probability != prevProb || crew.Classification != prevClass {
			changed = true
		}
	}

	return changed
}

// expireCrew removes a crew from the live set, purges its event index
// entries, and enqueues it for archival if it meets the minimum kill count
// (spec.md §3 "Lifecycle", §4.1 "Expiry timeouts"/"Dissolution").
func (r *Registry) expireCrew(id string, crew *models.Crew) {
	delete(r.crews, id)
	for _, k := range crew.Kills {
		if r.eventIndex[k.EventID] == id {
			delete(r.eventIndex, k.EventID)
		}
	}
	if len(crew.Kills) >= r.cfg.CrewMinKillsToSave {
		r.archiveQueue = append(r.archiveQueue, serializeCrew(crew, r.clock.Now().UnixMilli(), r.cfg.CapsuleShipID))
	}
}

func (r *Registry) timeoutFor(c models.Classification) time.Duration {
	if c.UsesLongTimeout() {
		return r.cfg.CampTimeout
	}
	return r.cfg.RoamTimeout
}

// Snapshot implements spec.md §4.1 "snapshot() -> ordered sequence of
// SerializedCrew", sorted by (-probability, -last_activity_at).
func (r *Registry) Snapshot() []dto.SerializedCrew {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now().UnixMilli()
	var live []*models.Crew
	for _, crew := range r.crews {
		timeout := r.timeoutFor(crew.Classification)
		if time.Duration(now-crew.LastActivityAt)*time.Millisecond <= timeout {
			live = append(live, crew)
		}
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].Probability != live[j].Probability {
			return live[i].Probability > live[j].Probability
		}
		return live[i].LastActivityAt > live[j].LastActivityAt
	})

	out := make([]dto.SerializedCrew, 0, len(live))
	for _, crew := range live {
		out = append(out, serializeCrew(crew, now, r.cfg.CapsuleShipID))
	}
	return out
}

// DrainArchive implements spec.md §4.1 "drain_archive() -> sequence of
// SerializedCrew".
func (r *Registry) DrainArchive() []dto.SerializedCrew {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.archiveQueue
	r.archiveQueue = nil
	return out
}

// SetConfig swaps the registry's tunable configuration at runtime
// (SPEC_FULL.md "Supplemented features" — internal/admin's config-reload
// endpoint). Only the config changes; live crews and the event index are
// untouched, so an in-flight camp isn't disrupted by a threshold retune.
func (r *Registry) SetConfig(cfg dto.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}

// Config returns a copy of the registry's current configuration.
func (r *Registry) Config() dto.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// ForceEvict immediately expires a live crew regardless of its timeout,
// queuing it for archival the same way a natural expiry would (SPEC_FULL.md
// "Supplemented features" — an operator override for internal/admin's
// force-evict endpoint). Reports whether a crew with that id was live.
func (r *Registry) ForceEvict(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	crew, ok := r.crews[id]
	if !ok {
		return false
	}
	r.expireCrew(id, crew)
	return true
}
