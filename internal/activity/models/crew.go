package models

// SystemVisit records a system the crew was seen operating in, in the
// order it was first entered.
type SystemVisit struct {
	ID     int64
	Name   string
	Region string
	Time   int64 // unix millis
}

// Transition is an append-only record of a classification change, or of a
// merge pseudo-transition (spec.md §3 "transitions").
type Transition struct {
	From             Classification
	To               Classification
	Time             int64
	SystemID         int64
	SystemName       string
	TriggeringEventID string
	// Merge is set when this transition represents a merge() pseudo-transition
	// rather than a plain classification change.
	Merge bool
	MergedCrewID      string
	MergedCrewClass   Classification
}

// ClassificationPoint is a parallel history log of classification over time,
// without the `from` edge that Transition carries (see SPEC_FULL.md
// "Supplemented features" §1 — ported from the Python reference's
// classification_history).
type ClassificationPoint struct {
	Classification Classification
	Time           int64
	SystemID       int64
	SystemName     string
}

// Crew is the mutable aggregate representing a player group operating
// together. It is owned exclusively by the Registry and mutated only while
// a single logical event is being processed (spec.md §3 "Lifecycle").
type Crew struct {
	ID             string
	CreatedAt      int64
	LastKillAt     int64
	LastActivityAt int64

	Members map[int64]*MemberState

	AnchorCorpID     int64
	AnchorAllianceID int64
	AnchorCorpIDs    map[int64]struct{}

	Kills      []Event
	killIndex  map[string]struct{}
	TotalValue float64

	CurrentSystemID   int64
	CurrentSystemName string
	CurrentRegion     string
	CurrentLocation   string

	SystemsVisited   []SystemVisit
	VisitedSystemIDs map[int64]struct{}

	HasSmartbombs  bool
	StargateName   string
	GateKillCount  int

	Classification        Classification
	ClassificationHistory []ClassificationPoint
	Probability           int
	MaxProbability        int

	Transitions []Transition

	PrevSessionID string
}

// NewCrew creates a crew anchored on its first kill.
func NewCrew(id string, ev Event, now int64) *Crew {
	c := &Crew{
		ID:                id,
		CreatedAt:         now,
		LastKillAt:        now,
		LastActivityAt:    now,
		Members:           make(map[int64]*MemberState),
		AnchorCorpIDs:     make(map[int64]struct{}),
		killIndex:         make(map[string]struct{}),
		CurrentSystemID:   ev.SystemID,
		CurrentSystemName: ev.SystemName,
		CurrentRegion:     ev.RegionName,
		VisitedSystemIDs:  map[int64]struct{}{ev.SystemID: {}},
		SystemsVisited: []SystemVisit{{
			ID:     ev.SystemID,
			Name:   ev.SystemName,
			Region: ev.RegionName,
			Time:   now,
		}},
		Classification: ClassificationActivity,
	}
	return c
}

// HasKill reports whether the event id has already been ingested (dedup,
// spec.md §3 invariant 1 / §8 property 1).
func (c *Crew) HasKill(eventID string) bool {
	_, ok := c.killIndex[eventID]
	return ok
}

// AppendKill adds an event to the kill history, deduplicated by id, inserting
// it at its event_time position so c.Kills stays time-sorted (events normally
// arrive close to event_time order, so this is usually an append).
func (c *Crew) AppendKill(ev Event) {
	if c.killIndex == nil {
		c.killIndex = make(map[string]struct{})
	}
	if c.HasKill(ev.EventID) {
		return
	}
	c.killIndex[ev.EventID] = struct{}{}

	idx := len(c.Kills)
	for idx > 0 && c.Kills[idx-1].EventTime.After(ev.EventTime) {
		idx--
	}
	c.Kills = append(c.Kills, Event{})
	copy(c.Kills[idx+1:], c.Kills[idx:])
	c.Kills[idx] = ev

	c.TotalValue += ev.Value
}

// ActiveCount, IdleCount, DepartedCount, TotalMemberCount mirror the
// Python Crew's status-count properties.
func (c *Crew) ActiveCount() int   { return c.countStatus(MemberActive) }
func (c *Crew) IdleCount() int     { return c.countStatus(MemberIdle) }
func (c *Crew) DepartedCount() int { return c.countStatus(MemberDeparted) }

func (c *Crew) countStatus(s MemberStatus) int {
	n := 0
	for _, m := range c.Members {
		if m.Status == s {
			n++
		}
	}
	return n
}

func (c *Crew) TotalMemberCount() int { return len(c.Members) }

// ActiveOrIdleCount returns members eligible to be matched against or
// counted toward anchors/battle thresholds.
func (c *Crew) ActiveOrIdleCount() int {
	n := 0
	for _, m := range c.Members {
		if m.Status == MemberActive || m.Status == MemberIdle {
			n++
		}
	}
	return n
}

// IsDissolving implements spec.md §4.1 "Dissolution".
func (c *Crew) IsDissolving() bool {
	total := c.TotalMemberCount()
	if total < 3 {
		return false
	}
	active := c.ActiveCount()
	if active >= 2 {
		return false
	}
	ratio := float64(active) / float64(total)
	return ratio < 0.30
}
