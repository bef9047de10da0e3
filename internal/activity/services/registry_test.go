package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-falcon/internal/activity/dto"
	"go-falcon/internal/activity/models"
)

const stargateName = "Jita IV - Moon 4 - Stargate (Perimeter)"

func TestIngest_CreatesNewCrewOnFirstEvent(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("k1", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)

	require.NoError(t, reg.Ingest(ev))

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(30000142), snap[0].CurrentSystemID)
	assert.Contains(t, snap[0].MemberIDs, int64(1001))
}

func TestIngest_DropsEventWithNoPlayerAttacker(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("k1", 30000142, clock.Now(), atGate(stargateName))
	// no attackers at all -> invalid
	require.Error(t, reg.Ingest(ev))
	assert.Empty(t, reg.Snapshot())
}

func TestIngest_DropsDuplicateEventID(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("dup1", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev))
	require.NoError(t, reg.Ingest(ev)) // second ingest of same id is a silent no-op

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Len(t, snap[0].Kills, 1)
}

// S1: Known permanent camp — a small crew parked at a configured gate
// reaches camp or roaming_camp classification and a nonzero probability
// once two consistent ship kills land.
func TestScenario_KnownPermanentCamp(t *testing.T) {
	cfg := testConfig()
	cfg.PermanentCamps[30000142] = permanentCampFixture(stargateName)
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	base := clock.Now()
	ev1 := testEvent("c1", 30000142, base,
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev1))

	clock.Advance(6 * time.Minute)
	ev2 := testEvent("c2", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 651, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev2))

	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	assert.Greater(t, snap[0].Probability, 0)
	assert.Contains(t, []models.Classification{models.ClassificationCamp, models.ClassificationRoamingCamp}, snap[0].Classification)
}

// S2: Follow-up pod ratio — a pod kill on a character already killed in
// ship form should not inflate gate_kill_count.
func TestScenario_FollowupPodDoesNotInflateGateKillCount(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	base := clock.Now()
	shipKill := testEvent("s1", 30000142, base,
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(shipKill))

	podKill := testEvent("p1", 30000142, base.Add(30*time.Second),
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: cfg.CapsuleShipID, ShipCategory: models.ShipCategoryCapsule}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(podKill))

	crew := soleCrew(t, reg)
	assert.Equal(t, 1, crew.GateKillCount, "follow-up pod must not add to gate_kill_count")
}

// S3: Crew merge via overlap — two independently-created crews that later
// share an event's attacker set should collapse into one, with kills and
// members unioned.
func TestScenario_CrewMergeOnOverlap(t *testing.T) {
	cfg := testConfig()
	cfg.MatchThreshold = 0.05
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	base := clock.Now()
	ev1 := testEvent("m1", 30000142, base,
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev1))

	// Force a second, independent crew by using a distant system and an
	// unrelated attacker so the matcher won't fold it into crew 1.
	ev2 := testEvent("m2", 30000144, base.Add(3*time.Hour),
		withAttacker(2002, 2002, 3002, 600),
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev2))
	require.Len(t, reg.Snapshot(), 2, "two unrelated crews should remain separate")

	// A third event shares attackers with BOTH existing crews and should
	// trigger a merge.
	ev3 := testEvent("m3", 30000142, base.Add(3*time.Hour+time.Minute),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(2002, 2002, 3002, 600),
		withVictim(models.Victim{CharacterID: 9003, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev3))

	snap := reg.Snapshot()
	require.Len(t, snap, 1, "overlapping crews must merge into one")
	assert.Len(t, snap[0].Kills, 3)
	assert.Contains(t, snap[0].MemberIDs, int64(1001))
	assert.Contains(t, snap[0].MemberIDs, int64(2002))
}

// absorb's member-merge rule (spec.md §4.1 "Merge") sums kill_count across
// donor and primary rather than taking the max, and a character present in
// both crews keeps the status paired with whichever side saw it more
// recently.
func TestAbsorb_MemberMergeSumsKillCountAndPairsStatusWithNewerLastSeen(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)
	base := clock.Now().UnixMilli()

	primary := models.NewCrew("primary", testEvent("p1", 30000142, clock.Now()), base)
	primary.Members[1001] = &models.MemberState{
		CharacterID: 1001, KillCount: 2, Status: models.MemberIdle,
		FirstSeen: base, LastSeen: base,
	}

	donor := models.NewCrew("donor", testEvent("d1", 30000142, clock.Now()), base)
	donorLastSeen := base + int64(time.Minute/time.Millisecond)
	donor.Members[1001] = &models.MemberState{
		CharacterID: 1001, KillCount: 3, Status: models.MemberActive,
		FirstSeen: base, LastSeen: donorLastSeen,
	}

	mergeEv := testEvent("merge1", 30000142, clock.Now().Add(2*time.Minute))
	reg.absorb(primary, donor, mergeEv)

	pm := primary.Members[1001]
	assert.Equal(t, 5, pm.KillCount, "kill_count must sum across the merge, not max")
	assert.Equal(t, donorLastSeen, pm.LastSeen, "last_seen must take the more recent side")
	assert.Equal(t, models.MemberActive, pm.Status, "status must be paired with the newer last_seen, not maxed independently")
}

// absorb re-derives gate_kill_count from the merged, time-sorted kill list
// (spec.md §4.2's effective-kill rule) instead of summing the two crews'
// pre-merge incremental counters: a pod kill that looked like a fresh gate
// kill to the donor crew in isolation can turn out to be a cross-crew
// follow-up pod once the primary's earlier ship kill on the same character
// is visible, and must not be counted twice.
func TestAbsorb_RederivesGateKillCountAcrossMergedHistory(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)
	base := clock.Now()

	shipKill := testEvent("p-ship", 30000142, base,
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
	)
	primary := models.NewCrew("primary", shipKill, base.UnixMilli())
	primary.AppendKill(shipKill)
	primary.StargateName = stargateName

	podKill := testEvent("d-pod", 30000142, base.Add(time.Minute),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: cfg.CapsuleShipID, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	donor := models.NewCrew("donor", podKill, base.UnixMilli())
	donor.AppendKill(podKill)
	// Donor never saw the earlier ship kill on 9001, so in isolation this
	// pod kill looked like a fresh gate kill, not a follow-up.
	donor.GateKillCount = 1

	mergeEv := testEvent("merge1", 30000142, base.Add(2*time.Minute))
	reg.absorb(primary, donor, mergeEv)

	assert.Equal(t, 0, primary.GateKillCount, "the pod kill is a cross-crew follow-up once histories are interleaved, not a fresh gate kill")
	assert.Empty(t, primary.StargateName, "stargate_name must clear once the re-derived gate ratio is violated")
}

// S4: Dissolution — a crew whose active membership collapses relative to
// its historical total should be evicted on tick even before its timeout
// elapses.
func TestScenario_Dissolution(t *testing.T) {
	cfg := testConfig()
	cfg.MemberIdleTimeout = time.Minute
	cfg.MemberDepartedTimeout = 2 * time.Minute
	cfg.CrewMinKillsToSave = 1
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	base := clock.Now()
	ev := testEvent("d1", 30000142, base,
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
		withAttacker(1003, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev))
	require.Len(t, reg.Snapshot(), 1)

	clock.Advance(3 * time.Minute)
	reg.Tick(clock.Now())

	assert.Empty(t, reg.Snapshot(), "crew with 0/3 active members should dissolve")
}

// S5: Probability decay — once the clock runs far enough past the last
// kill, recomputed probability should fall toward zero.
func TestScenario_ProbabilityDecaysOverTime(t *testing.T) {
	cfg := testConfig()
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	base := clock.Now()
	ev1 := testEvent("pd1", 30000142, base,
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev1))
	ev2 := testEvent("pd2", 30000142, base.Add(time.Minute),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 651, ShipCategory: models.ShipCategoryMining}),
		atGate(stargateName),
	)
	require.NoError(t, reg.Ingest(ev2))

	before := soleCrew(t, reg).Probability
	require.Greater(t, before, 0)

	clock.Advance(25 * time.Minute)
	reg.Tick(clock.Now())

	after := soleCrew(t, reg).Probability
	assert.Less(t, after, before, "probability should decay once past decay_start with no new kills")
}

// S6: Solo camp vs solo roam — the same lone pilot classifies as
// solo_camp at a gate with an interdictor present, and solo_roam
// otherwise.
func TestScenario_SoloCampVsSoloRoam(t *testing.T) {
	cfg := testConfig()

	t.Run("solo_camp", func(t *testing.T) {
		clock := NewFixedClock(time.Unix(1700000000, 0))
		reg := NewRegistry(cfg, clock)
		ev := testEvent("sc1", 30000142, clock.Now(),
			withAttacker(1001, 2001, 3001, 22456), // interdictor hull
			withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
			atGate(stargateName),
		)
		require.NoError(t, reg.Ingest(ev))
		assert.Equal(t, models.ClassificationSoloCamp, soleCrew(t, reg).Classification)
	})

	t.Run("solo_roam", func(t *testing.T) {
		clock := NewFixedClock(time.Unix(1700000000, 0))
		reg := NewRegistry(cfg, clock)
		ev := testEvent("sr1", 30000142, clock.Now(),
			withAttacker(1001, 2001, 3001, 600), // plain combat hull, no interdictor
			withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
		)
		require.NoError(t, reg.Ingest(ev))
		assert.Equal(t, models.ClassificationSoloRoam, soleCrew(t, reg).Classification)
	})
}

func TestTick_EvictsExpiredCrew(t *testing.T) {
	cfg := testConfig()
	cfg.RoamTimeout = 5 * time.Minute
	cfg.CrewMinKillsToSave = 100 // ensure no archive emitted for this tiny crew
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("e1", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
	)
	require.NoError(t, reg.Ingest(ev))

	clock.Advance(10 * time.Minute)
	changed := reg.Tick(clock.Now())

	assert.True(t, changed)
	assert.Empty(t, reg.Snapshot())
	assert.Empty(t, reg.DrainArchive(), "below CrewMinKillsToSave, nothing should be archived")
}

func TestDrainArchive_ReturnsAndClearsQueue(t *testing.T) {
	cfg := testConfig()
	cfg.RoamTimeout = 5 * time.Minute
	cfg.CrewMinKillsToSave = 1
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("arc1", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
	)
	require.NoError(t, reg.Ingest(ev))

	clock.Advance(10 * time.Minute)
	reg.Tick(clock.Now())

	archived := reg.DrainArchive()
	require.Len(t, archived, 1)
	assert.Empty(t, reg.DrainArchive(), "second drain should be empty")
}

func TestForceEvict_RemovesLiveCrewAndQueuesArchive(t *testing.T) {
	cfg := testConfig()
	cfg.CrewMinKillsToSave = 1
	clock := NewFixedClock(time.Unix(1700000000, 0))
	reg := NewRegistry(cfg, clock)

	ev := testEvent("fe1", 30000142, clock.Now(),
		withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}),
	)
	require.NoError(t, reg.Ingest(ev))
	require.Len(t, reg.Snapshot(), 1)

	id := reg.Snapshot()[0].ID
	assert.True(t, reg.ForceEvict(id))
	assert.Empty(t, reg.Snapshot())
	assert.Len(t, reg.DrainArchive(), 1)
}

func TestForceEvict_UnknownIDReturnsFalse(t *testing.T) {
	cfg := testConfig()
	reg := NewRegistry(cfg, NewFixedClock(time.Unix(1700000000, 0)))
	assert.False(t, reg.ForceEvict("does-not-exist"))
}

// soleCrew reaches into the registry's internal state (test file, same
// package) to assert on fields snapshot() deliberately doesn't expose,
// such as gate_kill_count.
func soleCrew(t *testing.T, reg *Registry) *models.Crew {
	t.Helper()
	require.Len(t, reg.crews, 1)
	for _, c := range reg.crews {
		return c
	}
	return nil
}

func permanentCampFixture(gateName string) dto.PermanentCamp {
	return dto.PermanentCamp{Gates: []string{gateName}, Weight: 0.30}
}
