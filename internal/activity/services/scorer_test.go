package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-falcon/internal/activity/models"
)

func TestComputeProbability_ZeroWithoutStargateName(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)
	crew := models.NewCrew("c1", testEvent("e1", 1, now), now.UnixMilli())
	assert.Equal(t, 0, computeProbability(crew, cfg, now))
}

func TestComputeProbability_BurstPenaltyReducesScore(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)

	ev1 := testEvent("e1", 1, now, atGate(stargateName), withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 650, ShipCategory: models.ShipCategoryIndustrial}))
	crew := models.NewCrew("c1", ev1, now.UnixMilli())
	crew.AppendKill(ev1)
	updateSpatialState(crew, ev1, cfg.CapsuleShipID)

	ev2 := testEvent("e2", 1, now.Add(time.Minute), atGate(stargateName), withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 651, ShipCategory: models.ShipCategoryMining}))
	crew.AppendKill(ev2)
	updateSpatialState(crew, ev2, cfg.CapsuleShipID)
	crew.LastKillAt = ev2.EventTime.UnixMilli()

	burstScore := computeProbability(crew, cfg, ev2.EventTime)

	// Re-run with the second kill spaced far enough apart that no burst
	// penalty applies; score should be >= the bursty version.
	crew2 := models.NewCrew("c2", ev1, now.UnixMilli())
	crew2.AppendKill(ev1)
	updateSpatialState(crew2, ev1, cfg.CapsuleShipID)
	ev3 := testEvent("e3", 1, now.Add(10*time.Minute), atGate(stargateName), withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 651, ShipCategory: models.ShipCategoryMining}))
	crew2.AppendKill(ev3)
	updateSpatialState(crew2, ev3, cfg.CapsuleShipID)
	crew2.LastKillAt = ev3.EventTime.UnixMilli()

	spacedScore := computeProbability(crew2, cfg, ev3.EventTime)

	assert.GreaterOrEqual(t, spacedScore, burstScore)
}

func TestThreatShipsDelta_CapsAtHalf(t *testing.T) {
	cfg := testConfig()
	cfg.ThreatShips = map[int64]float64{100: 0.40, 200: 0.40}
	now := time.Unix(1700000000, 0)

	ev := testEvent("e1", 1, now, atGate(stargateName),
		withAttacker(1001, 2001, 3001, 100),
		withAttacker(1002, 2001, 3001, 200),
	)
	delta := threatShipsDelta([]models.Event{ev}, cfg)
	assert.Equal(t, 0.50, delta)
}

func TestSmartbombDelta_RequiresHasSmartbombsFlag(t *testing.T) {
	cfg := testConfig()
	cfg.SmartbombShips = map[int64]struct{}{300: {}}
	now := time.Unix(1700000000, 0)
	crew := models.NewCrew("c1", testEvent("e0", 1, now), now.UnixMilli())

	assert.Equal(t, 0.0, smartbombDelta(crew, 1, cfg))

	crew.HasSmartbombs = true
	crew.Kills = append(crew.Kills, testEvent("e1", 1, now, withAttacker(1001, 2001, 3001, 300)))
	assert.Equal(t, 0.16+0.15, smartbombDelta(crew, 1, cfg))
	assert.InDelta(t, 0.16+0.30, smartbombDelta(crew, 2, cfg), 1e-9)
}

func TestVulnerableVictimsDelta(t *testing.T) {
	now := time.Unix(1700000000, 0)
	none := []models.Event{testEvent("e1", 1, now, withVictim(models.Victim{ShipCategory: models.ShipCategoryCombat}))}
	assert.Equal(t, 0.0, vulnerableVictimsDelta(none))

	one := []models.Event{testEvent("e1", 1, now, withVictim(models.Victim{ShipCategory: models.ShipCategoryIndustrial}))}
	assert.Equal(t, 0.20, vulnerableVictimsDelta(one))

	two := []models.Event{
		testEvent("e1", 1, now, withVictim(models.Victim{ShipCategory: models.ShipCategoryIndustrial})),
		testEvent("e2", 1, now, withVictim(models.Victim{ShipCategory: models.ShipCategoryMining})),
	}
	assert.Equal(t, 0.40, vulnerableVictimsDelta(two))
}

func TestFilterRelevantKills_DropsAwoxAndStructures(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)

	good := testEvent("e1", 1, now, atGate(stargateName), withAttacker(1001, 2001, 3001, 600))
	awox := testEvent("e2", 1, now, atGate(stargateName), withAttacker(1001, 2001, 3001, 600))
	awox.Labels = map[string]struct{}{"awox": {}}
	structure := testEvent("e3", 1, now, atGate(stargateName), withAttacker(1001, 2001, 3001, 600),
		withVictim(models.Victim{ShipCategory: models.ShipCategoryStructure}))
	nonGate := testEvent("e4", 1, now, withAttacker(1001, 2001, 3001, 600))

	out := filterRelevantKills([]models.Event{good, awox, structure, nonGate}, cfg)
	assert := assert.New(t)
	assert.Len(out, 1)
	assert.Equal("e1", out[0].EventID)
}
