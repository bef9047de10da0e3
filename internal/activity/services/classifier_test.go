package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-falcon/internal/activity/models"
)

func TestDeriveClassification_ActivityWhenNothingElseApplies(t *testing.T) {
	cfg := testConfig()
	crew := models.NewCrew("c1", testEvent("e1", 1, time.Unix(1700000000, 0),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
	), time.Unix(1700000000, 0).UnixMilli())
	crew.Members[1001] = models.NewMemberState(1001, 2001, 3001, 600, crew.CreatedAt)
	crew.Members[1002] = models.NewMemberState(1002, 2001, 3001, 600, crew.CreatedAt)

	got := deriveClassification(crew, cfg)
	assert.Equal(t, models.ClassificationActivity, got)
}

func TestDeriveClassification_Battle(t *testing.T) {
	cfg := testConfig()
	cfg.BattleThreshold = 3
	crew := models.NewCrew("c1", testEvent("e1", 1, time.Unix(1700000000, 0)), time.Unix(1700000000, 0).UnixMilli())
	for i := int64(1); i <= 3; i++ {
		crew.Members[i] = models.NewMemberState(i, 2001, 3001, 600, crew.CreatedAt)
	}

	assert.Equal(t, models.ClassificationBattle, deriveClassification(crew, cfg))
}

func TestDeriveClassification_SoloCampRequiresInterdictorAndGate(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)
	ev := testEvent("e1", 1, now, atGate(stargateName), withAttacker(1001, 2001, 3001, 22456))
	crew := models.NewCrew("c1", ev, now.UnixMilli())
	crew.AppendKill(ev)
	crew.Members[1001] = models.NewMemberState(1001, 2001, 3001, 22456, crew.CreatedAt)
	crew.StargateName = stargateName

	assert.Equal(t, models.ClassificationSoloCamp, deriveClassification(crew, cfg))

	// Without an interdictor hull, the same solo history at a gate falls
	// back to solo_roam.
	crew.Members[1001].ShipTypeIDs = map[int64]struct{}{600: {}}
	assert.Equal(t, models.ClassificationSoloRoam, deriveClassification(crew, cfg))
}

func TestDeriveClassification_CampRequiresGateAndProbability(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)
	ev := testEvent("e1", 1, now, atGate(stargateName),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
	)
	crew := models.NewCrew("c1", ev, now.UnixMilli())
	crew.AppendKill(ev)
	crew.Members[1001] = models.NewMemberState(1001, 2001, 3001, 600, crew.CreatedAt)
	crew.Members[1002] = models.NewMemberState(1002, 2001, 3001, 600, crew.CreatedAt)
	crew.StargateName = stargateName
	crew.Probability = 10

	assert.Equal(t, models.ClassificationCamp, deriveClassification(crew, cfg))

	crew.Probability = 0
	assert.Equal(t, models.ClassificationActivity, deriveClassification(crew, cfg))
}

func TestIsStationaryRecent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	crew := models.NewCrew("c1", testEvent("e0", 1, now), now.UnixMilli())
	assert.True(t, isStationaryRecent(crew), "empty history is vacuously stationary")

	for i := 0; i < 6; i++ {
		systemID := int64(1)
		if i == 5 {
			systemID = 2 // the 6th (newest) kill moves systems, inside the last-5 window
		}
		crew.AppendKill(testEvent(string(rune('a'+i)), systemID, now.Add(time.Duration(i)*time.Minute)))
	}
	assert.False(t, isStationaryRecent(crew), "a system change within the last 5 kills breaks stationarity")
}

func TestAllSoloKills(t *testing.T) {
	now := time.Unix(1700000000, 0)
	capsuleID := int64(670)
	crew := models.NewCrew("c1", testEvent("e0", 1, now), now.UnixMilli())
	assert.False(t, allSoloKills(crew, capsuleID), "no kills means not solo")

	crew.AppendKill(testEvent("e1", 1, now, withAttacker(1001, 2001, 3001, 600)))
	assert.True(t, allSoloKills(crew, capsuleID))

	crew.AppendKill(testEvent("e2", 1, now.Add(time.Minute),
		withAttacker(1001, 2001, 3001, 600),
		withAttacker(1002, 2001, 3001, 600),
	))
	assert.False(t, allSoloKills(crew, capsuleID))
}
