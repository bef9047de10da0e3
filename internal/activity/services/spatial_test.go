package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-falcon/internal/activity/models"
)

func TestIsGateKill(t *testing.T) {
	base := time.Unix(1700000000, 0)

	t.Run("at celestial stargate matches", func(t *testing.T) {
		ev := testEvent("g1", 1, base, atGate("Jita IV - Moon 4 - Stargate (Perimeter)"))
		assert.True(t, isGateKill(ev))
	})

	t.Run("non-stargate celestial does not match", func(t *testing.T) {
		ev := testEvent("g2", 1, base)
		ev.Location.AtCelestial = true
		ev.Location.NearestCelestialName = "Jita IV - Moon 4 - Caldari Navy Assembly Plant"
		assert.False(t, isGateKill(ev))
	})

	t.Run("stargate name without triangulation or at_celestial does not match", func(t *testing.T) {
		ev := testEvent("g3", 1, base)
		ev.Location.NearestCelestialName = "Stargate (Jita)"
		ev.Location.Triangulation = models.TriangulationNone
		assert.False(t, isGateKill(ev))
	})

	t.Run("direct warp triangulation matches", func(t *testing.T) {
		ev := testEvent("g4", 1, base)
		ev.Location.NearestCelestialName = "Stargate (Jita)"
		ev.Location.Triangulation = models.TriangulationDirectWarp
		assert.True(t, isGateKill(ev))
	})
}

func TestIsFollowupPod(t *testing.T) {
	base := time.Unix(1700000000, 0)
	capsuleID := int64(670)

	shipKill := testEvent("s1", 1, base,
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 601}),
	)
	otherShipKill := testEvent("s2", 1, base,
		withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 601}),
	)

	t.Run("pod of a previously-killed pilot is a follow-up", func(t *testing.T) {
		pod := testEvent("p1", 1, base,
			withVictim(models.Victim{CharacterID: 9001, ShipTypeID: capsuleID}),
		)
		assert.True(t, isFollowupPod(pod, []models.Event{shipKill}, capsuleID))
	})

	t.Run("pod of an unrelated pilot is orphan", func(t *testing.T) {
		pod := testEvent("p2", 1, base,
			withVictim(models.Victim{CharacterID: 9003, ShipTypeID: capsuleID}),
		)
		assert.False(t, isFollowupPod(pod, []models.Event{shipKill, otherShipKill}, capsuleID))
	})

	t.Run("non-pod victim is never a follow-up", func(t *testing.T) {
		ev := testEvent("s3", 1, base, withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 601}))
		assert.False(t, isFollowupPod(ev, []models.Event{shipKill}, capsuleID))
	})
}

func TestEffectiveKillCount(t *testing.T) {
	capsuleID := int64(670)
	base := time.Unix(1700000000, 0)

	kills := []models.Event{
		testEvent("s1", 1, base, withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 601})),
		testEvent("p1", 1, base.Add(time.Second), withVictim(models.Victim{CharacterID: 9001, ShipTypeID: capsuleID})),
		testEvent("s2", 1, base.Add(2*time.Second), withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 601})),
		testEvent("p2", 1, base.Add(3*time.Second), withVictim(models.Victim{CharacterID: 9003, ShipTypeID: capsuleID})),
	}

	// s1 (ship), p1 (follow-up pod, not counted), s2 (ship), p2 (orphan pod, counted)
	assert.Equal(t, 3, effectiveKillCount(kills, capsuleID))
}

func TestUpdateSpatialState_ClearsStargateNameWhenRatioViolated(t *testing.T) {
	crew := models.NewCrew("c1", testEvent("init", 1, time.Unix(1700000000, 0)), time.Unix(1700000000, 0).UnixMilli())
	capsuleID := int64(670)

	gateEv := testEvent("g1", 1, time.Unix(1700000000, 0), atGate(stargateName),
		withVictim(models.Victim{CharacterID: 9001, ShipTypeID: 601}))
	crew.AppendKill(gateEv)
	updateSpatialState(crew, gateEv, capsuleID)
	require.Equal(t, stargateName, crew.StargateName)
	require.Equal(t, 1, crew.GateKillCount)

	// Two non-gate kills push the effective count up without adding gate
	// kills, which should violate the ratio and clear stargate_name.
	noise1 := testEvent("n1", 1, time.Unix(1700000001, 0), withVictim(models.Victim{CharacterID: 9002, ShipTypeID: 601}))
	crew.AppendKill(noise1)
	updateSpatialState(crew, noise1, capsuleID)

	noise2 := testEvent("n2", 1, time.Unix(1700000002, 0), withVictim(models.Victim{CharacterID: 9003, ShipTypeID: 601}))
	crew.AppendKill(noise2)
	updateSpatialState(crew, noise2, capsuleID)

	assert.Empty(t, crew.StargateName, "gate_kill_count 1 < ceil(3/2)=2 should clear stargate_name")
}
