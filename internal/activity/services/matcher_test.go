package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-falcon/internal/activity/models"
)

func newTestCrewWithMember(t *testing.T, systemID, charID, corpID, allianceID int64, lastKillAt time.Time) *models.Crew {
	t.Helper()
	ev := testEvent("seed", systemID, lastKillAt, withAttacker(charID, corpID, allianceID, 600))
	crew := models.NewCrew("seed-crew", ev, lastKillAt.UnixMilli())
	crew.AppendKill(ev)
	crew.Members[charID] = models.NewMemberState(charID, corpID, allianceID, 600, lastKillAt.UnixMilli())
	crew.AnchorCorpID = corpID
	crew.AnchorAllianceID = allianceID
	crew.AnchorCorpIDs = map[int64]struct{}{corpID: {}}
	return crew
}

func TestScoreCrew_CharacterOverlapDominates(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)
	crew := newTestCrewWithMember(t, 1, 1001, 2001, 3001, now)

	ev := testEvent("e1", 1, now.Add(time.Minute), withAttacker(1001, 2001, 3001, 600))
	score := scoreCrew(crew, ev, cfg, ev.EventTime)
	assert.Greater(t, score, cfg.MatchThreshold)
}

func TestScoreCrew_NoOverlapNoAnchorDifferentSystemOldKill(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)
	crew := newTestCrewWithMember(t, 1, 1001, 2001, 3001, now)

	ev := testEvent("e1", 2, now.Add(3*time.Hour), withAttacker(9999, 8888, 7777, 600))
	score := scoreCrew(crew, ev, cfg, ev.EventTime)
	assert.Less(t, score, cfg.MatchThreshold)
}

func TestFindMatches_FiltersByThresholdAndSortsDescending(t *testing.T) {
	cfg := testConfig()
	now := time.Unix(1700000000, 0)

	strong := newTestCrewWithMember(t, 1, 1001, 2001, 3001, now)
	weak := newTestCrewWithMember(t, 99, 5555, 6666, 7777, now.Add(-3*time.Hour))

	crews := map[string]*models.Crew{strong.ID: strong, weak.ID: weak}
	ev := testEvent("e1", 1, now.Add(time.Minute), withAttacker(1001, 2001, 3001, 600))

	matches := findMatches(crews, ev, cfg, ev.EventTime)
	require.Len(t, matches, 1)
	assert.Equal(t, strong.ID, matches[0].crew.ID)
}

func TestIntersectCount(t *testing.T) {
	a := map[int64]struct{}{1: {}, 2: {}, 3: {}}
	b := map[int64]struct{}{2: {}, 3: {}, 4: {}}
	assert.Equal(t, 2, intersectCount(a, b))
	assert.Equal(t, 0, intersectCount(a, map[int64]struct{}{}))
}
