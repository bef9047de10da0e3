package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-falcon/internal/activity/models"
	"go-falcon/internal/feed/dto"
)

type fakeSystemCatalog struct{}

func (fakeSystemCatalog) SystemName(systemID int64) string { return "Jita" }
func (fakeSystemCatalog) RegionName(systemID int64) string { return "The Forge" }

func buildPackage(t *testing.T, killID int64, victimShipType int64, attackerCount int) *dto.RedisQPackage {
	t.Helper()
	km := dto.ESIKillmail{
		KillmailID:    killID,
		KillmailTime:  time.Unix(1700000000, 0).UTC(),
		SolarSystemID: 30000142,
		Victim: dto.ESIVictim{
			CharacterID:   9001,
			CorporationID: 2001,
			ShipTypeID:    victimShipType,
			Position:      &dto.Position{X: 0, Y: 0, Z: 0},
		},
	}
	for i := 0; i < attackerCount; i++ {
		km.Attackers = append(km.Attackers, dto.ESIAttacker{
			CharacterID:   int64(1000 + i),
			CorporationID: 3001,
			ShipTypeID:    600,
		})
	}
	raw, err := json.Marshal(km)
	require.NoError(t, err)
	return &dto.RedisQPackage{
		KillID:   killID,
		Killmail: raw,
		ZKB:      dto.ZKBData{TotalValue: 12345.67},
	}
}

func TestConverter_ConvertsPackageToEvent(t *testing.T) {
	catalog := NewStaticShipCatalog(map[int64]string{601: "combat"})
	converter := NewConverter(catalog, fakeSystemCatalog{}, nil)

	pkg := buildPackage(t, 123456, 601, 2)
	ev, err := converter.Convert(pkg)
	require.NoError(t, err)

	require.Equal(t, "123456", ev.EventID)
	require.Equal(t, int64(30000142), ev.SystemID)
	require.Equal(t, "Jita", ev.SystemName)
	require.Equal(t, "The Forge", ev.RegionName)
	require.Equal(t, models.ShipCategoryCombat, ev.Victim.ShipCategory)
	require.Len(t, ev.Attackers, 2)
	require.Equal(t, 12345.67, ev.Value)
	require.Equal(t, models.TriangulationNone, ev.Location.Triangulation, "nil locator degrades to no triangulation")
}

func TestConverter_AwoxAndNPCLabels(t *testing.T) {
	catalog := NewStaticShipCatalog(nil)
	converter := NewConverter(catalog, nil, nil)

	pkg := buildPackage(t, 1, 601, 1)
	pkg.ZKB.Awox = true
	pkg.ZKB.NPC = true

	ev, err := converter.Convert(pkg)
	require.NoError(t, err)
	require.True(t, ev.HasLabel("awox"))
	require.True(t, ev.HasLabel("npc"))
	require.False(t, ev.HasLabel("solo"))
}
