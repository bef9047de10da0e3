package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-falcon/internal/activity/models"
	"go-falcon/internal/feed/dto"
)

type fakeCelestialProvider struct {
	bySystem map[int64][]dto.Celestial
}

func (f fakeCelestialProvider) Celestials(systemID int64) []dto.Celestial {
	return f.bySystem[systemID]
}

func TestLocatePinpoint_DistanceThresholds(t *testing.T) {
	provider := fakeCelestialProvider{bySystem: map[int64][]dto.Celestial{
		1: {
			{ItemID: 1, Name: "Jita IV - Moon 4 - Stargate (Perimeter)", Position: dto.Position{X: 0, Y: 0, Z: 0}},
		},
	}}

	t.Run("within at_celestial threshold", func(t *testing.T) {
		pos := &dto.Position{X: 1000, Y: 0, Z: 0}
		loc := locatePinpoint(provider, 1, pos)
		assert.True(t, loc.AtCelestial)
		assert.Equal(t, models.TriangulationAtCelestial, loc.Triangulation)
	})

	t.Run("within direct_warp threshold", func(t *testing.T) {
		pos := &dto.Position{X: 100000, Y: 0, Z: 0}
		loc := locatePinpoint(provider, 1, pos)
		assert.False(t, loc.AtCelestial)
		assert.Equal(t, models.TriangulationDirectWarp, loc.Triangulation)
	})

	t.Run("within near_celestial threshold", func(t *testing.T) {
		pos := &dto.Position{X: 500000, Y: 0, Z: 0}
		loc := locatePinpoint(provider, 1, pos)
		assert.Equal(t, models.TriangulationNearCelestial, loc.Triangulation)
	})

	t.Run("no celestials in system falls back to none", func(t *testing.T) {
		pos := &dto.Position{X: 0, Y: 0, Z: 0}
		loc := locatePinpoint(provider, 2, pos)
		assert.Equal(t, models.TriangulationNone, loc.Triangulation)
	})

	t.Run("nil position falls back to none", func(t *testing.T) {
		loc := locatePinpoint(provider, 1, nil)
		assert.Equal(t, models.TriangulationNone, loc.Triangulation)
	})
}
