package services

import (
	"math"

	"go-falcon/internal/activity/models"
	"go-falcon/internal/feed/dto"
)

// Distance thresholds for nearest-celestial triangulation, in meters —
// ported verbatim from original_source/backend/server.py's THRESHOLDS.
const (
	thresholdAtCelestial  = 10_000.0
	thresholdDirectWarp   = 150_000.0
	thresholdNearCelestial = 1_000_000_000.0
)

// CelestialProvider supplies the celestial objects (planets, moons,
// stations, stargates) in a solar system, keyed for distance lookups.
// original_source builds this from a startup SDE/map cache; callers here are
// expected to back it with the teacher's internal/sde module or an
// equivalent static snapshot.
type CelestialProvider interface {
	Celestials(systemID int64) []dto.Celestial
}

func distance(a, b dto.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// locatePinpoint finds the nearest celestial to killPos and derives a
// Location from the distance-threshold bands. This reproduces the common
// case of calculate_pinpoints; the tetrahedron-interpolation fallback for
// kills far from any celestial is left out as a deliberate simplification —
// those kills simply resolve to TriangulationNone, which the engine already
// treats as "no gate-kill signal" (spec.md §4.2).
func locatePinpoint(provider CelestialProvider, systemID int64, killPos *dto.Position) models.Location {
	if provider == nil || killPos == nil {
		return models.Location{Triangulation: models.TriangulationNone}
	}

	celestials := provider.Celestials(systemID)
	var nearest *dto.Celestial
	minDist := math.Inf(1)
	for i := range celestials {
		c := celestials[i]
		d := distance(c.Position, *killPos)
		if d < minDist {
			minDist = d
			nearest = &celestials[i]
		}
	}
	if nearest == nil {
		return models.Location{Triangulation: models.TriangulationNone}
	}

	switch {
	case minDist <= thresholdAtCelestial:
		return models.Location{
			AtCelestial:          true,
			NearestCelestialName: nearest.Name,
			Triangulation:        models.TriangulationAtCelestial,
		}
	case minDist <= thresholdDirectWarp:
		return models.Location{
			NearestCelestialName: nearest.Name,
			Triangulation:        models.TriangulationDirectWarp,
		}
	case minDist <= thresholdNearCelestial:
		return models.Location{
			NearestCelestialName: nearest.Name,
			Triangulation:        models.TriangulationNearCelestial,
		}
	default:
		return models.Location{Triangulation: models.TriangulationNone}
	}
}
