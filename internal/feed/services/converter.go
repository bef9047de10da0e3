package services

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go-falcon/internal/activity/models"
	"go-falcon/internal/feed/dto"
)

// SystemCatalog resolves a solar system id to its display name and region,
// the catalog-metadata half of spec.md's "enriches each event with catalog
// metadata and spatial context" (§1). Backed by the teacher's internal/sde
// module in the full application.
type SystemCatalog interface {
	SystemName(systemID int64) string
	RegionName(systemID int64) string
}

// Converter turns a raw RedisQ package into the engine's models.Event,
// performing the enrichment original_source's server.py does inline in
// process_killmail: ship categorization and spatial pinpointing.
type Converter struct {
	catalog   ShipCatalog
	systems   SystemCatalog
	locator   CelestialProvider
}

// NewConverter builds a Converter. systems/locator may be nil, in which case
// system names are left blank and every event resolves to
// TriangulationNone — a degraded-but-safe enrichment rather than a failure.
func NewConverter(catalog ShipCatalog, systems SystemCatalog, locator CelestialProvider) *Converter {
	return &Converter{catalog: catalog, systems: systems, locator: locator}
}

// Convert decodes and enriches one RedisQ package into a models.Event.
func (c *Converter) Convert(pkg *dto.RedisQPackage) (models.Event, error) {
	var km dto.ESIKillmail
	if err := json.Unmarshal(pkg.Killmail, &km); err != nil {
		return models.Event{}, fmt.Errorf("decode killmail %d: %w", pkg.KillID, err)
	}

	ev := models.Event{
		EventID:   strconv.FormatInt(pkg.KillID, 10),
		EventTime: km.KillmailTime,
		SystemID:  km.SolarSystemID,
		Value:     pkg.ZKB.TotalValue,
		Labels:    map[string]struct{}{},
	}

	if c.systems != nil {
		ev.SystemName = c.systems.SystemName(km.SolarSystemID)
		ev.RegionName = c.systems.RegionName(km.SolarSystemID)
	}

	ev.Victim = models.Victim{
		CharacterID:   km.Victim.CharacterID,
		CorporationID: km.Victim.CorporationID,
		AllianceID:    km.Victim.AllianceID,
		ShipTypeID:    km.Victim.ShipTypeID,
		ShipCategory:  c.catalog.Category(km.Victim.ShipTypeID),
	}

	ev.Attackers = make([]models.Attacker, 0, len(km.Attackers))
	for _, a := range km.Attackers {
		ev.Attackers = append(ev.Attackers, models.Attacker{
			CharacterID:   a.CharacterID,
			CorporationID: a.CorporationID,
			AllianceID:    a.AllianceID,
			FactionID:     a.FactionID,
			ShipTypeID:    a.ShipTypeID,
			WeaponTypeID:  a.WeaponTypeID,
		})
	}

	if pkg.ZKB.NPC {
		ev.Labels["npc"] = struct{}{}
	}
	if pkg.ZKB.Awox {
		ev.Labels["awox"] = struct{}{}
	}
	if pkg.ZKB.Solo {
		ev.Labels["solo"] = struct{}{}
	}

	ev.Location = locatePinpoint(c.locator, km.SolarSystemID, km.Victim.Position)

	return ev, nil
}
