package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-falcon/internal/activity/models"
)

func TestStaticShipCatalog_KnownAndUnknownTypes(t *testing.T) {
	catalog := NewStaticShipCatalog(map[int64]string{
		601: "combat",
		602: "industrial",
		670: "capsule",
	})

	assert.Equal(t, models.ShipCategoryIndustrial, catalog.Category(602))
	assert.Equal(t, models.ShipCategoryCapsule, catalog.Category(670))
	assert.Equal(t, models.ShipCategoryCombat, catalog.Category(999999), "unknown hulls default to combat")
}
