package dto

import "go-falcon/internal/activity/models"

// SerializedKill is the kill projection exposed in a snapshot (spec.md
// §4.5): only the fields a subscriber needs, never the raw Event.
type SerializedKill struct {
	ID                   string                `bson:"id" json:"id"`
	Value                float64               `bson:"value" json:"value"`
	Labels               []string              `bson:"labels" json:"labels"`
	Time                 int64                 `bson:"time" json:"time"`
	SystemID             int64                 `bson:"system_id" json:"system_id"`
	VictimShipID         int64                 `bson:"victim_ship_id" json:"victim_ship_id"`
	VictimCharID         int64                 `bson:"victim_char_id" json:"victim_char_id"`
	ShipCategory         models.ShipCategory   `bson:"ship_category" json:"ship_category"`
	AtCelestial          bool                  `bson:"at_celestial" json:"at_celestial"`
	NearestCelestialName string                `bson:"nearest_celestial_name,omitempty" json:"nearest_celestial_name,omitempty"`
	Triangulation        models.Triangulation  `bson:"triangulation" json:"triangulation"`
}

// Metrics is the adapter-computed aggregate block (SPEC_FULL.md
// "Supplemented features" #2a), never touched on the Ingest hot path.
type Metrics struct {
	FirstSeenMs           int64         `bson:"first_seen_ms" json:"first_seen_ms"`
	CampDurationMin       int64         `bson:"camp_duration_min" json:"camp_duration_min"`
	ActiveDurationMin     int64         `bson:"active_duration_min" json:"active_duration_min"`
	InactivityDurationMin int64         `bson:"inactivity_duration_min" json:"inactivity_duration_min"`
	PodKills              int           `bson:"pod_kills" json:"pod_kills"`
	KillFrequency         float64       `bson:"kill_frequency" json:"kill_frequency"`
	AvgValuePerKill       float64       `bson:"avg_value_per_kill" json:"avg_value_per_kill"`
	ShipCounts            map[int64]int `bson:"ship_counts" json:"ship_counts"`
	Characters            int           `bson:"characters" json:"characters"`
	Corporations          int           `bson:"corporations" json:"corporations"`
	Alliances             int           `bson:"alliances" json:"alliances"`
}

// SerializedCrew is the stable, read-only projection produced by
// Registry.Snapshot / Registry.DrainArchive (spec.md §4.5).
type SerializedCrew struct {
	ID             string                 `bson:"id" json:"id"`
	Classification models.Classification  `bson:"classification" json:"classification"`
	Probability    int                    `bson:"probability" json:"probability"`
	MaxProbability int                    `bson:"max_probability" json:"max_probability"`

	FirstSystemID     int64  `bson:"first_system_id" json:"first_system_id"`
	CurrentSystemID   int64  `bson:"current_system_id" json:"current_system_id"`
	CurrentSystemName string `bson:"current_system_name" json:"current_system_name"`
	CurrentRegion     string `bson:"current_region" json:"current_region"`
	StargateName      string `bson:"stargate_name,omitempty" json:"stargate_name,omitempty"`

	VisitedSystemIDs []int64               `bson:"visited_system_ids" json:"visited_system_ids"`
	SystemsVisited   []models.SystemVisit  `bson:"systems_visited" json:"systems_visited"`

	Kills []SerializedKill `bson:"kills" json:"kills"`

	MemberIDs        []int64 `bson:"member_ids" json:"member_ids"`
	AnchorCorpID     int64   `bson:"anchor_corp_id" json:"anchor_corp_id"`
	AnchorAllianceID int64   `bson:"anchor_alliance_id" json:"anchor_alliance_id"`
	ActiveCount      int     `bson:"active_count" json:"active_count"`
	IdleCount        int     `bson:"idle_count" json:"idle_count"`
	DepartedCount    int     `bson:"departed_count" json:"departed_count"`

	NumCorps     int `bson:"num_corps" json:"num_corps"`
	NumAlliances int `bson:"num_alliances" json:"num_alliances"`

	PerMemberShips map[int64][]int64 `bson:"per_member_ships" json:"per_member_ships"`

	Transitions           []models.Transition          `bson:"transitions" json:"transitions"`
	ClassificationHistory []models.ClassificationPoint `bson:"classification_history" json:"classification_history"`

	CreatedAt      int64 `bson:"created_at" json:"created_at"`
	LastKillAt     int64 `bson:"last_kill_at" json:"last_kill_at"`
	LastActivityAt int64 `bson:"last_activity_at" json:"last_activity_at"`

	PrevSessionID string `bson:"prev_session_id,omitempty" json:"prev_session_id,omitempty"`

	Metrics Metrics `bson:"metrics" json:"metrics"`
}
