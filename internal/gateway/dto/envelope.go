package dto

import activityDto "go-falcon/internal/activity/dto"

// SnapshotEnvelope is the wire message pushed to websocket subscribers and
// relayed through Redis (spec.md §4.5's snapshot() pull contract, adapted
// into the one concrete push adapter the module carries). ServerID lets a
// RedisBridge recognize and skip its own publishes.
type SnapshotEnvelope struct {
	ServerID string                      `json:"server_id"`
	SentAtMs int64                       `json:"sent_at_ms"`
	Crews    []activityDto.SerializedCrew `json:"crews"`
}
