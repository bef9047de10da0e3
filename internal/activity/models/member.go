package models

// MemberStatus tracks how recently a character has been seen in a crew.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberIdle     MemberStatus = "idle"
	MemberDeparted MemberStatus = "departed"
)

// MemberState is a single tracked character within a Crew.
type MemberState struct {
	CharacterID  int64
	CorpID       int64
	AllianceID   int64
	ShipTypeIDs  map[int64]struct{}
	FirstSeen    int64 // unix millis
	LastSeen     int64 // unix millis
	KillCount    int
	Status       MemberStatus
}

func NewMemberState(charID, corpID, allianceID, shipTypeID int64, seenAt int64) *MemberState {
	m := &MemberState{
		CharacterID: charID,
		CorpID:      corpID,
		AllianceID:  allianceID,
		ShipTypeIDs: make(map[int64]struct{}),
		FirstSeen:   seenAt,
		LastSeen:    seenAt,
		KillCount:   1,
		Status:      MemberActive,
	}
	if shipTypeID != 0 {
		m.ShipTypeIDs[shipTypeID] = struct{}{}
	}
	return m
}
