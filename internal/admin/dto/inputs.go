package dto

// AuthenticatedInput carries the two header shapes the teacher's Casbin
// middleware accepts (bearer token or cookie), grounded on the scheduler
// module's SchedulerStatusInput field pair.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
}

// EvictCrewInput names the crew to force-evict.
type EvictCrewInput struct {
	AuthenticatedInput
	CrewID string `path:"crew_id"`
}

// ReloadConfigInput has no body; the reload reads the on-disk domain tables
// path the module was started with.
type ReloadConfigInput struct {
	AuthenticatedInput
}
