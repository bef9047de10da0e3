package dto

// GetCrewInput is the path-parameter input for fetching a single live crew.
type GetCrewInput struct {
	CrewID string `path:"crew_id" doc:"Crew identifier"`
}
