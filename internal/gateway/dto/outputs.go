package dto

// StatusOutput wraps StatusResponse in Huma's Body convention.
type StatusOutput struct {
	Body StatusResponse
}

// StatusResponse reports this instance's local subscriber count.
type StatusResponse struct {
	ConnectedClients int    `json:"connected_clients"`
	WebsocketPath    string `json:"websocket_path"`
}
