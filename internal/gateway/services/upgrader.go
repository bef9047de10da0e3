package services

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleUpgrade upgrades an HTTP request to a websocket connection and
// registers it with the hub, grounded on internal/websocket/middleware's
// auth.go upgrader configuration but without the auth handshake: the
// snapshot feed is read-only and unauthenticated.
func HandleUpgrade(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("gateway websocket upgrade failed", "error", err)
			return
		}
		hub.Register(conn)
	}
}
