package models

import (
	"time"

	"github.com/gorilla/websocket"
)

// Client is one subscriber connected to the snapshot feed. Unlike
// internal/websocket's Connection, a Client carries no user/character
// identity: the snapshot feed is read-only and unauthenticated, gated only
// by network exposure (spec.md's Non-goals exclude subscriber auth).
type Client struct {
	ID        string
	Conn      *websocket.Conn
	Send      chan []byte
	CreatedAt time.Time
}
