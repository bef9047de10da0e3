package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-falcon/internal/gateway/models"
)

// Hub fans snapshot broadcasts out to every connected client, grounded on
// internal/websocket/services.ConnectionManager's add/remove/broadcast shape
// but stripped of rooms and per-user addressing: every client subscribes to
// the same stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*models.Client

	register   chan *models.Client
	unregister chan *models.Client
	broadcast  chan []byte

	totalConnections int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*models.Client),
		register:   make(chan *models.Client),
		unregister: make(chan *models.Client),
		broadcast:  make(chan []byte, 256),
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case payload := <-h.broadcast:
			h.sendAll(payload)
		}
	}
}

func (h *Hub) addClient(c *models.Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.totalConnections++
	h.mu.Unlock()
	slog.Info("gateway client connected", "client_id", c.ID, "total", len(h.clients))
}

func (h *Hub) removeClient(c *models.Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
	h.mu.Unlock()
	slog.Info("gateway client disconnected", "client_id", c.ID, "total", len(h.clients))
}

func (h *Hub) sendAll(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.Send <- payload:
		default:
			slog.Warn("gateway client send buffer full, dropping", "client_id", c.ID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Broadcast enqueues payload for delivery to every connected client. It never
// blocks the caller: a full broadcast channel drops the update, matching the
// engine's at-most-once snapshot delivery contract.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		slog.Warn("gateway broadcast channel full, dropping snapshot")
	}
}

// Register adds a new client to the hub and starts its read/write pumps.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &models.Client{
		ID:        uuid.New().String(),
		Conn:      conn,
		Send:      make(chan []byte, 32),
		CreatedAt: time.Now(),
	}
	h.register <- client
	go h.writePump(client)
	go h.readPump(client)
}

// readPump drains and discards client frames (control frames keep pong
// handling alive); the feed is one-way, so application messages are ignored.
func (h *Hub) readPump(c *models.Client) {
	defer func() {
		h.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *models.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount reports the number of currently connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
