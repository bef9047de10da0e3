package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-falcon/internal/gateway/dto"
	"go-falcon/internal/gateway/models"
)

func TestRedisBridge_IgnoresOwnMessages(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	bridge := &RedisBridge{hub: hub, serverID: "self"}

	client := &models.Client{ID: "c1", Send: make(chan []byte, 4)}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	own, err := json.Marshal(dto.SnapshotEnvelope{ServerID: "self"})
	require.NoError(t, err)
	bridge.handleMessage(&redis.Message{Payload: string(own)})

	select {
	case <-client.Send:
		t.Fatal("own message should not be relayed to local clients")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRedisBridge_RelaysForeignMessages(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	bridge := &RedisBridge{hub: hub, serverID: "self"}

	client := &models.Client{ID: "c1", Send: make(chan []byte, 4)}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	foreign, err := json.Marshal(dto.SnapshotEnvelope{ServerID: "other"})
	require.NoError(t, err)
	bridge.handleMessage(&redis.Message{Payload: string(foreign)})

	select {
	case payload := <-client.Send:
		assert.Contains(t, string(payload), "other")
	case <-time.After(50 * time.Millisecond):
		t.Fatal("expected foreign message to be relayed")
	}
}
