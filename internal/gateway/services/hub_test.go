package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-falcon/internal/gateway/models"
)

func TestHub_BroadcastWithNoClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Broadcast with no clients registered should never panic or block.
	hub.Broadcast([]byte(`{"crews":[]}`))
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &models.Client{ID: "c1", Send: make(chan []byte, 4)}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())
}
