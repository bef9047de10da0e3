package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	activityDto "go-falcon/internal/activity/dto"
	"go-falcon/internal/gateway/dto"
)

// SnapshotChannel is the Redis pub/sub channel snapshots are relayed on,
// grounded on internal/websocket/services.RedisHub's WebSocket* channel
// constants but scoped to this module's one message kind.
const SnapshotChannel = "campwatch:snapshots"

// RedisBridge publishes locally-produced snapshots to Redis and relays
// snapshots published by other instances into the local Hub, so every
// campwatch replica's websocket subscribers see the same stream regardless
// of which instance ran the tick (grounded on RedisHub's Start/listen/
// handleRedisMessage loop).
type RedisBridge struct {
	client   *redis.Client
	hub      *Hub
	serverID string
	pubsub   *redis.PubSub
}

func NewRedisBridge(client *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{
		client:   client,
		hub:      hub,
		serverID: uuid.New().String(),
	}
}

// Start subscribes to SnapshotChannel and relays foreign messages into hub.
func (b *RedisBridge) Start(ctx context.Context) {
	b.pubsub = b.client.Subscribe(ctx, SnapshotChannel)
	slog.Info("gateway redis bridge started", "server_id", b.serverID, "channel", SnapshotChannel)
	go b.listen(ctx)
}

func (b *RedisBridge) Stop() error {
	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}

func (b *RedisBridge) listen(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(msg)
		}
	}
}

func (b *RedisBridge) handleMessage(msg *redis.Message) {
	var env dto.SnapshotEnvelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		slog.Error("gateway failed to unmarshal snapshot envelope", "error", err)
		return
	}
	if env.ServerID == b.serverID {
		return
	}
	b.hub.Broadcast([]byte(msg.Payload))
}

// Publish marshals crews into an envelope, broadcasts them to this
// instance's local clients directly, and relays the same payload through
// Redis so other instances' subscribers stay in sync.
func (b *RedisBridge) Publish(ctx context.Context, crews []activityDto.SerializedCrew, sentAtMs int64) error {
	env := dto.SnapshotEnvelope{ServerID: b.serverID, SentAtMs: sentAtMs, Crews: crews}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal snapshot envelope: %w", err)
	}

	b.hub.Broadcast(payload)

	if err := b.client.Publish(ctx, SnapshotChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot to redis: %w", err)
	}
	return nil
}
