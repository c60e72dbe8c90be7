package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	cacheport "go-roomcast/internal/infrastructure/cache/port"
	chat "go-roomcast/internal/pkg/chat/domain"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

const onlineUsersCacheKey = "online:users"

func onlineRoomCacheKey(roomID string) string {
	return "online:room:" + roomID
}

// PresenceCoordinator drives the per-connection lifecycle: connect, room
// join/leave, disconnect. It keeps the durable online flags and the in-memory
// hub state consistent, preferring availability: a failed Store write degrades
// to a logged warning instead of dropping the connection.
type PresenceCoordinator struct {
	hub          Hub
	store        repository.Store
	cache        cacheport.Cache
	log          *slog.Logger
	storeTimeout time.Duration
}

// NewPresenceCoordinator wires the coordinator. cache may be nil when no
// presence cache is deployed.
func NewPresenceCoordinator(hub Hub, store repository.Store, cache cacheport.Cache, log *slog.Logger, storeTimeout time.Duration) *PresenceCoordinator {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &PresenceCoordinator{
		hub:          hub,
		store:        store,
		cache:        cache,
		log:          log,
		storeTimeout: storeTimeout,
	}
}

// Connect marks the already-registered connection's user online and sends the
// private connection_success acknowledgement to that connection only.
func (p *PresenceCoordinator) Connect(ctx context.Context, connID string) error {
	identity, err := p.hub.Lookup(connID)
	if err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	if err := p.store.SetUserOnline(sctx, identity.UserID, true); err != nil {
		// Online status is best-effort; the connection stays accepted.
		p.log.Warn("mark user online failed", "username", identity.Username, "error", err)
	}
	// No live subscriptions yet, so only the global projection is touched;
	// per-room keys refresh on join or expire at the TTL.
	p.invalidateOnlineCache(ctx, nil)

	payload, err := json.Marshal(connectionSuccessPayload{
		Type:        EventConnectionSuccess,
		UserID:      identity.UserID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AvatarColor: identity.AvatarColor,
	})
	if err == nil {
		p.hub.ToConnection(connID, payload)
	}
	return nil
}

// JoinRoom subscribes the connection to the room's broadcasts, records the
// durable membership, persists the join system message, and only then
// announces user_joined to all current members, the joiner included. A client
// that fetches history right after the notification always finds the record.
//
// Re-joining a room the connection already subscribes to re-emits the system
// message and the notification; the subscription itself stays idempotent.
func (p *PresenceCoordinator) JoinRoom(ctx context.Context, connID, roomID string) error {
	identity, err := p.hub.Lookup(connID)
	if err != nil {
		return err
	}

	p.hub.Subscribe(roomID, connID)

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	if err := p.store.RecordRoomMembership(sctx, roomID, identity.UserID); err != nil {
		// The durable fact is idempotent and re-written on the next join.
		p.log.Warn("record room membership failed", "room", roomID, "username", identity.Username, "error", err)
	}

	msg := chat.NewSystemMessage(roomID, identity, identity.DisplayName+" joined the room")
	id, err := p.store.SaveMessage(sctx, msg)
	if err != nil {
		// Never announce a message that is not durably recorded.
		p.log.Error("join notice not persisted, broadcast suppressed", "room", roomID, "username", identity.Username, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	msg.ID = id

	p.invalidateOnlineCache(ctx, []string{roomID})

	payload, err := json.Marshal(userJoinedPayload{
		Type:        EventUserJoined,
		RoomID:      roomID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AvatarColor: identity.AvatarColor,
		Message:     msg.Body,
		Timestamp:   msg.CreatedAt,
	})
	if err == nil {
		p.hub.ToRoom(roomID, payload, "")
	}
	return nil
}

// LeaveRoom drops the live subscription, persists the leave system message and
// announces user_left_room to the members remaining after removal. Durable
// membership is not revoked; leaving is a session action, not an account
// action.
func (p *PresenceCoordinator) LeaveRoom(ctx context.Context, connID, roomID string) error {
	identity, err := p.hub.Lookup(connID)
	if err != nil {
		return err
	}

	p.hub.Unsubscribe(roomID, connID)

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	msg := chat.NewSystemMessage(roomID, identity, identity.DisplayName+" left the room")
	id, err := p.store.SaveMessage(sctx, msg)
	if err != nil {
		p.log.Error("leave notice not persisted, broadcast suppressed", "room", roomID, "username", identity.Username, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	msg.ID = id

	p.invalidateOnlineCache(ctx, []string{roomID})

	payload, err := json.Marshal(userLeftRoomPayload{
		Type:        EventUserLeftRoom,
		RoomID:      roomID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Message:     msg.Body,
		Timestamp:   msg.CreatedAt,
	})
	if err == nil {
		p.hub.ToRoom(roomID, payload, "")
	}
	return nil
}

// Disconnect runs exactly-once cleanup for a dropped connection: unregister,
// best-effort offline flag, and one user_left notification per room the
// connection was actually subscribed to. Rooms the user never joined hear
// nothing.
func (p *PresenceCoordinator) Disconnect(ctx context.Context, connID string) {
	identity, roomIDs, ok := p.hub.Unregister(connID)
	if !ok {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	if err := p.store.SetUserOnline(sctx, identity.UserID, false); err != nil {
		p.log.Warn("mark user offline failed", "username", identity.Username, "error", err)
	}
	p.invalidateOnlineCache(ctx, roomIDs)

	for _, roomID := range roomIDs {
		payload, err := json.Marshal(userLeftPayload{
			Type:        EventUserLeft,
			RoomID:      roomID,
			Username:    identity.Username,
			DisplayName: identity.DisplayName,
		})
		if err == nil {
			p.hub.ToRoom(roomID, payload, "")
		}
	}
}

// invalidateOnlineCache drops the cached presence projections touched by a
// lifecycle event. Best-effort: a cold cache only costs one Store read.
func (p *PresenceCoordinator) invalidateOnlineCache(ctx context.Context, roomIDs []string) {
	if p.cache == nil {
		return
	}
	keys := []string{onlineUsersCacheKey}
	for _, roomID := range roomIDs {
		keys = append(keys, onlineRoomCacheKey(roomID))
	}
	if _, err := p.cache.Del(ctx, keys...); err != nil {
		p.log.Warn("presence cache invalidation failed", "error", err)
	}
}
