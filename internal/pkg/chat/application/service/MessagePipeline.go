package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	chat "go-roomcast/internal/pkg/chat/domain"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

// MessagePipeline validates, persists and broadcasts chat messages and typing
// indicators within a room.
type MessagePipeline struct {
	hub          Hub
	store        repository.Store
	log          *slog.Logger
	storeTimeout time.Duration
}

func NewMessagePipeline(hub Hub, store repository.Store, log *slog.Logger, storeTimeout time.Duration) *MessagePipeline {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &MessagePipeline{hub: hub, store: store, log: log, storeTimeout: storeTimeout}
}

// SendMessage persists a text message and, only on successful persistence,
// broadcasts new_message (carrying the store-assigned id) to every member of
// the room, the sender included. A whitespace-only body is dropped silently.
// On Store failure the message is dropped with no broadcast and no partial
// notification.
func (mp *MessagePipeline) SendMessage(ctx context.Context, connID, roomID, body string) error {
	identity, err := mp.hub.Lookup(connID)
	if err != nil {
		return err
	}

	msg, err := chat.NewTextMessage(roomID, identity, body)
	if errors.Is(err, chat.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, mp.storeTimeout)
	defer cancel()
	id, err := mp.store.SaveMessage(sctx, msg)
	if err != nil {
		mp.log.Error("message not persisted, dropped", "room", roomID, "username", identity.Username, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	msg.ID = id

	payload, err := json.Marshal(newMessagePayload{
		Type:        EventNewMessage,
		ID:          msg.ID,
		RoomID:      roomID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		AvatarColor: identity.AvatarColor,
		Message:     msg.Body,
		MessageType: string(msg.Kind),
		Timestamp:   msg.CreatedAt,
	})
	if err == nil {
		mp.hub.ToRoom(roomID, payload, "")
	}
	return nil
}

// SendTyping broadcasts a typing indicator to the room members except the
// sender. Fire-and-forget: nothing is persisted.
func (mp *MessagePipeline) SendTyping(_ context.Context, connID, roomID string, isTyping bool) error {
	identity, err := mp.hub.Lookup(connID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(userTypingPayload{
		Type:        EventUserTyping,
		RoomID:      roomID,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		IsTyping:    isTyping,
	})
	if err == nil {
		mp.hub.ToRoom(roomID, payload, connID)
	}
	return nil
}
