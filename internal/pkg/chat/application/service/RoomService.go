package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	qport "go-roomcast/internal/infrastructure/queue/port"
	"go-roomcast/internal/pkg/chat/application/task"
	chat "go-roomcast/internal/pkg/chat/domain"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

// RoomService creates rooms and announces them. Creation is shared by the
// socket and HTTP paths; only the socket path broadcasts to all connections.
type RoomService struct {
	hub          Hub
	store        repository.Store
	queue        qport.Client
	log          *slog.Logger
	storeTimeout time.Duration
}

// NewRoomService wires the service. queue may be nil when no background queue
// is deployed; the room seed message is then skipped.
func NewRoomService(hub Hub, store repository.Store, queue qport.Client, log *slog.Logger, storeTimeout time.Duration) *RoomService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &RoomService{hub: hub, store: store, queue: queue, log: log, storeTimeout: storeTimeout}
}

// Create persists a public room for the given creator and enqueues the seed
// system message out of band.
func (rs *RoomService) Create(ctx context.Context, name string, creator chat.Identity) (chat.Room, error) {
	normalized, err := chat.NormalizeRoomName(name)
	if err != nil {
		return chat.Room{}, err
	}

	sctx, cancel := context.WithTimeout(ctx, rs.storeTimeout)
	defer cancel()
	id, err := rs.store.CreateRoom(sctx, normalized, chat.RoomTypePublic, creator.UserID)
	if err != nil {
		return chat.Room{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	room := chat.Room{
		ID:        id,
		Name:      normalized,
		Type:      chat.RoomTypePublic,
		CreatorID: creator.UserID,
		CreatedAt: time.Now().UTC(),
	}
	rs.enqueueSeed(ctx, room, creator)
	return room, nil
}

// CreateFromSocket handles the create_room frame: on success every live
// connection hears room_created (a new public room is a genuinely global
// event); on failure only the requesting connection hears
// room_creation_error.
func (rs *RoomService) CreateFromSocket(ctx context.Context, connID, name string) error {
	identity, err := rs.hub.Lookup(connID)
	if err != nil {
		return err
	}

	room, err := rs.Create(ctx, name, identity)
	if err != nil {
		reason := "failed to create room"
		if errors.Is(err, chat.ErrEmptyRoomName) {
			reason = "invalid room name"
		}
		if payload, mErr := json.Marshal(roomCreationErrorPayload{Type: EventRoomCreationError, Error: reason}); mErr == nil {
			rs.hub.ToConnection(connID, payload)
		}
		return err
	}

	payload, err := json.Marshal(roomCreatedPayload{
		Type:     EventRoomCreated,
		RoomID:   room.ID,
		RoomName: room.Name,
		Message:  fmt.Sprintf("Room %q created successfully!", room.Name),
	})
	if err == nil {
		rs.hub.ToAll(payload)
	}
	return nil
}

func (rs *RoomService) enqueueSeed(ctx context.Context, room chat.Room, creator chat.Identity) {
	if rs.queue == nil {
		return
	}
	payload, err := json.Marshal(task.SeedRoomPayload{
		RoomID:             room.ID,
		RoomName:           room.Name,
		CreatorID:          creator.UserID,
		CreatorUsername:    creator.Username,
		CreatorDisplayName: creator.DisplayName,
	})
	if err != nil {
		return
	}
	if _, err := rs.queue.Enqueue(ctx, qport.Task{Type: task.SeedRoomTaskType, Payload: payload}); err != nil {
		// Seed message is cosmetic; the room itself is already durable.
		rs.log.Warn("room seed task not enqueued", "room", room.Name, "error", err)
	}
}
