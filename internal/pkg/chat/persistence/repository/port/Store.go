package repository

import (
	"context"

	chat "go-roomcast/internal/pkg/chat/domain"
)

// Store defines the durable surface the real-time core consumes. The core
// never performs credential checks through it; that is the authenticator's
// job.
type Store interface {
	// CreateUser persists a new account and returns its id.
	CreateUser(ctx context.Context, u chat.User) (string, error)

	// GetUserByUsername resolves a durable account record.
	GetUserByUsername(ctx context.Context, username string) (chat.User, error)

	// SetUserOnline flips the online flag. Consumed by the presence
	// coordinator for status only; failures degrade gracefully.
	SetUserOnline(ctx context.Context, userID string, online bool) error

	// CreateRoom persists a room and returns its id.
	CreateRoom(ctx context.Context, name string, roomType chat.RoomType, creatorID string) (string, error)

	// ListPublicRooms returns the public room catalog.
	ListPublicRooms(ctx context.Context) ([]chat.Room, error)

	// SaveMessage persists a message atomically and returns the store-assigned
	// id, monotonically increasing per room.
	SaveMessage(ctx context.Context, m chat.Message) (int64, error)

	// ListRecentMessages returns up to limit messages for the room, oldest
	// first. Used for history backfill on join.
	ListRecentMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error)

	// RecordRoomMembership writes the durable "has joined at least once" fact.
	// Idempotent; repeated joins by the same user are not errors.
	RecordRoomMembership(ctx context.Context, roomID, userID string) error

	// ListOnlineUsers returns online users, scoped to a room when roomID is
	// non-empty.
	ListOnlineUsers(ctx context.Context, roomID string) ([]chat.User, error)
}
