package chat

import (
	"errors"
	"strings"
	"time"
)

// RoomType distinguishes open rooms from invite-only ones.
type RoomType string

const (
	RoomTypePublic  RoomType = "public"
	RoomTypePrivate RoomType = "private"
)

var ErrEmptyRoomName = errors.New("chat: room name is empty")

// Room is the durable room record. The real-time core treats Room.ID as an
// opaque key; it never owns or mutates Room records.
type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Type      RoomType  `db:"room_type"`
	CreatorID string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// NormalizeRoomName trims the requested name and rejects blank input.
func NormalizeRoomName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyRoomName
	}
	return trimmed, nil
}
