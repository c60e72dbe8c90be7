package chat

import (
	"errors"
	"strings"
	"time"
)

// MessageKind represents the origin of a message's content.
type MessageKind string

const (
	MessageKindText   MessageKind = "text"
	MessageKindSystem MessageKind = "system"
)

var (
	ErrEmptyMessage  = errors.New("chat: empty message body")
	ErrMissingRoom   = errors.New("chat: room_id is required")
	ErrMissingSender = errors.New("chat: sender identity is required")
)

// Message is an immutable entry in a room's history. ID is assigned by the
// Store at persistence time and is authoritative for ordering within a room.
type Message struct {
	ID        int64       `db:"id"`
	RoomID    string      `db:"room_id"`
	UserID    string      `db:"user_id"`
	Username  string      `db:"username"`
	Body      string      `db:"body"`
	Kind      MessageKind `db:"kind"`
	CreatedAt time.Time   `db:"created_at"`
}

// NewTextMessage builds a user-authored message ready to persist. The body is
// trimmed; a blank body yields ErrEmptyMessage so callers can drop it silently.
func NewTextMessage(roomID string, sender Identity, body string) (Message, error) {
	if roomID == "" {
		return Message{}, ErrMissingRoom
	}
	if sender.UserID == "" {
		return Message{}, ErrMissingSender
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		RoomID:    roomID,
		UserID:    sender.UserID,
		Username:  sender.Username,
		Body:      trimmed,
		Kind:      MessageKindText,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewSystemMessage builds a server-authored presence line ("X joined the
// room"). Stored alongside user messages for a unified history.
func NewSystemMessage(roomID string, subject Identity, body string) Message {
	return Message{
		RoomID:    roomID,
		UserID:    subject.UserID,
		Username:  subject.Username,
		Body:      body,
		Kind:      MessageKindSystem,
		CreatedAt: time.Now().UTC(),
	}
}
