package service

import (
	chat "go-roomcast/internal/pkg/chat/domain"
)

// Registry resolves live connections to identities and tears them down.
// Implemented by the realtime hub.
type Registry interface {
	Lookup(connID string) (chat.Identity, error)
	Unregister(connID string) (identity chat.Identity, roomIDs []string, ok bool)
}

// RoomIndex tracks which connections currently receive a room's broadcasts.
type RoomIndex interface {
	Subscribe(roomID, connID string)
	Unsubscribe(roomID, connID string)
	Members(roomID string) []string
}

// Broadcaster fans a payload out to an explicit audience set. Callers pick a
// room, a single connection, or (for genuinely global events) all
// connections.
type Broadcaster interface {
	ToConnection(connID string, payload []byte) bool
	ToRoom(roomID string, payload []byte, excludeConnID string) int
	ToAll(payload []byte) int
}

// Hub is the full live-state surface the services operate on.
type Hub interface {
	Registry
	RoomIndex
	Broadcaster
}
