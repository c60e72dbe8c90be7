package realtime

import (
	"errors"

	chat "go-roomcast/internal/pkg/chat/domain"
)

var (
	// ErrAlreadyRegistered signals a connection id reused without an
	// intervening Unregister. That is a transport bug and is fatal to the
	// offending connection only.
	ErrAlreadyRegistered = errors.New("realtime: connection already registered")

	// ErrNotAuthenticated signals an operation attempted on a connection id
	// that never registered. Callers must reject the operation silently.
	ErrNotAuthenticated = errors.New("realtime: connection not registered")
)

// Register tracks a new connection under its id. The caller starts the write
// pump separately once registration succeeds.
func (h *Hub) Register(conn *Connection) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[conn.ID]; ok {
		return ErrAlreadyRegistered
	}
	h.sessions[conn.ID] = conn
	h.connRooms[conn.ID] = make(map[string]struct{})
	return nil
}

// Unregister removes the connection and every live subscription it held,
// returning its identity and the rooms it was subscribed to so the caller can
// notify each of them. Idempotent: a second call reports ok=false.
func (h *Hub) Unregister(connID string) (identity chat.Identity, roomIDs []string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, found := h.sessions[connID]
	if !found {
		return chat.Identity{}, nil, false
	}
	delete(h.sessions, connID)

	for roomID := range h.connRooms[connID] {
		roomIDs = append(roomIDs, roomID)
		h.unsubscribeLocked(roomID, connID)
	}
	delete(h.connRooms, connID)

	return conn.Identity, roomIDs, true
}

// Lookup resolves a connection id to its authenticated identity.
func (h *Hub) Lookup(connID string) (chat.Identity, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.sessions[connID]
	if !ok {
		return chat.Identity{}, ErrNotAuthenticated
	}
	return conn.Identity, nil
}
