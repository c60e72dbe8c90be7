package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the single in-process holder of live connection state: which
// connections exist (connection registry) and which rooms each connection is
// currently subscribed to (room membership index). One mutex guards both maps
// so the registry's per-connection room set and the index's per-room member
// set never diverge.
//
// Fan-out snapshots the member set under the lock and writes to the sockets
// after releasing it, so a stalled client never blocks a concurrent
// join/leave.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[string]*Connection         // connection id -> connection
	rooms     map[string]map[string]struct{} // room id -> set of connection ids
	connRooms map[string]map[string]struct{} // connection id -> set of room ids
}

// NewHub constructs an initialized Hub. Build one at process start and tear it
// down with Close at shutdown; nothing here is a package-level singleton.
func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[string]*Connection),
		rooms:     make(map[string]map[string]struct{}),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// ToConnection delivers payload to a single connection. Reports whether the
// connection was known and accepted the payload.
func (h *Hub) ToConnection(connID string, payload []byte) bool {
	h.mu.RLock()
	conn := h.sessions[connID]
	h.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// ToRoom delivers payload to every connection subscribed to roomID.
// excludeConnID, when non-empty, skips that connection. Returns the number of
// connections that accepted the payload.
func (h *Hub) ToRoom(roomID string, payload []byte, excludeConnID string) int {
	h.mu.RLock()
	members := h.rooms[roomID]
	targets := make([]*Connection, 0, len(members))
	for connID := range members {
		if connID == excludeConnID {
			continue
		}
		if conn := h.sessions[connID]; conn != nil {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// ToAll delivers payload to every live connection. Reserved for genuinely
// global events such as a new public room announcement.
func (h *Hub) ToAll(payload []byte) int {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears hub state. Used at
// process shutdown to drain the realtime fabric.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.rooms = make(map[string]map[string]struct{})
	h.connRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
