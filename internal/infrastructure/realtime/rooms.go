package realtime

// Subscribe adds the connection to roomID's live subscriber set and records
// the room in the connection's own room set under the same lock. Idempotent;
// a no-op for connection ids that never registered.
func (h *Hub) Subscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[connID]; !ok {
		return
	}

	room := h.rooms[roomID]
	if room == nil {
		room = make(map[string]struct{})
		h.rooms[roomID] = room
	}
	room[connID] = struct{}{}
	h.connRooms[connID][roomID] = struct{}{}
}

// Unsubscribe removes the connection from roomID's subscriber set. Idempotent;
// no error if the connection or room is absent.
func (h *Hub) Unsubscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(roomID, connID)
}

// Members returns a point-in-time snapshot of the connection ids subscribed to
// roomID. An unknown room yields an empty slice, not an error.
func (h *Hub) Members(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]string, 0, len(h.rooms[roomID]))
	for connID := range h.rooms[roomID] {
		members = append(members, connID)
	}
	return members
}

// Rooms returns the rooms the connection currently subscribes to.
func (h *Hub) Rooms(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.connRooms[connID]))
	for roomID := range h.connRooms[connID] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (h *Hub) unsubscribeLocked(roomID, connID string) {
	room := h.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
	if memberships, ok := h.connRooms[connID]; ok {
		delete(memberships, roomID)
	}
}
