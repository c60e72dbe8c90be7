package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"go-roomcast/internal/infrastructure/queue/port"
	"go-roomcast/internal/infrastructure/realtime"
	chat "go-roomcast/internal/pkg/chat/domain"
)

// fakeHub is an in-memory Hub that records every delivery instead of writing
// to sockets.
type fakeHub struct {
	identities map[string]chat.Identity
	rooms      map[string]map[string]bool
	connRooms  map[string]map[string]bool
	delivered  map[string][][]byte
	global     [][]byte
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		identities: make(map[string]chat.Identity),
		rooms:      make(map[string]map[string]bool),
		connRooms:  make(map[string]map[string]bool),
		delivered:  make(map[string][][]byte),
	}
}

func (h *fakeHub) connect(connID string, identity chat.Identity) {
	h.identities[connID] = identity
	h.connRooms[connID] = make(map[string]bool)
}

func (h *fakeHub) Lookup(connID string) (chat.Identity, error) {
	identity, ok := h.identities[connID]
	if !ok {
		return chat.Identity{}, realtime.ErrNotAuthenticated
	}
	return identity, nil
}

func (h *fakeHub) Unregister(connID string) (chat.Identity, []string, bool) {
	identity, ok := h.identities[connID]
	if !ok {
		return chat.Identity{}, nil, false
	}
	delete(h.identities, connID)
	var roomIDs []string
	for roomID := range h.connRooms[connID] {
		roomIDs = append(roomIDs, roomID)
		delete(h.rooms[roomID], connID)
	}
	delete(h.connRooms, connID)
	sort.Strings(roomIDs)
	return identity, roomIDs, true
}

func (h *fakeHub) Subscribe(roomID, connID string) {
	if _, ok := h.identities[connID]; !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][connID] = true
	h.connRooms[connID][roomID] = true
}

func (h *fakeHub) Unsubscribe(roomID, connID string) {
	delete(h.rooms[roomID], connID)
	delete(h.connRooms[connID], roomID)
}

func (h *fakeHub) Members(roomID string) []string {
	members := make([]string, 0, len(h.rooms[roomID]))
	for connID := range h.rooms[roomID] {
		members = append(members, connID)
	}
	sort.Strings(members)
	return members
}

func (h *fakeHub) ToConnection(connID string, payload []byte) bool {
	if _, ok := h.identities[connID]; !ok {
		return false
	}
	h.delivered[connID] = append(h.delivered[connID], payload)
	return true
}

func (h *fakeHub) ToRoom(roomID string, payload []byte, excludeConnID string) int {
	delivered := 0
	for connID := range h.rooms[roomID] {
		if connID == excludeConnID {
			continue
		}
		h.delivered[connID] = append(h.delivered[connID], payload)
		delivered++
	}
	return delivered
}

func (h *fakeHub) ToAll(payload []byte) int {
	h.global = append(h.global, payload)
	for connID := range h.identities {
		h.delivered[connID] = append(h.delivered[connID], payload)
	}
	return len(h.identities)
}

// received decodes the payloads delivered to connID whose type matches.
func (h *fakeHub) received(connID, eventType string) []map[string]any {
	var out []map[string]any
	for _, payload := range h.delivered[connID] {
		var frame map[string]any
		if json.Unmarshal(payload, &frame) == nil && frame["type"] == eventType {
			out = append(out, frame)
		}
	}
	return out
}

var errStoreDown = errors.New("store down")

// fakeStore records writes and fails on demand.
type fakeStore struct {
	saved       []chat.Message
	nextID      int64
	memberships map[string][]string // roomID -> userIDs
	online      map[string]bool
	rooms       []chat.Room

	failSaveMessage bool
	failSetOnline   bool
	failCreateRoom  bool
	failMembership  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		memberships: make(map[string][]string),
		online:      make(map[string]bool),
	}
}

func (s *fakeStore) CreateUser(_ context.Context, _ chat.User) (string, error) {
	return "", errors.New("not used by the real-time core")
}

func (s *fakeStore) GetUserByUsername(_ context.Context, _ string) (chat.User, error) {
	return chat.User{}, errors.New("not used by the real-time core")
}

func (s *fakeStore) SetUserOnline(_ context.Context, userID string, online bool) error {
	if s.failSetOnline {
		return errStoreDown
	}
	s.online[userID] = online
	return nil
}

func (s *fakeStore) CreateRoom(_ context.Context, name string, roomType chat.RoomType, creatorID string) (string, error) {
	if s.failCreateRoom {
		return "", errStoreDown
	}
	id := "room-" + name
	s.rooms = append(s.rooms, chat.Room{ID: id, Name: name, Type: roomType, CreatorID: creatorID})
	return id, nil
}

func (s *fakeStore) ListPublicRooms(_ context.Context) ([]chat.Room, error) {
	return s.rooms, nil
}

func (s *fakeStore) SaveMessage(_ context.Context, m chat.Message) (int64, error) {
	if s.failSaveMessage {
		return 0, errStoreDown
	}
	s.nextID++
	m.ID = s.nextID
	s.saved = append(s.saved, m)
	return m.ID, nil
}

func (s *fakeStore) ListRecentMessages(_ context.Context, roomID string, _ int) ([]chat.Message, error) {
	var msgs []chat.Message
	for _, m := range s.saved {
		if m.RoomID == roomID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (s *fakeStore) RecordRoomMembership(_ context.Context, roomID, userID string) error {
	if s.failMembership {
		return errStoreDown
	}
	for _, existing := range s.memberships[roomID] {
		if existing == userID {
			return nil
		}
	}
	s.memberships[roomID] = append(s.memberships[roomID], userID)
	return nil
}

func (s *fakeStore) ListOnlineUsers(_ context.Context, _ string) ([]chat.User, error) {
	return nil, nil
}

// savedOfKind filters persisted messages by kind.
func (s *fakeStore) savedOfKind(kind chat.MessageKind) []chat.Message {
	var out []chat.Message
	for _, m := range s.saved {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	tasks []port.Task
	fail  bool
}

func (q *fakeQueue) Enqueue(_ context.Context, t port.Task, _ ...port.EnqueueOption) (string, error) {
	if q.fail {
		return "", errors.New("queue down")
	}
	q.tasks = append(q.tasks, t)
	return "task-1", nil
}

func (q *fakeQueue) Close() error { return nil }
