package realtime

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	chat "go-roomcast/internal/pkg/chat/domain"
)

func newTestConn(user string) *Connection {
	identity := chat.Identity{UserID: user, Username: user, DisplayName: user}
	return NewConnection(identity, nil, 8)
}

// drain empties a connection's outbound buffer without a running write pump.
func drain(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case payload := <-c.send:
			out = append(out, payload)
		default:
			return out
		}
	}
}

func TestHub_RegisterDuplicateID(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := newTestConn("ada")

	// Given a registered connection
	req.NoError(hub.Register(conn))

	// When the same connection id registers again
	err := hub.Register(conn)

	// Then the second attempt is rejected
	req.ErrorIs(err, ErrAlreadyRegistered)
}

func TestHub_LookupUnknownConnection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	_, err := hub.Lookup("ghost")

	req.ErrorIs(err, ErrNotAuthenticated)
}

func TestHub_LookupReturnsIdentity(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := newTestConn("ada")
	req.NoError(hub.Register(conn))

	identity, err := hub.Lookup(conn.ID)

	req.NoError(err)
	req.Equal("ada", identity.Username)
}

func TestHub_SubscribeIsIdempotent(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := newTestConn("ada")
	req.NoError(hub.Register(conn))

	hub.Subscribe("room-1", conn.ID)
	hub.Subscribe("room-1", conn.ID)

	req.Len(hub.Members("room-1"), 1)
	req.Equal([]string{"room-1"}, hub.Rooms(conn.ID))
}

func TestHub_SubscribeUnregisteredConnection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	// A connection that never registered cannot hold live subscriptions.
	hub.Subscribe("room-1", "ghost")

	req.Empty(hub.Members("room-1"))
}

func TestHub_MembersUnknownRoom(t *testing.T) {
	require.Empty(t, NewHub().Members("nowhere"))
}

func TestHub_UnsubscribeAbsentIsNoop(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := newTestConn("ada")
	req.NoError(hub.Register(conn))

	hub.Unsubscribe("room-1", conn.ID)
	hub.Unsubscribe("nowhere", "ghost")

	req.Empty(hub.Members("room-1"))
}

func TestHub_UnregisterReturnsIdentityAndRooms(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	conn := newTestConn("ada")
	req.NoError(hub.Register(conn))
	hub.Subscribe("room-a", conn.ID)
	hub.Subscribe("room-b", conn.ID)

	identity, rooms, ok := hub.Unregister(conn.ID)

	req.True(ok)
	req.Equal("ada", identity.Username)
	sort.Strings(rooms)
	req.Equal([]string{"room-a", "room-b"}, rooms)
	req.Empty(hub.Members("room-a"))
	req.Empty(hub.Members("room-b"))

	// Second call is an idempotent no-op.
	_, _, ok = hub.Unregister(conn.ID)
	req.False(ok)
}

// The registry's per-connection room set and the index's per-room member set
// must describe the same membership after any join/leave sequence.
func TestHub_RegistryIndexConsistency(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	a := newTestConn("ada")
	b := newTestConn("bob")
	req.NoError(hub.Register(a))
	req.NoError(hub.Register(b))

	hub.Subscribe("room-1", a.ID)
	hub.Subscribe("room-1", b.ID)
	hub.Subscribe("room-2", a.ID)
	hub.Unsubscribe("room-1", a.ID)
	hub.Subscribe("room-1", a.ID)
	hub.Unsubscribe("room-2", a.ID)

	for _, conn := range []*Connection{a, b} {
		for _, roomID := range hub.Rooms(conn.ID) {
			req.Contains(hub.Members(roomID), conn.ID)
		}
	}
	for _, roomID := range []string{"room-1", "room-2"} {
		for _, connID := range hub.Members(roomID) {
			req.Contains(hub.Rooms(connID), roomID)
		}
	}
	req.ElementsMatch([]string{a.ID, b.ID}, hub.Members("room-1"))
	req.Empty(hub.Members("room-2"))
}

func TestHub_ToRoomExcludesConnection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	a := newTestConn("ada")
	b := newTestConn("bob")
	req.NoError(hub.Register(a))
	req.NoError(hub.Register(b))
	hub.Subscribe("room-1", a.ID)
	hub.Subscribe("room-1", b.ID)

	delivered := hub.ToRoom("room-1", []byte(`{"type":"user_typing"}`), a.ID)

	req.Equal(1, delivered)
	req.Empty(drain(a))
	req.Len(drain(b), 1)
}

func TestHub_ToConnection(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	a := newTestConn("ada")
	req.NoError(hub.Register(a))

	req.True(hub.ToConnection(a.ID, []byte(`{"type":"connection_success"}`)))
	req.False(hub.ToConnection("ghost", []byte(`{}`)))
	req.Len(drain(a), 1)
}

func TestHub_ToAll(t *testing.T) {
	req := require.New(t)
	hub := NewHub()
	a := newTestConn("ada")
	b := newTestConn("bob")
	req.NoError(hub.Register(a))
	req.NoError(hub.Register(b))

	delivered := hub.ToAll([]byte(`{"type":"room_created"}`))

	req.Equal(2, delivered)
	req.Len(drain(a), 1)
	req.Len(drain(b), 1)
}

// A member whose Subscribe committed before the broadcast's snapshot was taken
// must receive the payload, no matter how many joins and leaves run
// concurrently around it.
func TestHub_ConcurrentJoinsAndBroadcasts(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	const (
		workers    = 16
		iterations = 50
	)

	// Buffer sized to hold every broadcast so nothing is lost to overflow.
	receiver := NewConnection(chat.Identity{UserID: "receiver", Username: "receiver"}, nil, workers*iterations)
	req.NoError(hub.Register(receiver))
	hub.Subscribe("room-1", receiver.ID)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		conn := newTestConn(fmt.Sprintf("user-%d", i))
		req.NoError(hub.Register(conn))
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				hub.Subscribe("room-1", c.ID)
				hub.ToRoom("room-1", []byte("x"), c.ID)
				hub.Unsubscribe("room-1", c.ID)
				drain(c)
			}
		}(conn)
	}
	wg.Wait()

	// The receiver subscribed before any broadcast and never left, so every
	// member-set snapshot included it: all workers*iterations deliveries
	// arrived, and the membership maps stayed consistent under the churn.
	req.Len(drain(receiver), workers*iterations)
	req.Contains(hub.Members("room-1"), receiver.ID)
	req.Equal([]string{"room-1"}, hub.Rooms(receiver.ID))
}
