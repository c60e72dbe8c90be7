package realtime

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	chat "go-roomcast/internal/pkg/chat/domain"
)

func TestConnection_SendAfterCloseReturnsError(t *testing.T) {
	req := require.New(t)
	conn := NewConnection(chat.Identity{UserID: "u1", Username: "ada"}, nil, 2)

	// Given a closed connection
	conn.Close(websocket.CloseNormalClosure, "session closed")

	// Then every subsequent Send fails cleanly instead of panicking, even
	// with buffer capacity to spare
	for i := 0; i < 100; i++ {
		req.Error(conn.Send([]byte("x")))
	}

	// And a second Close stays an idempotent no-op
	conn.Close(websocket.CloseNormalClosure, "again")
}

// A slow consumer triggers Close from inside Send while other goroutines are
// still fanning out to the same connection. None of them may panic; a broadcast
// must never die mid-fan-out because one member went away.
func TestConnection_SlowConsumerCloseWithConcurrentSenders(t *testing.T) {
	req := require.New(t)
	conn := NewConnection(chat.Identity{UserID: "u1", Username: "ada"}, nil, 1)

	const senders = 8
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = conn.Send([]byte("x"))
			}
		}()
	}
	wg.Wait()

	// The buffer overflow closed the connection; later sends report it.
	req.Error(conn.Send([]byte("x")))
}
