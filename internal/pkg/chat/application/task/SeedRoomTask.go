package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	qport "go-roomcast/internal/infrastructure/queue/port"
	chat "go-roomcast/internal/pkg/chat/domain"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

// SeedRoomTaskType is the queue task name for writing a new room's opening
// system message.
const SeedRoomTaskType = "chat:seed_room"

// SeedRoomPayload is the JSON payload transported via the queue. Kept
// decoupled from domain types to avoid tight coupling with JSON tags.
type SeedRoomPayload struct {
	RoomID             string `json:"roomId"`
	RoomName           string `json:"roomName"`
	CreatorID          string `json:"creatorId"`
	CreatorUsername    string `json:"creatorUsername"`
	CreatorDisplayName string `json:"creatorDisplayName"`
}

// RegisterSeedRoomTask binds the task handler to the provided server. The
// handler persists the "room created" system message so room history opens
// with an attribution line.
func RegisterSeedRoomTask(srv qport.Server, store repository.Store, log *slog.Logger) {
	srv.Register(SeedRoomTaskType, func(ctx context.Context, t qport.Task) error {
		var p SeedRoomPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		creator := chat.Identity{
			UserID:      p.CreatorID,
			Username:    p.CreatorUsername,
			DisplayName: p.CreatorDisplayName,
		}
		msg := chat.NewSystemMessage(p.RoomID, creator, fmt.Sprintf("Room %q created by %s", p.RoomName, p.CreatorDisplayName))

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if _, err := store.SaveMessage(ctx, msg); err != nil {
			// Signal retry; backoff policy is controlled by the queue server.
			return err
		}
		log.Info("room seed message written", "room", p.RoomName)
		return nil
	})
}
