package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// GetMessagesController returns the recent history of a room, oldest first,
// so clients can render it in order on join.
type GetMessagesController struct {
	store   repository.Store
	timeout time.Duration
}

func NewGetMessagesController(store repository.Store, timeout time.Duration) *GetMessagesController {
	return &GetMessagesController{store: store, timeout: timeout}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room id is required"})
			return
		}

		limit := defaultMessageLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		if limit > maxMessageLimit {
			limit = maxMessageLimit
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		messages, err := h.store.ListRecentMessages(ctx, roomID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
			return
		}

		out := make([]gin.H, 0, len(messages))
		for _, m := range messages {
			out = append(out, gin.H{
				"id":         m.ID,
				"room_id":    m.RoomID,
				"user_id":    m.UserID,
				"username":   m.Username,
				"message":    m.Body,
				"kind":       m.Kind,
				"created_at": m.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	}
}
