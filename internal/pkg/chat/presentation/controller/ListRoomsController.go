package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

// ListRoomsController serves the public room catalog (one controller per
// endpoint).
type ListRoomsController struct {
	store   repository.Store
	timeout time.Duration
}

func NewListRoomsController(store repository.Store, timeout time.Duration) *ListRoomsController {
	return &ListRoomsController{store: store, timeout: timeout}
}

func (h *ListRoomsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		rooms, err := h.store.ListPublicRooms(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
			return
		}

		out := make([]gin.H, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, gin.H{
				"id":         r.ID,
				"name":       r.Name,
				"room_type":  r.Type,
				"created_at": r.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"rooms": out})
	}
}
