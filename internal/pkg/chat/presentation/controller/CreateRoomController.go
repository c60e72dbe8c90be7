package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	chat "go-roomcast/internal/pkg/chat/domain"

	"go-roomcast/internal/pkg/chat/application/service"
)

type CreateRoomController struct {
	rooms *service.RoomService
}

func NewCreateRoomController(rooms *service.RoomService) *CreateRoomController {
	return &CreateRoomController{rooms: rooms}
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CreateRoomController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		room, err := h.rooms.Create(c.Request.Context(), req.Name, identity)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyRoomName) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room name"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         room.ID,
			"name":       room.Name,
			"room_type":  room.Type,
			"created_at": room.CreatedAt,
		})
	}
}
