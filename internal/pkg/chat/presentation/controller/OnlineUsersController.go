package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cacheport "go-roomcast/internal/infrastructure/cache/port"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

const onlineUsersCacheKey = "online:users"

type onlineUser struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

// OnlineUsersController serves the online user list, globally or scoped to a
// room. Results are cached for a short TTL; the cache is invalidated on every
// presence transition, so staleness is bounded by the TTL.
type OnlineUsersController struct {
	store   repository.Store
	cache   cacheport.Cache
	ttl     time.Duration
	timeout time.Duration
	log     *slog.Logger
}

func NewOnlineUsersController(store repository.Store, cache cacheport.Cache, ttl, timeout time.Duration, log *slog.Logger) *OnlineUsersController {
	return &OnlineUsersController{store: store, cache: cache, ttl: ttl, timeout: timeout, log: log}
}

func (h *OnlineUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		key := onlineUsersCacheKey
		if roomID != "" {
			key = "online:room:" + roomID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if h.cache != nil {
			if cached, err := h.cache.Get(ctx, key); err == nil {
				c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
				return
			} else if !errors.Is(err, cacheport.ErrMiss) {
				h.log.Warn("online users cache read failed", "key", key, "error", err)
			}
		}

		users, err := h.store.ListOnlineUsers(ctx, roomID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list online users"})
			return
		}

		out := make([]onlineUser, 0, len(users))
		for _, u := range users {
			id := u.Identity()
			out = append(out, onlineUser{
				UserID:      id.UserID,
				Username:    id.Username,
				DisplayName: id.DisplayName,
				AvatarColor: id.AvatarColor,
			})
		}

		body, err := json.Marshal(gin.H{"users": out})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode online users"})
			return
		}

		if h.cache != nil {
			if err := h.cache.Set(ctx, key, string(body), h.ttl); err != nil {
				h.log.Warn("online users cache write failed", "key", key, "error", err)
			}
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
