package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	authport "go-roomcast/internal/infrastructure/auth/port"
	cacheport "go-roomcast/internal/infrastructure/cache/port"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/chat/application/service"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
	"go-roomcast/internal/pkg/chat/presentation/controller"
)

// Deps carries everything the chat HTTP layer needs. The router constructs
// per-endpoint controllers and binds them directly to routes.
type Deps struct {
	Hub            *realtime.Hub
	Presence       *service.PresenceCoordinator
	Pipeline       *service.MessagePipeline
	Rooms          *service.RoomService
	Store          repository.Store
	Cache          cacheport.Cache
	Auth           authport.Authenticator
	Log            *slog.Logger
	StoreTimeout   time.Duration
	OnlineCacheTTL time.Duration
	SendBuffer     int
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	listRoomsCtl := controller.NewListRoomsController(d.Store, d.StoreTimeout)
	createRoomCtl := controller.NewCreateRoomController(d.Rooms)
	getMsgCtl := controller.NewGetMessagesController(d.Store, d.StoreTimeout)
	onlineCtl := controller.NewOnlineUsersController(d.Store, d.Cache, d.OnlineCacheTTL, d.StoreTimeout, d.Log)
	socketCtl := controller.NewChatSocketController(d.Hub, d.Presence, d.Pipeline, d.Rooms, d.Auth, d.Log, d.SendBuffer)

	// GET /api/v1/rooms -> list public rooms
	g.GET("/rooms", listRoomsCtl.Handle())

	// POST /api/v1/rooms -> create a room (requires a bearer token)
	g.POST("/rooms", controller.RequireAuth(d.Auth), createRoomCtl.Handle())

	// GET /api/v1/rooms/:roomId/messages -> recent history, oldest first
	g.GET("/rooms/:roomId/messages", getMsgCtl.Handle())

	// GET /api/v1/rooms/:roomId/online -> online users in a room
	g.GET("/rooms/:roomId/online", onlineCtl.Handle())

	// GET /api/v1/online -> online users across all rooms
	g.GET("/online", onlineCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
