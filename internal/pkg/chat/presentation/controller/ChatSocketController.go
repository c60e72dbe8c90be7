package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	authport "go-roomcast/internal/infrastructure/auth/port"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/chat/application/service"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. Identity is resolved once during the handshake and pinned to the
// connection; event payloads never carry trusted identity fields.
type ChatSocketController struct {
	hub        *realtime.Hub
	presence   *service.PresenceCoordinator
	pipeline   *service.MessagePipeline
	rooms      *service.RoomService
	auth       authport.Authenticator
	log        *slog.Logger
	sendBuffer int
}

func NewChatSocketController(
	hub *realtime.Hub,
	presence *service.PresenceCoordinator,
	pipeline *service.MessagePipeline,
	rooms *service.RoomService,
	auth authport.Authenticator,
	log *slog.Logger,
	sendBuffer int,
) *ChatSocketController {
	return &ChatSocketController{
		hub:        hub,
		presence:   presence,
		pipeline:   pipeline,
		rooms:      rooms,
		auth:       auth,
		log:        log,
		sendBuffer: sendBuffer,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers connect from the chat frontend on another origin.
		return true
	},
}

type inboundFrame struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id,omitempty"`
	RoomName string `json:"room_name,omitempty"`
	Message  string `json:"message,omitempty"`
	IsTyping bool   `json:"is_typing,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := ctl.auth.Authenticate(c.Request.Context(), c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.Debug("websocket upgrade failed", "error", err)
			return
		}

		conn := realtime.NewConnection(identity, ws, ctl.sendBuffer)
		if err := ctl.hub.Register(conn); err != nil {
			// Duplicate connection id: a transport bug, fatal to this
			// connection only.
			ctl.log.Error("connection rejected", "username", identity.Username, "error", err)
			_ = ws.Close()
			return
		}
		conn.Start()
		defer func() {
			// Disconnect cleanup must run even when the request context is
			// already gone.
			ctl.presence.Disconnect(context.Background(), conn.ID)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if err := ctl.presence.Connect(c.Request.Context(), conn.ID); err != nil {
			ctl.log.Error("connect handling failed", "username", identity.Username, "error", err)
			return
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.log.Debug("read failed", "username", identity.Username, "error", err)
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			ctl.dispatch(c.Request.Context(), conn, frame)
		}
	}
}

func (ctl *ChatSocketController) dispatch(ctx context.Context, conn *realtime.Connection, frame inboundFrame) {
	var err error
	switch frame.Type {
	case "join_room":
		if frame.RoomID == "" {
			ctl.replyError(conn, "bad_request", "room_id is required")
			return
		}
		err = ctl.presence.JoinRoom(ctx, conn.ID, frame.RoomID)
	case "leave_room":
		if frame.RoomID == "" {
			ctl.replyError(conn, "bad_request", "room_id is required")
			return
		}
		err = ctl.presence.LeaveRoom(ctx, conn.ID, frame.RoomID)
	case "send_message":
		if frame.RoomID == "" {
			ctl.replyError(conn, "bad_request", "room_id is required")
			return
		}
		err = ctl.pipeline.SendMessage(ctx, conn.ID, frame.RoomID, frame.Message)
	case "typing":
		if frame.RoomID == "" {
			return
		}
		err = ctl.pipeline.SendTyping(ctx, conn.ID, frame.RoomID, frame.IsTyping)
	case "create_room":
		err = ctl.rooms.CreateFromSocket(ctx, conn.ID, frame.RoomName)
	default:
		ctl.replyError(conn, "unsupported_type", "unknown frame type")
		return
	}

	// Service-level failures were already reported or deliberately swallowed;
	// the event loop itself never dies on them.
	if err != nil && !errors.Is(err, realtime.ErrNotAuthenticated) {
		ctl.log.Warn("frame handling failed", "type", frame.Type, "username", conn.Identity.Username, "error", err)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
