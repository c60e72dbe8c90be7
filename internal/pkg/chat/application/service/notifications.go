package service

import "time"

// Outbound notification types. Frames are flat JSON objects with a "type"
// discriminator, matching the inbound frame convention.
const (
	EventConnectionSuccess = "connection_success"
	EventUserJoined        = "user_joined"
	EventUserLeftRoom      = "user_left_room"
	EventUserLeft          = "user_left"
	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventRoomCreated       = "room_created"
	EventRoomCreationError = "room_creation_error"
)

type connectionSuccessPayload struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

type userJoinedPayload struct {
	Type        string    `json:"type"`
	RoomID      string    `json:"room_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarColor string    `json:"avatar_color"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type userLeftRoomPayload struct {
	Type        string    `json:"type"`
	RoomID      string    `json:"room_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type userLeftPayload struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type newMessagePayload struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	RoomID      string    `json:"room_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarColor string    `json:"avatar_color"`
	Message     string    `json:"message"`
	MessageType string    `json:"message_type"`
	Timestamp   time.Time `json:"timestamp"`
}

type userTypingPayload struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsTyping    bool   `json:"is_typing"`
}

type roomCreatedPayload struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Message  string `json:"message"`
}

type roomCreationErrorPayload struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
