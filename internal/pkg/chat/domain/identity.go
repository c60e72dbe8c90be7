package chat

// Identity is the authenticated user bound to a live connection.
// It is resolved once at connect time and never re-derived from event
// payloads afterwards.
type Identity struct {
	UserID      string
	Username    string
	DisplayName string
	AvatarColor string
}
