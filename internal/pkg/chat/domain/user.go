package chat

import "time"

// DefaultAvatarColor is assigned to accounts that never picked a color.
const DefaultAvatarColor = "#4A90E2"

// User is the durable account record.
type User struct {
	ID          string     `db:"id"`
	Username    string     `db:"username"`
	Email       string     `db:"email"`
	DisplayName string     `db:"display_name"`
	AvatarColor string     `db:"avatar_color"`
	IsOnline    bool       `db:"is_online"`
	LastSeen    *time.Time `db:"last_seen"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Identity returns the immutable view of the user attached to a connection.
func (u User) Identity() Identity {
	color := u.AvatarColor
	if color == "" {
		color = DefaultAvatarColor
	}
	return Identity{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarColor: color,
	}
}
