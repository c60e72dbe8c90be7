package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	chat "go-roomcast/internal/pkg/chat/domain"
)

// ErrNotFound signals a lookup that matched no row.
var ErrNotFound = errors.New("store: not found")

// PgStore implements the Store port on top of a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) CreateUser(ctx context.Context, u chat.User) (string, error) {
	if s == nil || s.pool == nil {
		return "", errors.New("PgStore: nil pool")
	}
	color := u.AvatarColor
	if color == "" {
		color = chat.DefaultAvatarColor
	}
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, display_name, avatar_color)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text
	`, u.Username, u.Email, u.DisplayName, color).Scan(&id)
	return id, err
}

func (s *PgStore) GetUserByUsername(ctx context.Context, username string) (chat.User, error) {
	if s == nil || s.pool == nil {
		return chat.User{}, errors.New("PgStore: nil pool")
	}
	var u chat.User
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, username, email, display_name, avatar_color, is_online, last_seen, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.AvatarColor, &u.IsOnline, &u.LastSeen, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.User{}, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	return u, err
}

func (s *PgStore) SetUserOnline(ctx context.Context, userID string, online bool) error {
	if s == nil || s.pool == nil {
		return errors.New("PgStore: nil pool")
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE users
		SET is_online = $2, last_seen = now()
		WHERE id = $1::uuid
	`, userID, online)
	return err
}

func (s *PgStore) CreateRoom(ctx context.Context, name string, roomType chat.RoomType, creatorID string) (string, error) {
	if s == nil || s.pool == nil {
		return "", errors.New("PgStore: nil pool")
	}
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (name, room_type, created_by)
		VALUES ($1, $2, NULLIF($3, '')::uuid)
		RETURNING id::text
	`, name, string(roomType), creatorID).Scan(&id)
	return id, err
}

func (s *PgStore) ListPublicRooms(ctx context.Context) ([]chat.Room, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, name, room_type, COALESCE(created_by::text, ''), created_at
		FROM rooms
		WHERE room_type = 'public'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []chat.Room
	for rows.Next() {
		var r chat.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &r.CreatorID, &r.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *PgStore) SaveMessage(ctx context.Context, m chat.Message) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, errors.New("PgStore: nil pool")
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (room_id, user_id, username, body, kind, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
		RETURNING id
	`, m.RoomID, m.UserID, m.Username, m.Body, string(m.Kind), m.CreatedAt).Scan(&id)
	return id, err
}

func (s *PgStore) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id::text, user_id::text, username, body, kind, created_at
		FROM messages
		WHERE room_id = $1::uuid
		ORDER BY id DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Username, &m.Body, &m.Kind, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	// Query walks the per-room index newest first; callers want oldest first.
	return lo.Reverse(msgs), nil
}

func (s *PgStore) RecordRoomMembership(ctx context.Context, roomID, userID string) error {
	if s == nil || s.pool == nil {
		return errors.New("PgStore: nil pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1::uuid, $2::uuid)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, roomID, userID)
	return err
}

func (s *PgStore) ListOnlineUsers(ctx context.Context, roomID string) ([]chat.User, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("PgStore: nil pool")
	}
	query := `
		SELECT id::text, username, email, display_name, avatar_color, is_online, last_seen, created_at
		FROM users
		WHERE is_online
		ORDER BY username
	`
	args := []any{}
	if roomID != "" {
		query = `
			SELECT u.id::text, u.username, u.email, u.display_name, u.avatar_color, u.is_online, u.last_seen, u.created_at
			FROM users u
			JOIN room_members rm ON rm.user_id = u.id
			WHERE u.is_online AND rm.room_id = $1::uuid
			ORDER BY u.username
		`
		args = append(args, roomID)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []chat.User
	for rows.Next() {
		var u chat.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.AvatarColor, &u.IsOnline, &u.LastSeen, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
