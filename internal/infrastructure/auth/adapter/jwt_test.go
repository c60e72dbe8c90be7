package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-roomcast/internal/infrastructure/auth/port"
	chat "go-roomcast/internal/pkg/chat/domain"
)

type stubStore struct {
	users map[string]chat.User
}

func (s *stubStore) GetUserByUsername(_ context.Context, username string) (chat.User, error) {
	u, ok := s.users[username]
	if !ok {
		return chat.User{}, errors.New("no such user")
	}
	return u, nil
}

func (s *stubStore) CreateUser(context.Context, chat.User) (string, error) { return "", nil }
func (s *stubStore) SetUserOnline(context.Context, string, bool) error     { return nil }
func (s *stubStore) CreateRoom(context.Context, string, chat.RoomType, string) (string, error) {
	return "", nil
}
func (s *stubStore) ListPublicRooms(context.Context) ([]chat.Room, error) { return nil, nil }
func (s *stubStore) SaveMessage(context.Context, chat.Message) (int64, error) {
	return 0, nil
}
func (s *stubStore) ListRecentMessages(context.Context, string, int) ([]chat.Message, error) {
	return nil, nil
}
func (s *stubStore) RecordRoomMembership(context.Context, string, string) error { return nil }
func (s *stubStore) ListOnlineUsers(context.Context, string) ([]chat.User, error) {
	return nil, nil
}

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	req := require.New(t)
	store := &stubStore{users: map[string]chat.User{
		"ada": {ID: "u-ada", Username: "ada", DisplayName: "Ada", AvatarColor: "#FF0000"},
	}}
	auth := NewJWTAuthenticator("test-secret", store, time.Second)

	token, err := auth.IssueToken("u-ada", "ada", time.Minute)
	req.NoError(err)

	identity, err := auth.Authenticate(context.Background(), token)
	req.NoError(err)
	req.Equal(chat.Identity{UserID: "u-ada", Username: "ada", DisplayName: "Ada", AvatarColor: "#FF0000"}, identity)
}

func TestJWTAuthenticator_RejectsBadSignature(t *testing.T) {
	req := require.New(t)
	store := &stubStore{users: map[string]chat.User{"ada": {ID: "u-ada", Username: "ada"}}}
	auth := NewJWTAuthenticator("test-secret", store, time.Second)
	other := NewJWTAuthenticator("other-secret", store, time.Second)

	token, err := other.IssueToken("u-ada", "ada", time.Minute)
	req.NoError(err)

	_, err = auth.Authenticate(context.Background(), token)
	req.ErrorIs(err, port.ErrInvalidToken)
}

func TestJWTAuthenticator_RejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	store := &stubStore{users: map[string]chat.User{"ada": {ID: "u-ada", Username: "ada"}}}
	auth := NewJWTAuthenticator("test-secret", store, time.Second)

	token, err := auth.IssueToken("u-ada", "ada", -time.Minute)
	req.NoError(err)

	_, err = auth.Authenticate(context.Background(), token)
	req.ErrorIs(err, port.ErrInvalidToken)
}

func TestJWTAuthenticator_RejectsUserIDMismatch(t *testing.T) {
	req := require.New(t)
	store := &stubStore{users: map[string]chat.User{"ada": {ID: "u-ada", Username: "ada"}}}
	auth := NewJWTAuthenticator("test-secret", store, time.Second)

	// Token claims a different account id than the store holds
	token, err := auth.IssueToken("u-someone-else", "ada", time.Minute)
	req.NoError(err)

	_, err = auth.Authenticate(context.Background(), token)
	req.ErrorIs(err, port.ErrInvalidToken)
}

func TestJWTAuthenticator_RejectsUnknownUser(t *testing.T) {
	req := require.New(t)
	auth := NewJWTAuthenticator("test-secret", &stubStore{users: map[string]chat.User{}}, time.Second)

	token, err := auth.IssueToken("u-ada", "ada", time.Minute)
	req.NoError(err)

	_, err = auth.Authenticate(context.Background(), token)
	req.ErrorIs(err, port.ErrInvalidToken)
}
