package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-roomcast/internal/infrastructure/auth/port"
	chat "go-roomcast/internal/pkg/chat/domain"
	repository "go-roomcast/internal/pkg/chat/persistence/repository/port"
)

// Claims is the payload carried inside access tokens. Only user id and
// username travel in the token; display name and color are resolved from the
// store so a stale token never pins presentation fields.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens and resolves them to full
// identities via the store.
type JWTAuthenticator struct {
	secret  []byte
	store   repository.Store
	timeout time.Duration
}

var _ port.Authenticator = (*JWTAuthenticator)(nil)

func NewJWTAuthenticator(secret string, store repository.Store, timeout time.Duration) *JWTAuthenticator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &JWTAuthenticator{secret: []byte(secret), store: store, timeout: timeout}
}

// Authenticate parses and validates the token signature and expiry, then
// resolves the account record. Any failure yields ErrInvalidToken; the caller
// refuses the connection.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, tokenString string) (chat.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return chat.Identity{}, fmt.Errorf("%w: %v", port.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Username == "" {
		return chat.Identity{}, port.ErrInvalidToken
	}

	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	user, err := a.store.GetUserByUsername(sctx, claims.Username)
	if err != nil {
		return chat.Identity{}, fmt.Errorf("%w: %v", port.ErrInvalidToken, err)
	}
	if user.ID != claims.UserID {
		return chat.Identity{}, port.ErrInvalidToken
	}
	return user.Identity(), nil
}

// IssueToken signs a token for the given user. Exposed for integration tests
// and operational tooling; issuing tokens to end users is handled by the
// login service, not this process.
func (a *JWTAuthenticator) IssueToken(userID, username string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "go-roomcast",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
