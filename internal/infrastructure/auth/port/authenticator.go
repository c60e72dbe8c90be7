package port

import (
	"context"
	"errors"

	chat "go-roomcast/internal/pkg/chat/domain"
)

// ErrInvalidToken is returned for any token that cannot be resolved to a
// verified identity. Callers must refuse the connection before any real-time
// operation runs.
var ErrInvalidToken = errors.New("auth: invalid token")

// Authenticator resolves a presented credential to a verified identity. It is
// the only component allowed to perform credential checks; the rest of the
// system consumes the Identity it yields.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (chat.Identity, error)
}
