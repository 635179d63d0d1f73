package auth

import (
	"context"

	"github.com/Krunal123456/Bari/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the authenticated caller of one request.
type Identity struct {
	UserID string
	SID    string
	Role   enums.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok && identity.UserID != ""
}
