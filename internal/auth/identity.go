// internal/auth/identity.go

package auth

import (
	"context"

	"github.com/koinoniahq/koinonia-backend/internal/common/apperrors"
)

// Identity is the authenticated account reference extracted from the
// session token. Issuing and refreshing tokens belongs to the identity
// provider, not this service.
type Identity struct {
	UserID string
	Email  string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity set by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireIdentity extracts the identity or fails with the auth error.
// Mutating operations call this before touching the store.
func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return Identity{}, apperrors.ErrAuth
	}
	return id, nil
}
