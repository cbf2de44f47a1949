package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller: the tenant everything in the request
// is scoped to and the administrator who initiated it. The pipeline trusts
// this value exclusively; tenant ids in uploaded row data are never honored.
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

// ContextWithIdentity returns a new context carrying the authenticated identity.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	value := ctx.Value(identityKey)
	if value == nil {
		return Identity{}, false
	}
	id, ok := value.(Identity)
	if !ok {
		return Identity{}, false
	}
	if id.TenantID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}
