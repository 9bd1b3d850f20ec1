package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller for one request. It is produced by the
// Provider during authentication and never persisted by this layer.
type Identity struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"session_id"`
}

// HasPermission reports whether the identity holds the permission. Matching
// is exact and case-sensitive; there are no wildcard or hierarchy semantics.
func (id *Identity) HasPermission(perm string) bool {
	for _, p := range id.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// WithIdentity attaches the resolved identity to the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached during authentication,
// or nil when the request never passed the gate.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
