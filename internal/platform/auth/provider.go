package auth

import (
	"context"
	"sync"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

// Provider resolves an opaque bearer credential to a caller identity. The
// credential has no semantics of its own in this layer beyond presence; the
// provider owns token format and verification.
type Provider interface {
	// Resolve returns the identity for a credential, or an Unauthenticated
	// error when the credential is absent, malformed, expired or unknown.
	Resolve(ctx context.Context, token string) (*Identity, error)

	// Ping reports whether the identity backend is reachable. Used by the
	// health endpoint only.
	Ping(ctx context.Context) error
}

// StaticProvider resolves tokens from a fixed table. It backs tests and
// development deployments; selection happens by configuration at startup,
// never by environment sniffing inside request handling.
type StaticProvider struct {
	mu         sync.RWMutex
	identities map[string]*Identity
}

// NewStaticProvider creates a provider over a fixed token table.
func NewStaticProvider(identities map[string]*Identity) *StaticProvider {
	table := make(map[string]*Identity, len(identities))
	for token, id := range identities {
		table[token] = id
	}
	return &StaticProvider{identities: table}
}

func (p *StaticProvider) Resolve(_ context.Context, token string) (*Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.identities[token]
	if !ok {
		return nil, apperrors.New(apperrors.Unauthenticated, "invalid credentials")
	}
	clone := *id
	clone.Permissions = append([]string(nil), id.Permissions...)
	return &clone, nil
}

func (p *StaticProvider) Ping(context.Context) error {
	return nil
}

// Add registers a token at runtime. Test helper.
func (p *StaticProvider) Add(token string, id *Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identities[token] = id
}
