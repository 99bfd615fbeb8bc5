package session

import (
	"context"
)

// Session is an explicitly constructed handle over the credential store. It is
// passed into the API client and the guard instead of living in ambient
// process state, and the store behind it can be swapped for an in-memory fake
// in tests.
//
// The credential is read-and-used atomically per request. If a logout races
// with an in-flight request, that request may still complete with the token
// cleared mid-flight; this is accepted rather than defended against.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored credential, or "" when no session exists.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Get(ctx)
}

func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, token)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Claims decodes the stored credential on every call. A nil result means the
// session is absent or its token is malformed.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeClaims(token), nil
}
