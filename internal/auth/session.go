// Package auth handles login against the backend and keeps the
// resulting session (opaque bearer token plus the signed-in user) in
// the device key-value store. All credential checking lives server
// side; the client never inspects the token beyond "looks present".
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sprigapp/sprig/pkg/kvstore"
)

const (
	tokenKey = "token"
	userKey  = "authUser"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

type Credentials struct {
	Token string
	User  User
}

// Session exposes the stored bearer token and user. It satisfies
// rest.TokenSource, so API clients pick the token up automatically.
type Session struct {
	kv kvstore.Store
}

func NewSession(kv kvstore.Store) *Session {
	return &Session{kv: kv}
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, tokenKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return string(raw), nil
}

// User returns the cached signed-in user; ok is false when signed out.
func (s *Session) User(ctx context.Context) (User, bool, error) {
	raw, err := s.kv.Get(ctx, userKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("load user: %w", err)
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, false, nil
	}
	return u, true, nil
}

func (s *Session) store(ctx context.Context, creds Credentials) error {
	// Drop any stale token first so a failed write can't leave the
	// old session paired with the new user.
	if err := s.kv.Remove(ctx, tokenKey); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, tokenKey, []byte(creds.Token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	raw, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, userKey, raw); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear signs out: both session records are removed.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, tokenKey); err != nil {
		return err
	}
	return s.kv.Remove(ctx, userKey)
}
