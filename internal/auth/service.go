package auth

import (
	"context"
	"errors"
)

// ErrBadToken means the backend answered a login without a usable
// token; treated the same as a failed login.
var ErrBadToken = errors.New("login response missing token")

// minTokenLen filters out the empty/placeholder tokens some backend
// builds used to return on soft failures.
const minTokenLen = 10

type API interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
	Register(ctx context.Context, name, email, password string) (Credentials, error)
}

type Service struct {
	api     API
	session *Session
}

func NewService(api API, session *Session) *Service {
	return &Service{api: api, session: session}
}

func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	if len(creds.Token) < minTokenLen {
		return User{}, ErrBadToken
	}
	if err := s.session.store(ctx, creds); err != nil {
		return User{}, err
	}
	return creds.User, nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	creds, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return User{}, err
	}
	if len(creds.Token) < minTokenLen {
		return User{}, ErrBadToken
	}
	if err := s.session.store(ctx, creds); err != nil {
		return User{}, err
	}
	return creds.User, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}
