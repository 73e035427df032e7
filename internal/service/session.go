package service

import (
	"context"
	"time"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
)

// SessionService exchanges credentials for short-lived JWT sessions.
type SessionService struct {
	users   *UserService
	secret  []byte
	ttl     time.Duration
	metrics metrics.Recorder
}

// NewSessionService creates a new SessionService.
func NewSessionService(users *UserService, secret []byte, ttl time.Duration, recorder metrics.Recorder) *SessionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionService{
		users:   users,
		secret:  secret,
		ttl:     ttl,
		metrics: recorder,
	}
}

// Session is a signed JWT with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// CreateSession authenticates the credentials and signs a session JWT.
// A successful login stamps last_login on the account.
func (s *SessionService) CreateSession(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := auth.SignSession(s.secret, user.ID, user.Email, s.ttl)
	if err != nil {
		return nil, err
	}

	s.users.RecordLogin(ctx, user.ID)
	s.metrics.IncSessionCreated()

	return &Session{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
		User:      user,
	}, nil
}
