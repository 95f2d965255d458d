package auth

import (
	"context"
	"sync/atomic"

	"github.com/bryanwahyu/insight-cli/internal/domain/session"
)

// Service implements the login/register/logout use-cases and owns the
// logged-in/logged-out transition. Dependent state resets (history, current
// job) are wired through the hooks at composition time.
type Service struct {
	Auth     session.Authenticator
	Sessions session.Store

	// OnLogin fires after a session is saved; wired to the history refresh.
	OnLogin func(ctx context.Context)
	// OnLogout fires on every transition to logged-out, user-initiated or
	// forced, and resets dependent client state.
	OnLogout func()

	active atomic.Bool
}

// Resume adopts a session persisted by an earlier run, if any.
func (s *Service) Resume() (session.Session, bool) {
	sess, ok, err := s.Sessions.Load()
	if err != nil || !ok {
		return session.Session{}, false
	}
	s.active.Store(true)
	return sess, true
}

// Register creates an account. Registration never authenticates; the user
// logs in afterwards.
func (s *Service) Register(ctx context.Context, username, password string) error {
	return s.Auth.Register(ctx, username, password)
}

// Login exchanges credentials for a bearer token, persists the session and
// enters the logged-in state.
func (s *Service) Login(ctx context.Context, username, password string) (session.Session, error) {
	token, err := s.Auth.Login(ctx, username, password)
	if err != nil {
		return session.Session{}, err
	}
	sess := session.Session{Credential: token, DisplayName: username}
	if err := s.Sessions.Save(sess); err != nil {
		return session.Session{}, err
	}
	s.active.Store(true)
	if s.OnLogin != nil {
		s.OnLogin(ctx)
	}
	return sess, nil
}

// Logout clears the stored session and resets dependent state.
func (s *Service) Logout() error {
	if err := s.Sessions.Clear(); err != nil {
		return err
	}
	s.leave()
	return nil
}

// Expire handles a server-reported 401. The API client has already cleared
// the stored credential; this transitions the rest of the client exactly
// once, so an expiry racing a user-initiated logout is not reported twice.
func (s *Service) Expire() bool {
	return s.leave()
}

func (s *Service) leave() bool {
	if !s.active.CompareAndSwap(true, false) {
		return false
	}
	if s.OnLogout != nil {
		s.OnLogout()
	}
	return true
}
