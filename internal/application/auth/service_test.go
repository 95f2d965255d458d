package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/insight-cli/internal/domain/session"
	"github.com/bryanwahyu/insight-cli/internal/infra/sessionstore"
)

type fakeAuthenticator struct {
	registered map[string]string
	token      string
	loginErr   error
}

func (f *fakeAuthenticator) Register(ctx context.Context, username, password string) error {
	if f.registered == nil {
		f.registered = make(map[string]string)
	}
	f.registered[username] = password
	return nil
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func newService(t *testing.T, auth session.Authenticator) (*Service, session.Store) {
	t.Helper()
	store := sessionstore.NewFile(filepath.Join(t.TempDir(), "session.json"))
	return &Service{Auth: auth, Sessions: store}, store
}

func TestLoginSavesSessionAndRefreshesHistory(t *testing.T) {
	svc, store := newService(t, &fakeAuthenticator{token: "tok123"})

	refreshed := 0
	svc.OnLogin = func(ctx context.Context) { refreshed++ }

	sess, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "tok123", sess.Credential)
	assert.Equal(t, "alice", sess.DisplayName)
	assert.Equal(t, 1, refreshed)

	stored, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sess, stored)
}

func TestLoginFailureLeavesStoreAbsent(t *testing.T) {
	svc, store := newService(t, &fakeAuthenticator{loginErr: errors.New("Incorrect username or password")})

	_, err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterNeverAuthenticates(t *testing.T) {
	auth := &fakeAuthenticator{}
	svc, store := newService(t, auth)

	require.NoError(t, svc.Register(context.Background(), "bob", "pw"))
	assert.Contains(t, auth.registered, "bob")

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "registration must not create a session")
}

func TestLoginThenLogoutRoundTrip(t *testing.T) {
	svc, store := newService(t, &fakeAuthenticator{token: "tok123"})

	resets := 0
	svc.OnLogout = func() { resets++ }

	_, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok, "logout must restore the pre-login absent state")
	assert.Equal(t, 1, resets)

	// logout is idempotent and fires the reset only once
	require.NoError(t, svc.Logout())
	assert.Equal(t, 1, resets)
}

func TestExpireFiresOnce(t *testing.T) {
	svc, _ := newService(t, &fakeAuthenticator{token: "tok123"})

	resets := 0
	svc.OnLogout = func() { resets++ }

	assert.False(t, svc.Expire(), "no session, nothing to expire")

	_, err := svc.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	assert.True(t, svc.Expire())
	assert.False(t, svc.Expire(), "a second expiry must not be reported")
	assert.Equal(t, 1, resets)
}

func TestResumeAdoptsPersistedSession(t *testing.T) {
	svc, store := newService(t, &fakeAuthenticator{})
	require.NoError(t, store.Save(session.Session{Credential: "tok456", DisplayName: "carol"}))

	sess, ok := svc.Resume()
	require.True(t, ok)
	assert.Equal(t, "carol", sess.DisplayName)
	assert.True(t, svc.Expire(), "a resumed session can expire")
}
