package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, auth *fakeAuth, chat *fakeChat) (*Auth, *SessionStore, *fakeStorage) {
	t.Helper()
	storage := newFakeStorage()
	session := NewSessionStore(storage, zerolog.Nop())
	return NewAuth(auth, chat, session, zerolog.Nop()), session, storage
}

func TestAuth_LoginScenario(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]string{"alice:pw1": "T1"}}
	chat := &fakeChat{}
	a, session, storage := newTestAuth(t, auth, chat)

	identity, err := a.Login(context.Background(), "alice", "pw1")

	require.NoError(t, err)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, "T1", session.Token())
	require.Equal(t, "alice", session.User().Username)
	require.Equal(t, []string{"lobby"}, session.Rooms())
	require.Equal(t, []string{"lobby"}, chat.created)
	require.Equal(t, "T1", storage.data[TokenKey])
}

func TestAuth_LoginKeepsLobbyWhenCreationFails(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]string{"alice:pw1": "T1"}}
	for _, createErr := range []error{domain.ErrRoomConflict, domain.ErrNetworkFailure} {
		chat := &fakeChat{createErr: createErr}
		a, session, _ := newTestAuth(t, auth, chat)

		_, err := a.Login(context.Background(), "alice", "pw1")

		require.NoError(t, err)
		require.Equal(t, []string{"lobby"}, session.Rooms())
	}
}

func TestAuth_LoginUsesTokenClaims(t *testing.T) {
	token := signedToken(t, 42, "alice", "Alice Liddell")
	auth := &fakeAuth{tokens: map[string]string{"alice:pw1": token}}
	a, session, _ := newTestAuth(t, auth, &fakeChat{})

	identity, err := a.Login(context.Background(), "alice", "pw1")

	require.NoError(t, err)
	require.Equal(t, domain.NewIdentity(42, "alice", "Alice Liddell"), identity)
	require.Equal(t, identity, *session.User())
}

func TestAuth_BadCredentials(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]string{"alice:pw1": "T1"}}
	chat := &fakeChat{}
	a, session, _ := newTestAuth(t, auth, chat)

	_, err := a.Login(context.Background(), "alice", "wrong")

	require.ErrorIs(t, err, domain.ErrAuthFailure)
	require.Empty(t, session.Token())
	require.Empty(t, session.Rooms())
	require.Empty(t, chat.created)
}

func TestAuth_ValidationHappensBeforeNetwork(t *testing.T) {
	auth := &fakeAuth{}
	a, _, _ := newTestAuth(t, auth, &fakeChat{})

	_, err := a.Login(context.Background(), "", "pw")
	require.ErrorIs(t, err, domain.ErrAuthFailure)

	_, err = a.Register(context.Background(), "", "alice", "pw")
	require.ErrorIs(t, err, domain.ErrAuthFailure)

	require.Zero(t, auth.calls)
}

func TestAuth_RegisterThenLogin(t *testing.T) {
	auth := &fakeAuth{tokens: map[string]string{"bob:pw": "T2"}}
	a, session, _ := newTestAuth(t, auth, &fakeChat{})

	_, err := a.Register(context.Background(), "Bob Builder", "bob", "pw")

	require.NoError(t, err)
	require.Equal(t, []domain.Registration{{FullName: "Bob Builder", Username: "bob", Password: "pw"}}, auth.registered)
	require.Equal(t, "T2", session.Token())
}

func TestAuth_RegisterRejected(t *testing.T) {
	auth := &fakeAuth{regErr: domain.ErrAuthFailure}
	a, session, _ := newTestAuth(t, auth, &fakeChat{})

	_, err := a.Register(context.Background(), "Bob Builder", "bob", "pw")

	require.True(t, errors.Is(err, domain.ErrAuthFailure))
	require.Empty(t, session.Token())
}

func TestAuth_LogoutAndProfile(t *testing.T) {
	auth := &fakeAuth{
		tokens:   map[string]string{"alice:pw1": "T1"},
		profiles: map[string]domain.Profile{"alice": {ID: 1, Username: "alice", FullName: "Alice"}},
	}
	a, session, storage := newTestAuth(t, auth, &fakeChat{})

	_, err := a.Profile(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotLoggedIn)

	_, err = a.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)

	profile, err := a.Profile(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.FullName)

	_, err = a.Profile(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrNetworkFailure)

	a.Logout()
	require.False(t, session.Snapshot().LoggedIn())
	require.False(t, storage.has(TokenKey))
	require.False(t, storage.has(RoomsKey))
}
