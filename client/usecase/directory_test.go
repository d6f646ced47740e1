package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, chat *fakeChat) (*Directory, *SessionStore, *fakeStorage) {
	t.Helper()
	storage := newFakeStorage()
	session := NewSessionStore(storage, zerolog.Nop())
	session.SetToken("T1")
	return NewDirectory(chat, session, zerolog.Nop()), session, storage
}

func TestDirectory_CreateRejectsEmptyName(t *testing.T) {
	chat := &fakeChat{}
	d, _, _ := newTestDirectory(t, chat)

	require.ErrorIs(t, d.Create(context.Background(), ""), domain.ErrEmptyRoomName)
	require.ErrorIs(t, d.Create(context.Background(), "  "), domain.ErrEmptyRoomName)
	require.Empty(t, chat.created)
}

func TestDirectory_CreateAddsRoom(t *testing.T) {
	chat := &fakeChat{}
	d, session, _ := newTestDirectory(t, chat)

	require.NoError(t, d.Create(context.Background(), "general"))

	require.Equal(t, []string{"general"}, chat.created)
	require.Equal(t, []string{"general"}, session.Rooms())
}

func TestDirectory_ConflictEndsLikeSuccess(t *testing.T) {
	okChat := &fakeChat{}
	okDir, okSession, okStorage := newTestDirectory(t, okChat)
	require.NoError(t, okDir.Create(context.Background(), "lobby"))

	conflictChat := &fakeChat{createErr: fmt.Errorf("%w: 409 Conflict", domain.ErrRoomConflict)}
	conflictDir, conflictSession, conflictStorage := newTestDirectory(t, conflictChat)
	require.NoError(t, conflictDir.Create(context.Background(), "lobby"))

	require.Equal(t, okSession.Snapshot(), conflictSession.Snapshot())
	require.Equal(t, okStorage.data, conflictStorage.data)
}

func TestDirectory_ConflictOnKnownRoomKeepsSingleEntry(t *testing.T) {
	chat := &fakeChat{createErr: domain.ErrRoomConflict}
	d, session, _ := newTestDirectory(t, chat)
	session.AddRoomIfAbsent("lobby")

	require.NoError(t, d.Create(context.Background(), "lobby"))
	require.NoError(t, d.Create(context.Background(), "lobby"))

	require.Equal(t, []string{"lobby"}, session.Rooms())
}

func TestDirectory_OtherFailureLeavesDirectory(t *testing.T) {
	chat := &fakeChat{createErr: fmt.Errorf("%w: status 500", domain.ErrNetworkFailure)}
	d, session, storage := newTestDirectory(t, chat)
	writes := storage.setCount()

	err := d.Create(context.Background(), "general")

	require.ErrorIs(t, err, domain.ErrNetworkFailure)
	require.Contains(t, err.Error(), "general")
	require.Empty(t, session.Rooms())
	require.Equal(t, writes, storage.setCount())
}

func TestDirectory_CreateRequiresLogin(t *testing.T) {
	chat := &fakeChat{}
	d, session, _ := newTestDirectory(t, chat)
	session.Logout()

	require.ErrorIs(t, d.Create(context.Background(), "general"), domain.ErrNotLoggedIn)
	require.Empty(t, chat.created)
}

func TestDirectory_SyncMergesRemoteRooms(t *testing.T) {
	chat := &fakeChat{remote: []string{"random", "lobby", "", "general"}}
	d, session, _ := newTestDirectory(t, chat)
	session.AddRoomIfAbsent("lobby")
	session.AddRoomIfAbsent("mine")

	rooms, err := d.Sync(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"lobby", "mine", "random", "general"}, rooms)
	require.Equal(t, rooms, d.Rooms())
}

func TestDirectory_SyncFailure(t *testing.T) {
	chat := &fakeChat{listErr: errors.New("unreachable")}
	d, session, _ := newTestDirectory(t, chat)
	session.AddRoomIfAbsent("lobby")

	_, err := d.Sync(context.Background())

	require.Error(t, err)
	require.Equal(t, []string{"lobby"}, session.Rooms())
}
