package repository

import (
	"path/filepath"
	"testing"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[domain.StorageKind]func(dir string) usecase.Storage {
	t.Helper()
	open := func(kind domain.StorageKind) func(string) usecase.Storage {
		return func(dir string) usecase.Storage {
			s, err := Open(domain.Config{Storage: kind, DataDir: dir})
			require.NoError(t, err)
			return s
		}
	}
	return map[domain.StorageKind]func(string) usecase.Storage{
		domain.StorageFile:   open(domain.StorageFile),
		domain.StorageSQLite: open(domain.StorageSQLite),
		domain.StoragePebble: open(domain.StoragePebble),
	}
}

func TestStorage_SetGetDelete(t *testing.T) {
	for kind, open := range backends(t) {
		t.Run(string(kind), func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			_, ok, err := s.Get("token")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.Set("token", "T1"))
			require.NoError(t, s.Set("token", "T2"))
			require.NoError(t, s.Set("rooms", `["lobby"]`))

			v, ok, err := s.Get("token")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "T2", v)

			require.NoError(t, s.Delete("token", "rooms", "missing"))
			_, ok, err = s.Get("rooms")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestStorage_SurvivesReopen(t *testing.T) {
	for kind, open := range backends(t) {
		t.Run(string(kind), func(t *testing.T) {
			dir := t.TempDir()
			s := open(dir)
			require.NoError(t, s.Set("rooms", `["lobby","general"]`))
			require.NoError(t, s.Close())

			s = open(dir)
			defer s.Close()
			v, ok, err := s.Get("rooms")
			require.NoError(t, err)
			require.True(t, ok)
			require.JSONEq(t, `["lobby","general"]`, v)
		})
	}
}

func TestStorage_SessionRoundTrip(t *testing.T) {
	for kind, open := range backends(t) {
		t.Run(string(kind), func(t *testing.T) {
			dir := t.TempDir()
			s := open(dir)
			session := usecase.NewSessionStore(s, zerolog.Nop())
			session.SetToken("T1")
			session.AddRoomIfAbsent("lobby")
			session.AddRoomIfAbsent("general")
			require.NoError(t, s.Close())

			s = open(dir)
			defer s.Close()
			restored := usecase.NewSessionStore(s, zerolog.Nop())
			require.Equal(t, "T1", restored.Token())
			require.Equal(t, []string{"lobby", "general"}, restored.Rooms())

			restored.Logout()
			_, ok, err := s.Get(usecase.TokenKey)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(domain.Config{Storage: domain.StorageMemory})
	require.NoError(t, err)
	require.IsType(t, &Memory{}, s)
	require.NoError(t, s.Set("k", "v"))
	v, ok, _ := s.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestOpen_UnknownStorage(t *testing.T) {
	_, err := Open(domain.Config{Storage: "tape", DataDir: t.TempDir()})
	require.Error(t, err)
}

func TestFile_WritesYAML(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)
	require.NoError(t, f.Set("token", "T1"))

	g, err := NewFile(filepath.Join(dir, "s.yaml"))
	require.NoError(t, err)
	v, ok, _ := g.Get("token")
	require.True(t, ok)
	require.Equal(t, "T1", v)
}
