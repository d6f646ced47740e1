package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Directory reconciles the session's room list with the chat service.
type Directory struct {
	rooms   RoomService
	session *SessionStore
	log     zerolog.Logger
}

func NewDirectory(rooms RoomService, session *SessionStore, log zerolog.Logger) *Directory {
	return &Directory{
		rooms:   rooms,
		session: session,
		log:     log,
	}
}

// Create asks the service to create name. A conflict means the room already
// exists, which is as good as creating it: either way the room ends up in the
// directory.
func (d *Directory) Create(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrEmptyRoomName
	}
	token := d.session.Token()
	if token == "" {
		return domain.ErrNotLoggedIn
	}

	err := d.rooms.CreateRoom(ctx, token, name)
	switch {
	case err == nil:
		d.log.Info().Str("room", name).Msg("room created")
	case errors.Is(err, domain.ErrRoomConflict):
		d.log.Debug().Str("room", name).Msg("room already exists")
	default:
		return fmt.Errorf("create room %q: %w", name, err)
	}
	d.session.AddRoomIfAbsent(name)
	return nil
}

// Sync merges the service's room list into the directory, keeping the local
// order and appending rooms seen for the first time.
func (d *Directory) Sync(ctx context.Context) ([]string, error) {
	token := d.session.Token()
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	remote, err := d.rooms.ListRooms(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	for _, room := range lo.Compact(remote) {
		d.session.AddRoomIfAbsent(room)
	}
	return d.session.Rooms(), nil
}

func (d *Directory) Rooms() []string {
	return d.session.Rooms()
}
