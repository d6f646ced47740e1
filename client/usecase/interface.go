package usecase

import (
	"context"

	"github.com/ponyo877/roomsh/client/domain"
)

// Storage is the string-keyed store the session is mirrored into.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

type AuthService interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (string, error)
	Register(ctx context.Context, reg domain.Registration) error
	FetchUserProfile(ctx context.Context, username string) (domain.Profile, error)
}

type MessageSender interface {
	SendMessage(ctx context.Context, token string, msg domain.OutgoingMessage) error
}

type Heartbeater interface {
	Heartbeat(ctx context.Context, token, room string) error
}

type RoomService interface {
	CreateRoom(ctx context.Context, token, room string) error
	ListRooms(ctx context.Context, token string) ([]string, error)
}

type ChatService interface {
	MessageSender
	Heartbeater
	RoomService
}

// EventSource opens the server-push stream. The room is a scoping hint only;
// the stream may still carry events for every room.
type EventSource interface {
	Open(ctx context.Context, token, room string) (EventStream, error)
}

// EventStream yields raw event payloads. Next returns io.EOF once the server
// closes the stream.
type EventStream interface {
	Next() ([]byte, error)
	Close() error
}

type RoomChannel interface {
	Bind(room string)
	Unbind()
	Subscribe(fn func(domain.ChannelEvent)) (cancel func())
}

type Pulser interface {
	Start(room string)
	Stop()
}
