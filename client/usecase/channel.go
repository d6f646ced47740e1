package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// HandleState describes the channel's current push connection.
type HandleState struct {
	ID   string
	Room string
	Open bool
}

// Channel keeps exactly one server-push connection, bound to one room. Each
// connection is read by its own goroutine, which delivers events to
// subscribers in stream order.
//
// Subscribers must not call Bind or Unbind from inside the callback: Bind
// waits for the previous reader to finish delivering.
type Channel struct {
	bindMu  sync.Mutex
	source  EventSource
	session *SessionStore
	log     zerolog.Logger

	stateMu sync.RWMutex
	room    string
	handle  *channelHandle

	subMu   sync.RWMutex
	subs    map[int]func(domain.ChannelEvent)
	nextSub int
}

type channelHandle struct {
	id     string
	room   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	stream EventStream
	open   bool
	closed bool
}

func NewChannel(source EventSource, session *SessionStore, log zerolog.Logger) *Channel {
	return &Channel{
		source:  source,
		session: session,
		log:     log,
		subs:    make(map[int]func(domain.ChannelEvent)),
	}
}

// Bind closes the current connection, waits for its reader to exit and then
// connects for room. Binding the same room again replaces the connection,
// which is how a channel in the error state is recovered.
func (c *Channel) Bind(room string) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	c.stateMu.Lock()
	old := c.handle
	c.handle = nil
	c.room = room
	c.stateMu.Unlock()

	if old != nil {
		old.close(c.log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &channelHandle{
		id:     ulid.Make().String(),
		room:   room,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.stateMu.Lock()
	c.handle = h
	c.stateMu.Unlock()

	c.log.Debug().Str("room", room).Str("handle", h.id).Msg("bind channel")
	go c.run(h)
}

// Unbind closes the current connection. It is safe to call on an unbound
// channel.
func (c *Channel) Unbind() {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	c.stateMu.Lock()
	old := c.handle
	c.handle = nil
	c.room = ""
	c.stateMu.Unlock()

	if old != nil {
		old.close(c.log)
		c.log.Debug().Str("room", old.room).Str("handle", old.id).Msg("unbind channel")
	}
}

func (c *Channel) BoundRoom() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.room
}

func (c *Channel) State() (HandleState, bool) {
	c.stateMu.RLock()
	h := c.handle
	c.stateMu.RUnlock()
	if h == nil {
		return HandleState{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return HandleState{ID: h.id, Room: h.room, Open: h.open}, true
}

func (c *Channel) Subscribe(fn func(domain.ChannelEvent)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Channel) run(h *channelHandle) {
	defer close(h.done)
	log := c.log.With().Str("room", h.room).Str("handle", h.id).Logger()

	token := c.session.Token()
	if token == "" {
		log.Warn().Msg("bind without token")
		c.emit(h, domain.NewErrorEvent(h.id, h.room, domain.ErrNotLoggedIn))
		return
	}

	stream, err := c.source.Open(h.ctx, token, h.room)
	if err != nil {
		if h.ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("open event stream")
		c.emit(h, domain.NewErrorEvent(h.id, h.room, wrapStreamErr(err)))
		return
	}
	if !h.attach(stream) {
		if err := stream.Close(); err != nil {
			log.Debug().Err(err).Msg("close late stream")
		}
		return
	}
	log.Info().Msg("event stream open")
	c.emit(h, domain.NewOpenEvent(h.id, h.room))

	for {
		data, err := stream.Next()
		if err != nil {
			if h.ctx.Err() != nil {
				return
			}
			h.detach(log)
			if errors.Is(err, io.EOF) {
				log.Info().Msg("event stream closed by server")
				c.emit(h, domain.NewClosedEvent(h.id, h.room))
				return
			}
			log.Error().Err(err).Msg("event stream failed")
			c.emit(h, domain.NewErrorEvent(h.id, h.room, wrapStreamErr(err)))
			return
		}

		msg, err := domain.ParseChatMessage(data)
		if err != nil {
			log.Warn().Err(err).Bytes("payload", data).Msg("drop event")
			continue
		}
		if msg.Room != c.BoundRoom() {
			log.Debug().Str("event_room", msg.Room).Msg("discard event for other room")
			continue
		}
		c.emit(h, domain.NewMessageEvent(h.id, msg))
	}
}

func (c *Channel) emit(h *channelHandle, ev domain.ChannelEvent) {
	if h.ctx.Err() != nil || !c.isCurrent(h) {
		return
	}
	c.subMu.RLock()
	fns := lo.Values(c.subs)
	c.subMu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Channel) isCurrent(h *channelHandle) bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.handle == h
}

func wrapStreamErr(err error) error {
	if errors.Is(err, domain.ErrStreamFailure) || errors.Is(err, domain.ErrAuthFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStreamFailure, err)
}

func (h *channelHandle) attach(stream EventStream) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.stream = stream
	h.open = true
	return true
}

// detach releases a stream that ended on its own.
func (h *channelHandle) detach(log zerolog.Logger) {
	h.mu.Lock()
	stream := h.stream
	h.stream = nil
	h.open = false
	h.mu.Unlock()
	if stream != nil {
		if err := stream.Close(); err != nil {
			log.Debug().Err(err).Msg("close ended stream")
		}
	}
}

func (h *channelHandle) close(log zerolog.Logger) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.closed = true
	h.open = false
	stream := h.stream
	h.stream = nil
	h.mu.Unlock()

	h.cancel()
	if stream != nil {
		if err := stream.Close(); err != nil {
			log.Debug().Err(err).Str("handle", h.id).Msg("close stream")
		}
	}
	<-h.done
}
