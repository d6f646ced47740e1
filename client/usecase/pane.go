package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Pane is the message pane controller. It keeps an append-only, room-tagged
// log of everything the channel delivered; switching rooms changes only which
// part of the log is visible.
type Pane struct {
	mu       sync.RWMutex
	channel  RoomChannel
	pulse    Pulser
	sender   MessageSender
	session  *SessionStore
	log      zerolog.Logger
	now      func() time.Time
	room     string
	messages []domain.ChatMessage
	input    string
	status   error

	unsubscribe func()
	listenMu    sync.RWMutex
	listeners   []func()
}

func NewPane(channel RoomChannel, pulse Pulser, sender MessageSender, session *SessionStore, log zerolog.Logger) *Pane {
	p := &Pane{
		channel: channel,
		pulse:   pulse,
		sender:  sender,
		session: session,
		log:     log,
		now:     time.Now,
	}
	p.unsubscribe = channel.Subscribe(p.handleEvent)
	return p
}

// RoomChanged rebinds the channel and restarts the pulse for room.
func (p *Pane) RoomChanged(room string) error {
	if strings.TrimSpace(room) == "" {
		return domain.ErrEmptyRoomName
	}

	p.mu.Lock()
	p.status = nil
	p.mu.Unlock()

	// Bind returns only once the previous reader has stopped delivering.
	p.channel.Bind(room)
	p.pulse.Start(room)

	p.mu.Lock()
	p.room = room
	p.mu.Unlock()
	p.log.Info().Str("room", room).Msg("room changed")
	p.notify()
	return nil
}

// MessageReceived appends msg in receipt order. Duplicates and out-of-order
// deliveries are kept as they arrive.
func (p *Pane) MessageReceived(msg domain.ChatMessage) {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	p.notify()
}

func (p *Pane) handleEvent(ev domain.ChannelEvent) {
	switch ev.Type {
	case domain.EventMessage:
		p.MessageReceived(ev.Message)
	case domain.EventOpen:
		p.setStatus(nil)
	case domain.EventError:
		p.log.Warn().Err(ev.Error).Str("room", ev.Room).Msg("channel error")
		p.setStatus(ev.Error)
	case domain.EventClosed:
		p.setStatus(fmt.Errorf("%w: closed by server", domain.ErrStreamFailure))
	}
}

func (p *Pane) setStatus(err error) {
	p.mu.Lock()
	p.status = err
	p.mu.Unlock()
	p.notify()
}

// Messages returns the visible transcript: messages of the current room.
func (p *Pane) Messages() []domain.ChatMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Filter(p.messages, func(m domain.ChatMessage, _ int) bool {
		return m.Room == p.room
	})
}

// Log returns every received message regardless of room.
func (p *Pane) Log() []domain.ChatMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.messages)
}

func (p *Pane) Room() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.room
}

func (p *Pane) Input() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.input
}

func (p *Pane) SetInput(text string) {
	p.mu.Lock()
	p.input = text
	p.mu.Unlock()
}

// Status is the last channel or send error, nil when healthy.
func (p *Pane) Status() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Send posts the input buffer to the current room. Blank input is rejected
// without a network call. The buffer is cleared only on success; the message
// itself shows up when the server echoes it over the channel.
func (p *Pane) Send(ctx context.Context) error {
	p.mu.RLock()
	text, room := p.input, p.room
	p.mu.RUnlock()

	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyMessage
	}
	if room == "" {
		return domain.ErrNotBound
	}
	token := p.session.Token()
	if token == "" {
		return domain.ErrNotLoggedIn
	}

	var username string
	if u := p.session.User(); u != nil {
		username = u.Username
	}
	msg := domain.NewOutgoingMessage(room, text, username, p.now().UnixMilli())
	if err := p.sender.SendMessage(ctx, token, msg); err != nil {
		p.log.Error().Err(err).Str("room", room).Msg("send message")
		p.setStatus(err)
		return err
	}

	p.mu.Lock()
	if p.input == text {
		p.input = ""
	}
	p.status = nil
	p.mu.Unlock()
	p.notify()
	return nil
}

// OnUpdate registers fn to run after any change to the pane.
func (p *Pane) OnUpdate(fn func()) {
	p.listenMu.Lock()
	p.listeners = append(p.listeners, fn)
	p.listenMu.Unlock()
}

func (p *Pane) notify() {
	p.listenMu.RLock()
	fns := slices.Clone(p.listeners)
	p.listenMu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// Close stops the pulse and releases the channel.
func (p *Pane) Close() {
	p.unsubscribe()
	p.channel.Unbind()
	p.pulse.Stop()
}
