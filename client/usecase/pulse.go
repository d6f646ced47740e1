package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
)

// Pulse sends a keep-alive for the active room every interval so the chat
// service does not evict the user as idle. A failed beat is logged and
// otherwise ignored.
type Pulse struct {
	mu       sync.Mutex
	sender   Heartbeater
	session  *SessionStore
	interval time.Duration
	log      zerolog.Logger

	room     string
	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

func NewPulse(sender Heartbeater, session *SessionStore, interval time.Duration, log zerolog.Logger) *Pulse {
	if interval <= 0 {
		interval = domain.DefaultHeartbeatInterval
	}
	return &Pulse{
		sender:   sender,
		session:  session,
		interval: interval,
		log:      log,
	}
}

// Start cancels any running timer and schedules beats for room. The first
// beat fires one interval after Start, not immediately.
func (p *Pulse) Start(room string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.room = room
	p.cancel = cancel
	p.done = done
	go p.loop(ctx, room, done)
}

func (p *Pulse) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Pulse) Room() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

func (p *Pulse) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Pulse) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.inflight.Wait()
	p.cancel = nil
	p.done = nil
	p.room = ""
}

func (p *Pulse) loop(ctx context.Context, room string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.inflight.Add(1)
			go p.beat(ctx, room)
		}
	}
}

func (p *Pulse) beat(ctx context.Context, room string) {
	defer p.inflight.Done()

	token := p.session.Token()
	if token == "" {
		p.log.Debug().Str("room", room).Msg("skip heartbeat without token")
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()
	if err := p.sender.Heartbeat(reqCtx, token, room); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Warn().Err(err).Str("room", room).Msg("heartbeat failed")
	}
}
