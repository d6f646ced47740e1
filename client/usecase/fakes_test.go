package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second
const tick = 5 * time.Millisecond

type fakeStorage struct {
	mu      sync.Mutex
	data    map[string]string
	sets    int
	deletes int
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string]string)}
}

func (s *fakeStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func (s *fakeStorage) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.err != nil {
		return s.err
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *fakeStorage) Close() error { return nil }

func (s *fakeStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *fakeStorage) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

type fakeStream struct {
	events chan []byte
	errs   chan error
	closed chan struct{}
	once   sync.Once
	source *fakeSource
}

func (s *fakeStream) Next() ([]byte, error) {
	select {
	case <-s.closed:
		return nil, errors.New("use of closed stream")
	default:
	}
	select {
	case data := <-s.events:
		return data, nil
	case err := <-s.errs:
		return nil, err
	case <-s.closed:
		return nil, errors.New("use of closed stream")
	}
}

func (s *fakeStream) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.source.live.Add(-1)
	})
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *fakeStream) push(payload string) {
	s.events <- []byte(payload)
}

// fakeSource behaves like a push endpoint that multiplexes every room onto
// each stream it hands out.
type fakeSource struct {
	mu      sync.Mutex
	streams []*fakeStream
	rooms   []string
	tokens  []string
	openErr error

	live    atomic.Int32
	maxLive atomic.Int32
}

func (f *fakeSource) Open(_ context.Context, token, room string) (EventStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.rooms = append(f.rooms, room)
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeStream{
		events: make(chan []byte, 64),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
		source: f,
	}
	f.streams = append(f.streams, s)
	n := f.live.Add(1)
	for {
		m := f.maxLive.Load()
		if n <= m || f.maxLive.CompareAndSwap(m, n) {
			break
		}
	}
	return s, nil
}

func (f *fakeSource) opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

func (f *fakeSource) stream(i int) *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[i]
}

type recorder struct {
	mu     sync.Mutex
	events []domain.ChannelEvent
}

func (r *recorder) record(ev domain.ChannelEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) ofType(t domain.ChannelEventType) []domain.ChannelEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChannelEvent
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type heartbeatCall struct {
	token string
	room  string
	at    time.Time
}

type fakeChat struct {
	mu         sync.Mutex
	sent       []domain.OutgoingMessage
	beats      []heartbeatCall
	created    []string
	sendErr    error
	beatErr    error
	createErr  error
	remote     []string
	listErr    error
	sendTokens []string
}

func (f *fakeChat) SendMessage(_ context.Context, token string, msg domain.OutgoingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendTokens = append(f.sendTokens, token)
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeChat) Heartbeat(_ context.Context, token, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beats = append(f.beats, heartbeatCall{token: token, room: room, at: time.Now()})
	return f.beatErr
}

func (f *fakeChat) CreateRoom(_ context.Context, _ string, room string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, room)
	return f.createErr
}

func (f *fakeChat) ListRooms(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remote, f.listErr
}

func (f *fakeChat) beatCalls() []heartbeatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]heartbeatCall(nil), f.beats...)
}

func (f *fakeChat) sendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendTokens)
}

type fakeAuth struct {
	tokens     map[string]string
	registered []domain.Registration
	regErr     error
	profiles   map[string]domain.Profile
	calls      int
}

func (f *fakeAuth) Authenticate(_ context.Context, creds domain.Credentials) (string, error) {
	f.calls++
	token, ok := f.tokens[creds.Username+":"+creds.Password]
	if !ok {
		return "", domain.ErrAuthFailure
	}
	return token, nil
}

func (f *fakeAuth) Register(_ context.Context, reg domain.Registration) error {
	f.calls++
	if f.regErr != nil {
		return f.regErr
	}
	f.registered = append(f.registered, reg)
	return nil
}

func (f *fakeAuth) FetchUserProfile(_ context.Context, username string) (domain.Profile, error) {
	f.calls++
	p, ok := f.profiles[username]
	if !ok {
		return domain.Profile{}, domain.ErrNetworkFailure
	}
	return p, nil
}

func signedToken(t *testing.T, userID int64, username, fullName string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   userID,
		"username":  username,
		"full_name": fullName,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}
