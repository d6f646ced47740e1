package usecase

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	TokenKey = "token"
	RoomsKey = "rooms"
)

// SessionStore owns the token, the current user and the known rooms. Its
// setters are the only code that writes to Storage.
type SessionStore struct {
	mu      sync.RWMutex
	storage Storage
	log     zerolog.Logger

	token string
	user  *domain.Identity
	rooms []string

	watchMu  sync.RWMutex
	watchers map[int]func(domain.Session)
	nextID   int
}

// NewSessionStore hydrates the session from storage. A nil storage keeps the
// session in memory only.
func NewSessionStore(storage Storage, log zerolog.Logger) *SessionStore {
	s := &SessionStore{
		storage:  storage,
		log:      log,
		watchers: make(map[int]func(domain.Session)),
	}
	s.hydrate()
	return s
}

func (s *SessionStore) hydrate() {
	if s.storage == nil {
		return
	}
	token, ok, err := s.storage.Get(TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read persisted token")
	}
	if ok {
		s.token = strings.TrimSpace(token)
	}
	if identity, ok := IdentityFromToken(s.token); ok {
		s.user = &identity
	}

	raw, ok, err := s.storage.Get(RoomsKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read persisted rooms")
	}
	if !ok {
		return
	}
	var rooms []string
	if err := json.Unmarshal([]byte(raw), &rooms); err != nil {
		s.log.Warn().Err(err).Msg("discard malformed persisted rooms")
		return
	}
	s.rooms = lo.Uniq(lo.Filter(rooms, func(r string, _ int) bool { return r != "" }))
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionStore) User() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionStore) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rooms)
}

func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *SessionStore) snapshotLocked() domain.Session {
	var user *domain.Identity
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return domain.Session{Token: s.token, User: user, Rooms: slices.Clone(s.rooms)}
}

// SetToken stores a new bearer token. An empty token logs the session out of
// storage: both the token and the room list are removed. A changed token
// replaces the user with the one in its claims, or none for an opaque token.
func (s *SessionStore) SetToken(token string) {
	token = strings.TrimSpace(token)

	s.mu.Lock()
	if token != s.token {
		s.user = nil
		if id, ok := IdentityFromToken(token); ok {
			s.user = &id
		}
	}
	s.token = token
	if token == "" {
		s.rooms = nil
		s.remove(TokenKey, RoomsKey)
	} else {
		s.write(TokenKey, token)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *SessionStore) SetUser(user *domain.Identity) {
	s.mu.Lock()
	if user == nil || !user.IsValid() {
		s.user = nil
	} else {
		u := *user
		s.user = &u
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// AddRoomIfAbsent appends name to the directory. It reports whether the room
// was added; an existing or empty name changes nothing.
func (s *SessionStore) AddRoomIfAbsent(name string) bool {
	if name == "" {
		return false
	}

	s.mu.Lock()
	if lo.Contains(s.rooms, name) {
		s.mu.Unlock()
		return false
	}
	s.rooms = append(s.rooms, name)
	s.writeRooms()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

func (s *SessionStore) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.rooms = nil
	s.remove(TokenKey, RoomsKey)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Watch registers fn to receive the session after every mutation.
func (s *SessionStore) Watch(fn func(domain.Session)) (cancel func()) {
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *SessionStore) notify(snap domain.Session) {
	s.watchMu.RLock()
	fns := lo.Values(s.watchers)
	s.watchMu.RUnlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *SessionStore) writeRooms() {
	data, err := json.Marshal(s.rooms)
	if err != nil {
		s.log.Error().Err(err).Msg("encode rooms")
		return
	}
	s.write(RoomsKey, string(data))
}

func (s *SessionStore) write(key, value string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Set(key, value); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("persist session")
	}
}

func (s *SessionStore) remove(keys ...string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(keys...); err != nil {
		s.log.Error().Err(err).Strs("keys", keys).Msg("clear persisted session")
	}
}
