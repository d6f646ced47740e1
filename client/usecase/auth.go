package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
)

type Auth struct {
	auth     AuthService
	rooms    RoomService
	session  *SessionStore
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuth(auth AuthService, rooms RoomService, session *SessionStore, log zerolog.Logger) *Auth {
	return &Auth{
		auth:     auth,
		rooms:    rooms,
		session:  session,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Login authenticates, stores the token and user, and makes sure the
// default room is in the directory.
func (a *Auth) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	creds := domain.Credentials{Username: username, Password: password}
	if err := a.validate.Struct(creds); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}

	token, err := a.auth.Authenticate(ctx, creds)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("login: %w", err)
	}
	if token == "" {
		return domain.Identity{}, fmt.Errorf("login: %w: empty token", domain.ErrAuthFailure)
	}

	identity, ok := IdentityFromToken(token)
	if !ok {
		identity = domain.NewIdentity(0, username, "")
	}
	a.session.SetToken(token)
	a.session.SetUser(&identity)
	a.log.Info().Str("user", identity.Username).Msg("logged in")

	if err := a.rooms.CreateRoom(ctx, token, domain.DefaultRoom); err != nil && !errors.Is(err, domain.ErrRoomConflict) {
		a.log.Warn().Err(err).Str("room", domain.DefaultRoom).Msg("ensure default room")
	}
	a.session.AddRoomIfAbsent(domain.DefaultRoom)
	return identity, nil
}

// Register creates the account and logs straight in with it.
func (a *Auth) Register(ctx context.Context, fullName, username, password string) (domain.Identity, error) {
	reg := domain.Registration{FullName: fullName, Username: username, Password: password}
	if err := a.validate.Struct(reg); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	if err := a.auth.Register(ctx, reg); err != nil {
		return domain.Identity{}, fmt.Errorf("register: %w", err)
	}
	a.log.Info().Str("user", username).Msg("registered")
	return a.Login(ctx, username, password)
}

func (a *Auth) Logout() {
	a.session.Logout()
	a.log.Info().Msg("logged out")
}

func (a *Auth) Profile(ctx context.Context, username string) (domain.Profile, error) {
	if username == "" {
		u := a.session.User()
		if u == nil {
			return domain.Profile{}, domain.ErrNotLoggedIn
		}
		username = u.Username
	}
	profile, err := a.auth.FetchUserProfile(ctx, username)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile %q: %w", username, err)
	}
	return profile, nil
}
