package domain

const DefaultRoom = "lobby"

// Session is a point-in-time copy of the client's auth state.
type Session struct {
	Token string
	User  *Identity
	Rooms []string
}

func (s Session) LoggedIn() bool {
	return s.Token != ""
}
