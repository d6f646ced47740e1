package domain

import "errors"

var (
	ErrAuthFailure    = errors.New("authentication failed")
	ErrNetworkFailure = errors.New("network failure")
	ErrRoomConflict   = errors.New("room already exists")
	ErrStreamFailure  = errors.New("event stream failure")
	ErrMalformedEvent = errors.New("malformed event payload")

	ErrEmptyMessage  = errors.New("message is empty")
	ErrEmptyRoomName = errors.New("room name is empty")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrNotBound      = errors.New("no room selected")
)
