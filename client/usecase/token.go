package usecase

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/ponyo877/roomsh/client/domain"
)

type tokenClaims struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IdentityFromToken reads the identity claims of a bearer token without
// verifying its signature; the chat service is the one that verifies it.
func IdentityFromToken(token string) (domain.Identity, bool) {
	if token == "" {
		return domain.Identity{}, false
	}
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.Identity{}, false
	}
	identity := domain.NewIdentity(claims.UserID, claims.Username, claims.FullName)
	return identity, identity.IsValid()
}
