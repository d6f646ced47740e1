package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rs/zerolog"
)

// AuthClient talks to the user service.
type AuthClient struct {
	requester
}

var _ usecase.AuthService = (*AuthClient)(nil)

func NewAuthClient(baseURL string, client *http.Client, log zerolog.Logger) *AuthClient {
	return &AuthClient{requester{baseURL: baseURL, http: client, log: log}}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *AuthClient) Authenticate(ctx context.Context, creds domain.Credentials) (string, error) {
	req, err := a.jsonRequest(ctx, http.MethodPost, "/login", creds, "")
	if err != nil {
		return "", err
	}
	resp, err := a.do(req, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode login response: %w", domain.ErrNetworkFailure, err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: login response has no token", domain.ErrAuthFailure)
	}
	return body.Token, nil
}

func (a *AuthClient) Register(ctx context.Context, reg domain.Registration) error {
	req, err := a.jsonRequest(ctx, http.MethodPost, "/register", reg, "")
	if err != nil {
		return err
	}
	resp, err := a.do(req, true)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (a *AuthClient) FetchUserProfile(ctx context.Context, username string) (domain.Profile, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/user/"+url.PathEscape(username), nil, "", "")
	if err != nil {
		return domain.Profile{}, err
	}
	resp, err := a.do(req, false)
	if err != nil {
		return domain.Profile{}, err
	}
	defer resp.Body.Close()

	var profile domain.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: decode profile: %w", domain.ErrNetworkFailure, err)
	}
	return profile, nil
}
