package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/ponyo877/roomsh/client/domain"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

type requester struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func (r requester) newRequest(ctx context.Context, method, path string, body io.Reader, contentType, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(requestIDHeader, ulid.Make().String())
	return req, nil
}

func (r requester) jsonRequest(ctx context.Context, method, path string, payload any, token string) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", path, err)
	}
	return r.newRequest(ctx, method, path, bytes.NewReader(data), "application/json", token)
}

// do sends req and returns the response only for a 2xx status. Any other
// outcome is classified into a domain error; authOn4xx turns every 4xx into
// ErrAuthFailure for the login and registration endpoints.
func (r requester) do(req *http.Request, authOn4xx bool) (*http.Response, error) {
	op := req.Method + " " + req.URL.Path
	log := r.log.With().Str("request_id", req.Header.Get(requestIDHeader)).Str("op", op).Logger()

	resp, err := r.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("request failed")
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNetworkFailure, op, err)
	}
	log.Debug().Int("status", resp.StatusCode).Msg("response")
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, statusError(resp, op, authOn4xx)
}

func statusError(resp *http.Response, op string, authOn4xx bool) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))

	var kind error
	switch {
	case resp.StatusCode == http.StatusConflict:
		kind = domain.ErrRoomConflict
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = domain.ErrAuthFailure
	case authOn4xx && resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = domain.ErrAuthFailure
	default:
		kind = domain.ErrNetworkFailure
	}
	if detail == "" {
		return fmt.Errorf("%w: %s: %s", kind, op, resp.Status)
	}
	return fmt.Errorf("%w: %s: %s: %s", kind, op, resp.Status, detail)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
