package adaptor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ponyo877/roomsh/client/domain"
	"github.com/ponyo877/roomsh/client/usecase"
	"github.com/rs/zerolog"
)

// ChatClient talks to the chat service's REST endpoints.
type ChatClient struct {
	requester
}

var _ usecase.ChatService = (*ChatClient)(nil)

func NewChatClient(baseURL string, client *http.Client, log zerolog.Logger) *ChatClient {
	return &ChatClient{requester{baseURL: baseURL, http: client, log: log}}
}

type roomRequest struct {
	Room string `json:"room"`
}

func (c *ChatClient) SendMessage(ctx context.Context, token string, msg domain.OutgoingMessage) error {
	form := url.Values{}
	form.Set("room", msg.Room)
	form.Set("message", msg.Message)
	form.Set("timestamp", strconv.FormatInt(msg.Timestamp, 10))
	form.Set("username", msg.Username)

	req, err := c.newRequest(ctx, http.MethodPost, "/message", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", token)
	if err != nil {
		return err
	}
	resp, err := c.do(req, false)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *ChatClient) Heartbeat(ctx context.Context, token, room string) error {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/heartbeat", roomRequest{Room: room}, token)
	if err != nil {
		return err
	}
	resp, err := c.do(req, false)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *ChatClient) CreateRoom(ctx context.Context, token, room string) error {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/rooms", roomRequest{Room: room}, token)
	if err != nil {
		return err
	}
	resp, err := c.do(req, false)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func (c *ChatClient) ListRooms(ctx context.Context, token string) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/rooms", nil, "", token)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rooms []string
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("%w: decode rooms: %w", domain.ErrNetworkFailure, err)
	}
	return rooms, nil
}
