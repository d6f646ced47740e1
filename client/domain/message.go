package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const SystemSender = "System"

type MessageType string

const (
	MessageTypeUserJoined MessageType = "userJoined"
	MessageTypeUserLeft   MessageType = "userLeft"
	MessageTypeChat       MessageType = "chat"
	MessageTypeSystem     MessageType = "system"
)

// ChatMessage is one entry pushed by the chat service. It is never built
// locally; outgoing text travels as an OutgoingMessage and only comes back as a
// ChatMessage once the server echoes it over the event stream.
type ChatMessage struct {
	Room        string      `json:"room"`
	Username    string      `json:"username,omitempty"`
	Message     string      `json:"message"`
	Timestamp   int64       `json:"timestamp"`
	MessageType MessageType `json:"messageType,omitempty"`
}

func ParseChatMessage(data []byte) (ChatMessage, error) {
	var msg ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ChatMessage{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if msg.Room == "" {
		return ChatMessage{}, fmt.Errorf("%w: missing room", ErrMalformedEvent)
	}
	return msg, nil
}

func (m ChatMessage) Sender() string {
	if strings.TrimSpace(m.Username) == "" {
		return SystemSender
	}
	return m.Username
}

func (m ChatMessage) String() string {
	return m.Sender() + ": " + m.Message
}

type OutgoingMessage struct {
	Room      string
	Message   string
	Timestamp int64
	Username  string
}

func NewOutgoingMessage(room, text, username string, timestamp int64) OutgoingMessage {
	return OutgoingMessage{
		Room:      room,
		Message:   text,
		Timestamp: timestamp,
		Username:  username,
	}
}
