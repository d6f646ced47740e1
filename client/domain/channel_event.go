package domain

import "time"

type ChannelEventType int

const (
	EventOpen ChannelEventType = iota
	EventMessage
	EventError
	EventClosed
)

func (t ChannelEventType) String() string {
	switch t {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type ChannelEvent struct {
	Type      ChannelEventType
	HandleID  string
	Room      string
	Message   ChatMessage
	Error     error
	Timestamp time.Time
}

func NewOpenEvent(handleID, room string) ChannelEvent {
	return ChannelEvent{
		Type:      EventOpen,
		HandleID:  handleID,
		Room:      room,
		Timestamp: time.Now(),
	}
}

func NewMessageEvent(handleID string, msg ChatMessage) ChannelEvent {
	return ChannelEvent{
		Type:      EventMessage,
		HandleID:  handleID,
		Room:      msg.Room,
		Message:   msg,
		Timestamp: time.Now(),
	}
}

func NewErrorEvent(handleID, room string, err error) ChannelEvent {
	return ChannelEvent{
		Type:      EventError,
		HandleID:  handleID,
		Room:      room,
		Error:     err,
		Timestamp: time.Now(),
	}
}

func NewClosedEvent(handleID, room string) ChannelEvent {
	return ChannelEvent{
		Type:      EventClosed,
		HandleID:  handleID,
		Room:      room,
		Timestamp: time.Now(),
	}
}

func (e ChannelEvent) IsValid() bool {
	switch e.Type {
	case EventOpen, EventClosed:
		return e.HandleID != "" && e.Room != ""
	case EventMessage:
		return e.HandleID != "" && e.Message.Room != ""
	case EventError:
		return e.Error != nil
	default:
		return false
	}
}

func (e ChannelEvent) String() string {
	switch e.Type {
	case EventError:
		return e.Type.String() + ": " + e.Error.Error()
	case EventMessage:
		return e.Type.String() + ": " + e.Message.String()
	default:
		return e.Type.String() + ": #" + e.Room
	}
}
