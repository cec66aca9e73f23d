// Package wire defines the JSON message envelope exchanged between a
// dashboard session client and the realtime server.
package wire

import (
	"encoding/json"
	"fmt"
)

// Type discriminates envelope payloads.
type Type string

// Known envelope types.
const (
	TypeGetUserList Type = "getUserList"
	TypeUserList    Type = "userList"
	TypeUserJoined  Type = "userJoined"
	TypeUserLeft    Type = "userLeft"
	TypeChatMessage Type = "chatMessage"
	TypeZoomUpdate  Type = "zoomUpdate"
	TypeTyping      Type = "typing"
)

// Message is implemented by every envelope payload.
type Message interface {
	MessageType() Type
}

// GetUserList asks the server for the current participant list.
type GetUserList struct{}

func (GetUserList) MessageType() Type { return TypeGetUserList }

// UserList replaces the receiver's presence set wholesale.
type UserList struct {
	Users []string `json:"users"`
}

func (UserList) MessageType() Type { return TypeUserList }

// UserJoined announces a new participant.
type UserJoined struct {
	UserID string `json:"userId"`
}

func (UserJoined) MessageType() Type { return TypeUserJoined }

// UserLeft announces a departed participant.
type UserLeft struct {
	UserID string `json:"userId"`
}

func (UserLeft) MessageType() Type { return TypeUserLeft }

// ChatMessage carries one chat line. UserID is stamped by the server on
// relay; clients never set it themselves.
type ChatMessage struct {
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
}

func (ChatMessage) MessageType() Type { return TypeChatMessage }

// Typing signals the start or end of a participant typing. UserID is
// stamped by the server, as with chat messages.
type Typing struct {
	UserID   string `json:"userId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

func (Typing) MessageType() Type { return TypeTyping }

// ZoomUpdate propagates the visible time-axis bounds of one chart.
// Origin identifies the session instance that produced the update so
// receivers can discard their own reflected changes.
type ZoomUpdate struct {
	ChartID string  `json:"chartId"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Origin  string  `json:"origin,omitempty"`
}

func (ZoomUpdate) MessageType() Type { return TypeZoomUpdate }

// Unknown preserves the discriminator of an unrecognised envelope so the
// router can skip it without failing the stream.
type Unknown struct {
	Type Type
}

func (u Unknown) MessageType() Type { return u.Type }

// Encode serialises a message with its type discriminator.
func Encode(m Message) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %s: %w", m.MessageType(), err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("wire: marshal %s: %w", m.MessageType(), err)
	}
	fields["type"] = m.MessageType()

	return json.Marshal(fields)
}

// Decode parses an inbound frame. A frame with an unrecognised type
// decodes to Unknown rather than an error; only malformed JSON fails.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("wire: decode frame: %w", err)
	}

	switch probe.Type {
	case TypeGetUserList:
		return GetUserList{}, nil
	case TypeUserList:
		var m UserList
		return m, unmarshal(data, &m, probe.Type)
	case TypeUserJoined:
		var m UserJoined
		return m, unmarshal(data, &m, probe.Type)
	case TypeUserLeft:
		var m UserLeft
		return m, unmarshal(data, &m, probe.Type)
	case TypeChatMessage:
		var m ChatMessage
		return m, unmarshal(data, &m, probe.Type)
	case TypeTyping:
		var m Typing
		return m, unmarshal(data, &m, probe.Type)
	case TypeZoomUpdate:
		var m ZoomUpdate
		return m, unmarshal(data, &m, probe.Type)
	default:
		return Unknown{Type: probe.Type}, nil
	}
}

func unmarshal(data []byte, target any, t Type) error {
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("wire: decode %s: %w", t, err)
	}
	return nil
}
