package chat

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parley-chat/parley/internal/models"
)

// ErrUnrecognized indicates a malformed frame or unknown event tag. Such
// frames are logged and dropped; they are never fatal to the connection.
var ErrUnrecognized = errors.New("chat: unrecognized frame")

// Inbound is the closed set of client-originated events. Adding a new event
// tag means adding a variant here and a case to DecodeInbound and the
// server's dispatch, all checked at compile time.
type Inbound interface {
	inboundTag() string
}

// SetUsername assigns the session's display name. No broadcast results;
// other participants learn the name via subsequently authored messages.
type SetUsername struct {
	Username string `json:"username"`
}

// JoinRoom moves the connection into another room, supplying the room
// password when the target is private.
type JoinRoom struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

// SendMessage posts a message to the connection's current room. Username
// optionally overrides the session's display name for authorship.
type SendMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Typing signals the sender's typing state to the rest of the room.
type Typing struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

func (SetUsername) inboundTag() string { return "set_username" }
func (JoinRoom) inboundTag() string    { return "join_room" }
func (SendMessage) inboundTag() string { return "message" }
func (Typing) inboundTag() string      { return "typing" }

// DecodeInbound parses a raw frame into its event variant. Inbound frames
// carry their fields alongside the type tag.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
	}

	switch env.Type {
	case "set_username":
		var ev SetUsername
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		return ev, nil
	case "join_room":
		var ev JoinRoom
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		return ev, nil
	case "message":
		var ev SendMessage
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		return ev, nil
	case "typing":
		var ev Typing
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognized, err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrUnrecognized, env.Type)
	}
}

// Frame is the outbound wire envelope: a tagged payload.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// InitData is sent once to a connection right after it is accepted.
type InitData struct {
	ClientID    string               `json:"clientId"`
	Rooms       []models.RoomSummary `json:"rooms"`
	CurrentRoom string               `json:"currentRoom"`
	Messages    []models.Message     `json:"messages"`
}

// RoomJoinedData is the requester-only reply to a successful join.
type RoomJoinedData struct {
	Room     models.RoomSummary `json:"room"`
	Messages []models.Message   `json:"messages"`
}

// RoomsUpdatedData carries the full room list after membership changes.
type RoomsUpdatedData struct {
	Rooms []models.RoomSummary `json:"rooms"`
}

// TypingData mirrors a typing signal to the rest of the room.
type TypingData struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorData is a targeted error event, never broadcast.
type ErrorData struct {
	Message string `json:"message"`
}

func initFrame(clientID string, rooms []models.RoomSummary, currentRoom string, messages []models.Message) Frame {
	if messages == nil {
		messages = []models.Message{}
	}
	return Frame{Type: "init", Data: InitData{
		ClientID:    clientID,
		Rooms:       rooms,
		CurrentRoom: currentRoom,
		Messages:    messages,
	}}
}

func roomJoinedFrame(room models.RoomSummary, messages []models.Message) Frame {
	if messages == nil {
		messages = []models.Message{}
	}
	return Frame{Type: "room_joined", Data: RoomJoinedData{Room: room, Messages: messages}}
}

func roomCreatedFrame(room models.RoomSummary) Frame {
	return Frame{Type: "room_created", Data: room}
}

func roomsUpdatedFrame(rooms []models.RoomSummary) Frame {
	return Frame{Type: "rooms_updated", Data: RoomsUpdatedData{Rooms: rooms}}
}

func roomUpdateFrame(room models.RoomSummary) Frame {
	return Frame{Type: "room_update", Data: room}
}

func newMessageFrame(msg models.Message) Frame {
	return Frame{Type: "new_message", Data: msg}
}

func userTypingFrame(username string, isTyping bool) Frame {
	return Frame{Type: "user_typing", Data: TypingData{Username: username, IsTyping: isTyping}}
}

func errorFrame(message string) Frame {
	return Frame{Type: "error", Data: ErrorData{Message: message}}
}
