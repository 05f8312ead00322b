// Package parley provides a client for the parley real-time chat service.
package parley

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// GeneralRoom is the ID of the default room every connection starts in.
const GeneralRoom = "general"

// Room is a room summary as exposed by the service.
type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	HasPassword  bool      `json:"hasPassword"`
	UserCount    int       `json:"userCount"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Message is a chat message as exposed by the service.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is one server-originated frame: a type tag plus its payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Init is the payload of the "init" event.
type Init struct {
	ClientID    string    `json:"clientId"`
	Rooms       []Room    `json:"rooms"`
	CurrentRoom string    `json:"currentRoom"`
	Messages    []Message `json:"messages"`
}

// Client is a connected chat session.
type Client struct {
	conn *websocket.Conn

	// Populated from the init event on Dial.
	ClientID    string
	CurrentRoom string
	Rooms       []Room
	Messages    []Message
}

// Dial connects to a parley server and waits for the init event.
// The URL may use an http(s) or ws(s) scheme.
func Dial(rawURL string) (*Client, error) {
	wsURL := rawURL
	switch {
	case strings.HasPrefix(rawURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(rawURL, "http://")
	case strings.HasPrefix(rawURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(rawURL, "https://")
	}
	if !strings.HasSuffix(wsURL, "/ws") {
		wsURL = strings.TrimSuffix(wsURL, "/") + "/ws"
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c := &Client{conn: conn}

	ev, err := c.Next(10 * time.Second)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("waiting for init: %w", err)
	}
	if ev.Type != "init" {
		conn.Close()
		return nil, fmt.Errorf("expected init event, got %q", ev.Type)
	}

	var init Init
	if err := ev.Decode(&init); err != nil {
		conn.Close()
		return nil, err
	}
	c.ClientID = init.ClientID
	c.CurrentRoom = init.CurrentRoom
	c.Rooms = init.Rooms
	c.Messages = init.Messages

	return c, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Next reads the next server event, waiting up to timeout.
func (c *Client) Next(timeout time.Duration) (Event, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return Event{}, err
	}

	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return Event{}, err
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// SetUsername assigns this session's display name.
func (c *Client) SetUsername(name string) error {
	return c.writeFrame(map[string]any{"type": "set_username", "username": name})
}

// Join moves the session into another room, supplying the password when the
// room is private. Confirmation arrives as a "room_joined" event.
func (c *Client) Join(roomID, password string) error {
	return c.writeFrame(map[string]any{"type": "join_room", "roomId": roomID, "password": password})
}

// Send posts a message to the current room under the session's display name.
func (c *Client) Send(text string) error {
	return c.writeFrame(map[string]any{"type": "message", "text": text})
}

// SendAs posts a message with an explicit author override.
func (c *Client) SendAs(username, text string) error {
	return c.writeFrame(map[string]any{"type": "message", "username": username, "text": text})
}

// Typing signals the session's typing state to the rest of the room.
func (c *Client) Typing(isTyping bool) error {
	return c.writeFrame(map[string]any{"type": "typing", "isTyping": isTyping})
}

func (c *Client) writeFrame(frame map[string]any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
