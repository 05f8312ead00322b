package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size allowed from peer.
	maxMessageSize = 4096

	// Per-connection outbound buffer.
	sendBufferSize = 256
)

// Client pumps frames between one WebSocket connection and the chat server.
type Client struct {
	server    *Server
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	logger    zerolog.Logger

	// closeOnce guards the disconnect transition: it must run exactly once
	// even when both a close and an error are raised for the transport.
	closeOnce sync.Once
}

func newClient(server *Server, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		server:    server,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
		logger:    server.logger.With().Str("session_id", sessionID).Logger(),
	}
}

// run starts the read and write pumps.
func (c *Client) run() {
	go c.writePump()
	go c.readPump()
}

// readPump reads frames from the connection and hands them to the server.
// It runs in its own goroutine; on exit the connection is torn down.
func (c *Client) readPump() {
	defer func() {
		c.server.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket read error")
			} else {
				c.logger.Debug().Msg("websocket connection closed")
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}
		c.server.handleFrame(c, raw)
	}
}

// writePump drains the send channel into the connection and keeps the
// connection alive with periodic pings. It runs in its own goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Server detached this client; say goodbye.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
