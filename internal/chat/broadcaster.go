package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/registry"
)

// Broadcaster fans frames out to live connections. Delivery is best-effort:
// a recipient whose send buffer is full is skipped, never waited on, so one
// slow transport cannot stall event processing. Frames enqueued for a single
// recipient are delivered in enqueue order by that client's write pump.
type Broadcaster struct {
	sessions *registry.SessionRegistry
	logger   zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*Client // keyed by session ID
}

// NewBroadcaster creates a broadcaster reading session state from sessions.
func NewBroadcaster(sessions *registry.SessionRegistry, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		sessions: sessions,
		logger:   logger.With().Str("component", "broadcaster").Logger(),
		clients:  make(map[string]*Client),
	}
}

// attach makes a connection reachable for delivery.
func (b *Broadcaster) attach(c *Client) {
	b.mu.Lock()
	b.clients[c.sessionID] = c
	b.mu.Unlock()
}

// detach removes a connection and returns it, or nil if already detached.
// The caller owns closing the client's send channel.
func (b *Broadcaster) detach(sessionID string) *Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.clients[sessionID]
	if !ok {
		return nil
	}
	delete(b.clients, sessionID)
	return c
}

// SendTo delivers a frame to a single connection.
func (b *Broadcaster) SendTo(sessionID string, f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		b.logger.Error().Err(err).Str("frame_type", f.Type).Msg("failed to marshal frame")
		return
	}
	b.deliver(sessionID, f.Type, payload)
}

// SendToAll delivers a frame to every live connection, skipping
// excludeID if non-empty.
func (b *Broadcaster) SendToAll(f Frame, excludeID string) {
	payload, err := json.Marshal(f)
	if err != nil {
		b.logger.Error().Err(err).Str("frame_type", f.Type).Msg("failed to marshal frame")
		return
	}

	b.sessions.ForEach(func(sess models.Session) {
		if sess.ID == excludeID {
			return
		}
		b.deliver(sess.ID, f.Type, payload)
	})
}

// SendToRoom delivers a frame to every connection whose current room is
// roomID, skipping excludeID if non-empty.
func (b *Broadcaster) SendToRoom(roomID string, f Frame, excludeID string) {
	payload, err := json.Marshal(f)
	if err != nil {
		b.logger.Error().Err(err).Str("frame_type", f.Type).Msg("failed to marshal frame")
		return
	}

	b.sessions.ForEach(func(sess models.Session) {
		if sess.CurrentRoomID != roomID || sess.ID == excludeID {
			return
		}
		b.deliver(sess.ID, f.Type, payload)
	})
}

// deliver enqueues a payload for one connection without blocking.
func (b *Broadcaster) deliver(sessionID, frameType string, payload []byte) {
	b.mu.RLock()
	c, ok := b.clients[sessionID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case c.send <- payload:
	default:
		// Recipient buffer full; drop rather than block the event stream.
		metrics.BroadcastsDropped.Inc()
		b.logger.Warn().
			Str("session_id", sessionID).
			Str("frame_type", frameType).
			Msg("send buffer full, dropping frame")
	}
}
