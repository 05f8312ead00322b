// Package chat implements the real-time core of the service: session
// registration, the inbound event protocol, and frame broadcast to live
// WebSocket connections.
package chat

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/registry"
)

// initialHistory is how many recent messages accompany init and room_joined.
const initialHistory = 20

// Server is the session protocol handler. It interprets inbound events
// against the registries and drives the broadcaster to propagate state
// changes. A single mutex serializes every logical event, both real-time
// and request/response, so registry mutations never interleave at
// sub-operation granularity; broadcast fan-out never blocks on a recipient.
type Server struct {
	rooms    *registry.RoomRegistry
	sessions *registry.SessionRegistry
	bcast    *Broadcaster
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu sync.Mutex
}

// NewServer wires the session protocol handler to its registries.
func NewServer(rooms *registry.RoomRegistry, sessions *registry.SessionRegistry, allowedOrigins []string, logger zerolog.Logger) *Server {
	s := &Server{
		rooms:    rooms,
		sessions: sessions,
		bcast:    NewBroadcaster(sessions, logger),
		logger:   logger.With().Str("component", "chat").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

// originChecker builds the upgrade origin policy. A "*" entry allows any
// origin; requests without an Origin header (non-browser clients) pass.
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := false
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWS upgrades the request and runs the Connect transition: register
// the session, join the general room, send init, and announce the
// membership change.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.mu.Lock()
	sess := s.sessions.Register()
	client := newClient(s, conn, sess.ID)
	s.bcast.attach(client)
	s.rooms.AddMember(registry.GeneralRoomID, sess.ID)

	recent, _ := s.rooms.RecentMessages(registry.GeneralRoomID, initialHistory)
	s.bcast.SendTo(sess.ID, initFrame(sess.ID, s.rooms.List(), registry.GeneralRoomID, recent))
	s.broadcastRoomUpdate(registry.GeneralRoomID)
	total := s.sessions.Count()
	s.mu.Unlock()

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Inc()
	s.logger.Info().Str("session_id", sess.ID).Int("total", total).Msg("client connected")

	client.run()
}

// handleFrame dispatches one inbound frame from a connection. Unrecognized
// or malformed frames are logged and dropped; the connection stays alive.
func (s *Server) handleFrame(c *Client, raw []byte) {
	ev, err := DecodeInbound(raw)
	if err != nil {
		metrics.EventsUnrecognized.Inc()
		c.logger.Warn().Err(err).Msg("dropping inbound frame")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case SetUsername:
		s.handleSetUsername(c, ev)
	case JoinRoom:
		s.handleJoin(c, ev)
	case SendMessage:
		s.handleMessage(c, ev)
	case Typing:
		s.handleTyping(c, ev)
	}
}

func (s *Server) handleSetUsername(c *Client, ev SetUsername) {
	// Purely local to the session; no broadcast.
	if err := s.sessions.SetDisplayName(c.sessionID, ev.Username); err != nil {
		c.logger.Warn().Err(err).Msg("set_username for unknown session")
	}
}

func (s *Server) handleJoin(c *Client, ev JoinRoom) {
	if _, err := s.rooms.Get(ev.RoomID); err != nil {
		s.bcast.SendTo(c.sessionID, errorFrame("Room not found"))
		return
	}
	if err := s.rooms.VerifyAccess(ev.RoomID, ev.Password); err != nil {
		s.bcast.SendTo(c.sessionID, errorFrame("Incorrect password"))
		return
	}

	sess, err := s.sessions.Get(c.sessionID)
	if err != nil {
		return
	}

	// Leave the current room first, then occupy the target.
	s.rooms.RemoveMember(sess.CurrentRoomID, c.sessionID)
	s.broadcastRoomUpdate(sess.CurrentRoomID)

	s.rooms.AddMember(ev.RoomID, c.sessionID)
	_ = s.sessions.SetCurrentRoom(c.sessionID, ev.RoomID)

	room, _ := s.rooms.Get(ev.RoomID)
	recent, _ := s.rooms.RecentMessages(ev.RoomID, initialHistory)
	s.bcast.SendTo(c.sessionID, roomJoinedFrame(room, recent))
	s.broadcastRoomUpdate(ev.RoomID)

	c.logger.Info().Str("room_id", ev.RoomID).Msg("client joined room")
}

func (s *Server) handleMessage(c *Client, ev SendMessage) {
	sess, err := s.sessions.Get(c.sessionID)
	if err != nil {
		return
	}

	author := ev.Username
	if author == "" {
		author = sess.DisplayName
	}
	if author == "" {
		author = models.AnonymousName
	}

	msg, err := s.rooms.AppendMessage(sess.CurrentRoomID, author, ev.Text)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		// Session points at a missing room; drop silently.
		return
	case errors.Is(err, registry.ErrInvalidArgument):
		s.bcast.SendTo(c.sessionID, errorFrame("Message text is required"))
		return
	case err != nil:
		c.logger.Error().Err(err).Msg("append message failed")
		return
	}

	// The sender receives its own message echoed back.
	s.bcast.SendToRoom(sess.CurrentRoomID, newMessageFrame(msg), "")
	metrics.MessagesPosted.WithLabelValues("ws").Inc()
}

func (s *Server) handleTyping(c *Client, ev Typing) {
	sess, err := s.sessions.Get(c.sessionID)
	if err != nil {
		return
	}

	name := ev.Username
	if name == "" {
		name = sess.DisplayName
	}

	// The sender never receives its own typing echo. Nothing is persisted.
	s.bcast.SendToRoom(sess.CurrentRoomID, userTypingFrame(name, ev.IsTyping), c.sessionID)
}

// disconnect runs the Disconnect transition exactly once per connection.
func (s *Server) disconnect(c *Client) {
	c.closeOnce.Do(func() {
		s.mu.Lock()
		if removed := s.bcast.detach(c.sessionID); removed != nil {
			close(removed.send)
		}
		lastRoom, err := s.sessions.Unregister(c.sessionID)
		if err == nil {
			s.rooms.RemoveMember(lastRoom, c.sessionID)
			s.broadcastRoomUpdate(lastRoom)
		}
		total := s.sessions.Count()
		s.mu.Unlock()

		metrics.ConnectionsActive.Dec()
		s.logger.Info().Str("session_id", c.sessionID).Int("total", total).Msg("client disconnected")
	})
}

// broadcastRoomUpdate announces a room's changed summary to its occupants
// and pushes the refreshed room list to everyone. Callers hold s.mu.
func (s *Server) broadcastRoomUpdate(roomID string) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return
	}
	s.bcast.SendToRoom(roomID, roomUpdateFrame(room), "")
	s.bcast.SendToAll(roomsUpdatedFrame(s.rooms.List()), "")
}

// CreateRoom is the request/response form of room creation. It triggers the
// same broadcast side effect as any other state change: every connection
// learns about the new room.
func (s *Server) CreateRoom(name string, kind models.RoomKind, secret string) (models.RoomSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.rooms.CreateRoom(name, kind, secret)
	if err != nil {
		return models.RoomSummary{}, err
	}

	s.bcast.SendToAll(roomCreatedFrame(room), "")
	metrics.RoomsCreated.WithLabelValues(string(kind)).Inc()
	s.logger.Info().Str("room_id", room.ID).Str("room_type", string(kind)).Msg("room created")
	return room, nil
}

// PostMessage is the request/response form of sending a message. The
// room-scoped broadcast is identical to the real-time path.
func (s *Server) PostMessage(roomID, author, text string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.rooms.AppendMessage(roomID, author, text)
	if err != nil {
		return models.Message{}, err
	}

	s.bcast.SendToRoom(roomID, newMessageFrame(msg), "")
	metrics.MessagesPosted.WithLabelValues("http").Inc()
	return msg, nil
}
