package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/internal/models"
)

// SessionRegistry owns the session state of live connections. It is a pure
// session-state store: room membership bookkeeping stays with the caller.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewSessionRegistry creates an empty session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*models.Session)}
}

// Register creates a session with a fresh ID, placed in the general room.
func (r *SessionRegistry) Register() models.Session {
	sess := models.Session{
		ID:            uuid.NewString(),
		CurrentRoomID: GeneralRoomID,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = &sess
	r.mu.Unlock()

	return sess
}

// Get returns a copy of the session with the given ID.
func (r *SessionRegistry) Get(id string) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return *sess, nil
}

// SetDisplayName overwrites the session's display name unconditionally.
// Display names are not unique; multiple connections may share one.
func (r *SessionRegistry) SetDisplayName(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.DisplayName = name
	return nil
}

// SetCurrentRoom points the session at a new room. It does not validate the
// target room or touch membership sets; that coordination belongs to the
// session protocol handler.
func (r *SessionRegistry) SetCurrentRoom(id, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.CurrentRoomID = roomID
	return nil
}

// Unregister removes the session and returns its last known room ID so the
// caller can retract room membership.
func (r *SessionRegistry) Unregister(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return "", ErrNotFound
	}
	delete(r.sessions, id)
	return sess.CurrentRoomID, nil
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ForEach visits a snapshot of all sessions. The visitor runs without the
// registry lock held, so it may call back into the registry.
func (r *SessionRegistry) ForEach(visit func(models.Session)) {
	r.mu.RLock()
	snapshot := make([]models.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		snapshot = append(snapshot, *sess)
	}
	r.mu.RUnlock()

	for _, sess := range snapshot {
		visit(sess)
	}
}
