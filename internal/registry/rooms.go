package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/parley-chat/parley/internal/models"
)

// GeneralRoomID is the ID of the default room. It exists for the lifetime of
// the process and is never deleted; every new connection starts there.
const GeneralRoomID = "general"

// RoomRegistry owns the set of rooms and their message histories.
// All state is in-memory and bound to the process lifetime.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
	order []string // room IDs in creation order, for stable listings

	// historyLimit caps messages kept per room; zero means unbounded.
	historyLimit int
}

// NewRoomRegistry creates a registry pre-populated with the "general" room.
func NewRoomRegistry(historyLimit int) *RoomRegistry {
	r := &RoomRegistry{
		rooms:        make(map[string]*models.Room),
		historyLimit: historyLimit,
	}
	r.rooms[GeneralRoomID] = &models.Room{
		ID:        GeneralRoomID,
		Name:      "General",
		Kind:      models.RoomPublic,
		Members:   make(map[string]struct{}),
		CreatedAt: time.Now().UTC(),
	}
	r.order = append(r.order, GeneralRoomID)
	return r
}

// CreateRoom creates a new room and makes it visible to subsequent lookups.
// Private rooms require a non-empty secret, which is stored as a bcrypt hash.
func (r *RoomRegistry) CreateRoom(name string, kind models.RoomKind, secret string) (models.RoomSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.RoomSummary{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if !kind.Valid() {
		return models.RoomSummary{}, fmt.Errorf("%w: type must be public or private", ErrInvalidArgument)
	}
	if kind == models.RoomPrivate && secret == "" {
		return models.RoomSummary{}, fmt.Errorf("%w: password required for private rooms", ErrInvalidArgument)
	}

	var secretHash []byte
	if kind == models.RoomPrivate {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return models.RoomSummary{}, err
		}
		secretHash = hash
	}

	room := &models.Room{
		ID:         uuid.NewString(),
		Name:       name,
		Kind:       kind,
		SecretHash: secretHash,
		Members:    make(map[string]struct{}),
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.rooms[room.ID] = room
	r.order = append(r.order, room.ID)
	r.mu.Unlock()

	return room.Summary(), nil
}

// Get returns the summary of the room with the given ID.
func (r *RoomRegistry) Get(id string) (models.RoomSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return models.RoomSummary{}, ErrNotFound
	}
	return room.Summary(), nil
}

// List returns summaries of all rooms in creation order.
func (r *RoomRegistry) List() []models.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]models.RoomSummary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, r.rooms[id].Summary())
	}
	return summaries
}

// Count returns the number of rooms.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// AppendMessage appends a message to the room's history and returns it.
func (r *RoomRegistry) AppendMessage(roomID, author, text string) (models.Message, error) {
	if author == "" || text == "" {
		return models.Message{}, fmt.Errorf("%w: username and text are required", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return models.Message{}, ErrNotFound
	}

	msg := models.Message{
		ID:        ulid.Make().String(),
		RoomID:    roomID,
		Author:    author,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	room.History = append(room.History, msg)

	// Trim oldest messages once past the cap.
	if r.historyLimit > 0 && len(room.History) > r.historyLimit {
		room.History = append(room.History[:0:0], room.History[len(room.History)-r.historyLimit:]...)
	}

	return msg, nil
}

// RecentMessages returns the last limit messages of a room in arrival order.
func (r *RoomRegistry) RecentMessages(roomID string, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}

	history := room.History
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]models.Message, len(history))
	copy(out, history)
	return out, nil
}

// VerifyAccess checks a supplied secret against the room.
// Public rooms accept any secret; private rooms require a bcrypt match.
func (r *RoomRegistry) VerifyAccess(roomID, secret string) error {
	r.mu.RLock()
	room, ok := r.rooms[roomID]
	var hash []byte
	if ok {
		hash = room.SecretHash
	}
	r.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if len(hash) == 0 {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return ErrForbidden
	}
	return nil
}

// AddMember records a connection as occupying the room. Idempotent; adding to
// an unknown room is a no-op.
func (r *RoomRegistry) AddMember(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		room.Members[connID] = struct{}{}
	}
}

// RemoveMember retracts a connection's membership. Removing a non-member or
// from an unknown room is a no-op, supporting best-effort disconnect cleanup.
func (r *RoomRegistry) RemoveMember(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		delete(room.Members, connID)
	}
}
