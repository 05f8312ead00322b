package models

import "time"

// RoomKind distinguishes open rooms from password-protected ones.
type RoomKind string

const (
	RoomPublic  RoomKind = "public"
	RoomPrivate RoomKind = "private"
)

// Valid reports whether k is a known room kind.
func (k RoomKind) Valid() bool {
	return k == RoomPublic || k == RoomPrivate
}

// Room represents a chat room and its message history.
// A private room always carries a non-empty SecretHash; a public room never does.
type Room struct {
	ID         string
	Name       string
	Kind       RoomKind
	SecretHash []byte // bcrypt hash of the room password, private rooms only
	History    []Message
	Members    map[string]struct{} // connection IDs currently in the room
	CreatedAt  time.Time
}

// RoomSummary is the externally visible projection of a room.
// It never includes the secret, only whether one is set.
type RoomSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         RoomKind  `json:"type"`
	HasPassword  bool      `json:"hasPassword"`
	UserCount    int       `json:"userCount"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary builds the client-facing projection of the room.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:           r.ID,
		Name:         r.Name,
		Kind:         r.Kind,
		HasPassword:  len(r.SecretHash) > 0,
		UserCount:    len(r.Members),
		MessageCount: len(r.History),
		CreatedAt:    r.CreatedAt,
	}
}
