package models

import "time"

// Message represents a single chat message. Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"` // ULID
	RoomID    string    `json:"roomId"`
	Author    string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
