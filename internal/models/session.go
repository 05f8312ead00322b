package models

// Session holds the per-connection state tracked for a live client.
type Session struct {
	ID string

	// DisplayName is empty until the client sets one; message authorship
	// falls back to "Anonymous" in that case.
	DisplayName string

	// CurrentRoomID names the room the connection currently occupies.
	// Every connection is in exactly one room at a time.
	CurrentRoomID string
}

// AnonymousName is used as message authorship when a session never set a name.
const AnonymousName = "Anonymous"
