package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parley-chat/parley/internal/chat"
	"github.com/parley-chat/parley/internal/registry"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	rooms    *registry.RoomRegistry
	sessions *registry.SessionRegistry
	chat     *chat.Server
	started  time.Time
}

// NewHandler creates a new Handler with the given registries and chat server.
func NewHandler(rooms *registry.RoomRegistry, sessions *registry.SessionRegistry, chatSrv *chat.Server) *Handler {
	return &Handler{
		rooms:    rooms,
		sessions: sessions,
		chat:     chatSrv,
		started:  time.Now(),
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
