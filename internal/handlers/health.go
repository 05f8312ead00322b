package handlers

import (
	"net/http"
	"time"
)

const version = "0.1.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
	Timestamp   string `json:"timestamp"`
}

// Health handles the health check endpoint. The service carries no external
// dependencies, so a responsive process is a healthy one.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     version,
		Connections: h.sessions.Count(),
		Rooms:       h.rooms.Count(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}
