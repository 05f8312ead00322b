package handlers

import (
	"net/http"
	"time"
)

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalRooms     int     `json:"totalRooms"`
	ConnectedUsers int     `json:"connectedUsers"`
	Uptime         float64 `json:"uptime"` // seconds
}

// Stats returns service-level statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, StatsResponse{
		TotalRooms:     h.rooms.Count(),
		ConnectedUsers: h.sessions.Count(),
		Uptime:         time.Since(h.started).Seconds(),
	})
}
