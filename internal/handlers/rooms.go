package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parley-chat/parley/internal/models"
	"github.com/parley-chat/parley/internal/registry"
)

// fetchLimit is how many messages the request/response surface returns.
const fetchLimit = 50

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Password string `json:"password,omitempty"`
}

// RoomResponse wraps a single room summary.
type RoomResponse struct {
	Room models.RoomSummary `json:"room"`
}

// RoomListResponse represents the room list response.
type RoomListResponse struct {
	Rooms []models.RoomSummary `json:"rooms"`
}

// JoinRoomRequest represents the synchronous join (password check) request.
type JoinRoomRequest struct {
	Password string `json:"password,omitempty"`
}

// JoinRoomResponse represents a successful password check.
type JoinRoomResponse struct {
	Success bool               `json:"success"`
	Room    models.RoomSummary `json:"room"`
}

// MessageListResponse represents the room history response.
type MessageListResponse struct {
	Messages []models.Message `json:"messages"`
}

// MessageResponse wraps a single created message.
type MessageResponse struct {
	Message models.Message `json:"message"`
}

// PostMessageRequest represents the post message request.
type PostMessageRequest struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

// ListRooms handles listing all rooms.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: h.rooms.List()})
}

// GetRoom handles fetching a single room summary.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(chi.URLParam(r, "roomID"))
	if err != nil {
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	}
	h.JSON(w, http.StatusOK, RoomResponse{Room: room})
}

// CreateRoom handles room creation. Every connected client is notified of
// the new room over the real-time surface.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	room, err := h.chat.CreateRoom(req.Name, models.RoomKind(req.Type), req.Password)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidArgument) {
			h.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	h.JSON(w, http.StatusCreated, RoomResponse{Room: room})
}

// JoinRoom handles the synchronous join: it verifies the password for
// private rooms but changes no session or membership state.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req JoinRoomRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	switch err := h.rooms.VerifyAccess(roomID, req.Password); {
	case errors.Is(err, registry.ErrNotFound):
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	case errors.Is(err, registry.ErrForbidden):
		h.Error(w, http.StatusForbidden, "Incorrect password")
		return
	case err != nil:
		h.Error(w, http.StatusInternalServerError, "failed to verify access")
		return
	}

	room, err := h.rooms.Get(roomID)
	if err != nil {
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	}

	h.JSON(w, http.StatusOK, JoinRoomResponse{Success: true, Room: room})
}

// ListMessages handles fetching the most recent messages of a room.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.rooms.RecentMessages(chi.URLParam(r, "roomID"), fetchLimit)
	if err != nil {
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	h.JSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

// PostMessage handles posting a message to a room. Members of the room are
// notified over the real-time surface, exactly as for a WebSocket message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	h.postMessage(w, r, chi.URLParam(r, "roomID"))
}

// ListGeneralMessages is the legacy endpoint for the general room history.
func (h *Handler) ListGeneralMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.rooms.RecentMessages(registry.GeneralRoomID, fetchLimit)
	if err != nil || messages == nil {
		messages = []models.Message{}
	}
	h.JSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

// PostGeneralMessage is the legacy endpoint posting to the general room.
func (h *Handler) PostGeneralMessage(w http.ResponseWriter, r *http.Request) {
	h.postMessage(w, r, registry.GeneralRoomID)
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request, roomID string) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.chat.PostMessage(roomID, req.Username, req.Text)
	switch {
	case errors.Is(err, registry.ErrInvalidArgument):
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, registry.ErrNotFound):
		h.Error(w, http.StatusNotFound, "Room not found")
		return
	case err != nil:
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	h.JSON(w, http.StatusCreated, MessageResponse{Message: msg})
}
