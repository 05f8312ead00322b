package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/parley-chat/parley/internal/api"
	"github.com/parley-chat/parley/internal/chat"
	"github.com/parley-chat/parley/internal/handlers"
	"github.com/parley-chat/parley/internal/registry"
)

func newTestAPI(t *testing.T) (*httptest.Server, *registry.RoomRegistry, *registry.SessionRegistry) {
	t.Helper()

	rooms := registry.NewRoomRegistry(0)
	sessions := registry.NewSessionRegistry()
	chatSrv := chat.NewServer(rooms, sessions, []string{"*"}, zerolog.Nop())
	h := handlers.NewHandler(rooms, sessions, chatSrv)

	ts := httptest.NewServer(api.NewRouter(zerolog.Nop(), h, chatSrv))
	t.Cleanup(ts.Close)
	return ts, rooms, sessions
}

func doRequest(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decoding %s: %v", raw, err)
	}
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, raw, &body)
	return body.Error
}

func TestListRoomsIncludesGeneral(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodGet, ts.URL+"/api/rooms", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}

	var list handlers.RoomListResponse
	decode(t, raw, &list)
	if len(list.Rooms) != 1 || list.Rooms[0].ID != registry.GeneralRoomID {
		t.Fatalf("expected only the general room, got %+v", list.Rooms)
	}
}

func TestCreateRoom(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/rooms",
		handlers.CreateRoomRequest{Name: "dev", Type: "public"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}

	var created handlers.RoomResponse
	decode(t, raw, &created)
	if created.Room.Name != "dev" || created.Room.ID == "" {
		t.Fatalf("unexpected room payload: %+v", created.Room)
	}
	if created.Room.HasPassword {
		t.Fatal("public room should not report a password")
	}

	// The new room shows up in the list immediately
	status, raw = doRequest(t, http.MethodGet, ts.URL+"/api/rooms/"+created.Room.ID, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for created room, got %d: %s", status, raw)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	cases := []struct {
		name string
		req  handlers.CreateRoomRequest
	}{
		{"empty name", handlers.CreateRoomRequest{Type: "public"}},
		{"unknown type", handlers.CreateRoomRequest{Name: "x", Type: "secret"}},
		{"private without password", handlers.CreateRoomRequest{Name: "x", Type: "private"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/rooms", tc.req)
			if status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", status, raw)
			}
			if errorMessage(t, raw) == "" {
				t.Fatal("expected an error message in the body")
			}
		})
	}
}

func TestGetRoomNotFound(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodGet, ts.URL+"/api/rooms/nope", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", status, raw)
	}
	if msg := errorMessage(t, raw); msg != "Room not found" {
		t.Fatalf("expected 'Room not found', got %q", msg)
	}
}

func TestJoinRoom(t *testing.T) {
	ts, rooms, sessions := newTestAPI(t)

	private, err := rooms.CreateRoom("secret-room", "private", "pw123")
	if err != nil {
		t.Fatal(err)
	}

	// Public rooms join without a body
	status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/rooms/"+registry.GeneralRoomID+"/join", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	var joined handlers.JoinRoomResponse
	decode(t, raw, &joined)
	if !joined.Success || joined.Room.ID != registry.GeneralRoomID {
		t.Fatalf("unexpected join response: %+v", joined)
	}

	status, raw = doRequest(t, http.MethodPost, ts.URL+"/api/rooms/"+private.ID+"/join",
		handlers.JoinRoomRequest{Password: "wrong"})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", status, raw)
	}
	if msg := errorMessage(t, raw); msg != "Incorrect password" {
		t.Fatalf("expected 'Incorrect password', got %q", msg)
	}

	status, _ = doRequest(t, http.MethodPost, ts.URL+"/api/rooms/"+private.ID+"/join",
		handlers.JoinRoomRequest{Password: "pw123"})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for correct password, got %d", status)
	}

	status, _ = doRequest(t, http.MethodPost, ts.URL+"/api/rooms/nope/join", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}

	// The synchronous join is a password check only; no session state changes
	if sessions.Count() != 0 {
		t.Fatalf("join endpoint should not create sessions, got %d", sessions.Count())
	}
	room, _ := rooms.Get(private.ID)
	if room.UserCount != 0 {
		t.Fatalf("join endpoint should not add membership, got %d", room.UserCount)
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/rooms/"+registry.GeneralRoomID+"/messages",
		handlers.PostMessageRequest{Username: "alice", Text: "hello"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}

	var posted handlers.MessageResponse
	decode(t, raw, &posted)
	if posted.Message.ID == "" || posted.Message.Author != "alice" || posted.Message.Text != "hello" {
		t.Fatalf("unexpected message payload: %+v", posted.Message)
	}

	status, raw = doRequest(t, http.MethodGet, ts.URL+"/api/rooms/"+registry.GeneralRoomID+"/messages", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	var list handlers.MessageListResponse
	decode(t, raw, &list)
	if len(list.Messages) != 1 || list.Messages[0].ID != posted.Message.ID {
		t.Fatalf("expected the posted message back, got %+v", list.Messages)
	}
}

func TestPostMessageValidation(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/rooms/"+registry.GeneralRoomID+"/messages",
		handlers.PostMessageRequest{Username: "alice"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d: %s", status, raw)
	}

	status, raw = doRequest(t, http.MethodPost, ts.URL+"/api/rooms/nope/messages",
		handlers.PostMessageRequest{Username: "alice", Text: "hi"})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d: %s", status, raw)
	}
}

func TestListMessagesEmptyRoomIsArray(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodGet, ts.URL+"/api/rooms/"+registry.GeneralRoomID+"/messages", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}

	var shape struct {
		Messages []json.RawMessage `json:"messages"`
	}
	decode(t, raw, &shape)
	if shape.Messages == nil {
		t.Fatal("empty history should encode as [] not null")
	}
}

func TestLegacyGeneralMessages(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	status, raw := doRequest(t, http.MethodPost, ts.URL+"/api/messages",
		handlers.PostMessageRequest{Username: "alice", Text: "legacy"})
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}

	var posted handlers.MessageResponse
	decode(t, raw, &posted)
	if posted.Message.RoomID != registry.GeneralRoomID {
		t.Fatalf("legacy post should land in general, got %q", posted.Message.RoomID)
	}

	status, raw = doRequest(t, http.MethodGet, ts.URL+"/api/messages", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	var list handlers.MessageListResponse
	decode(t, raw, &list)
	if len(list.Messages) != 1 || list.Messages[0].Text != "legacy" {
		t.Fatalf("expected legacy message back, got %+v", list.Messages)
	}
}
