package chat

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInboundVariants(t *testing.T) {
	cases := []struct {
		raw  string
		want Inbound
	}{
		{`{"type":"set_username","username":"alice"}`, SetUsername{Username: "alice"}},
		{`{"type":"join_room","roomId":"r2","password":"pw"}`, JoinRoom{RoomID: "r2", Password: "pw"}},
		{`{"type":"message","text":"hi"}`, SendMessage{Text: "hi"}},
		{`{"type":"message","username":"bob","text":"hi"}`, SendMessage{Username: "bob", Text: "hi"}},
		{`{"type":"typing","isTyping":true}`, Typing{IsTyping: true}},
	}

	for _, tc := range cases {
		ev, err := DecodeInbound([]byte(tc.raw))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.raw, err)
		}
		if ev != tc.want {
			t.Fatalf("decode %s: expected %#v, got %#v", tc.raw, tc.want, ev)
		}
	}
}

func TestDecodeInboundUnknownTag(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"shrug"}`))
	if !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestDecodeInboundMalformed(t *testing.T) {
	_, err := DecodeInbound([]byte(`{not json`))
	if !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestFramePayloadsNeverNull(t *testing.T) {
	// Frames built from empty histories must marshal messages as [] not null
	raw, err := json.Marshal(initFrame("c1", nil, "general", nil))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Data struct {
			Messages []json.RawMessage `json:"messages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Data.Messages == nil {
		t.Fatal("init messages should marshal as an empty array")
	}
}
