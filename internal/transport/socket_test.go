package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestDialSocketDeliversFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"status","data":{"step":"accepted"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"data","data":{"final":"ha"}}`))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	}))
	defer server.Close()

	rec := &recorder{}
	session, err := DialSocket(context.Background(), wsURL(server), rec.handler(), nil)
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer session.Close()

	closes := rec.waitForCloses(t, 1)
	events, errs, _, opened := rec.snapshot()

	if opened != 1 {
		t.Fatalf("opened = %d, want 1", opened)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v, want 2 frames", events)
	}
	for _, event := range events {
		if event.name != "" {
			t.Fatalf("socket frame carried transport-level name %q", event.name)
		}
	}
	if len(errs) != 0 {
		t.Fatalf("normal closure surfaced errors: %v", errs)
	}
	if closes[0].Initiated {
		t.Fatalf("remote close reported as client-initiated")
	}
}

func TestSocketSessionSendWritesEnvelope(t *testing.T) {
	received := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(payload)
	}))
	defer server.Close()

	rec := &recorder{}
	session, err := DialSocket(context.Background(), wsURL(server), rec.handler(), nil)
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer session.Close()

	if err := session.Send(map[string]string{"type": "generate_joke", "topic": "Mondays"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case raw := <-received:
		var envelope map[string]string
		if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
			t.Fatalf("outbound frame is not JSON: %v", err)
		}
		if envelope["type"] != "generate_joke" || envelope["topic"] != "Mondays" {
			t.Fatalf("outbound envelope = %v", envelope)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received the outbound envelope")
	}
}

func TestSocketSessionCloseIsIdempotent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}))
	defer server.Close()

	rec := &recorder{}
	session, err := DialSocket(context.Background(), wsURL(server), rec.handler(), nil)
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}

	session.Close()
	session.Close()

	closes := rec.waitForCloses(t, 1)
	if len(closes) != 1 {
		t.Fatalf("close callbacks = %d, want 1", len(closes))
	}
	if !closes[0].Initiated {
		t.Fatalf("client teardown reported as remote close")
	}
	if _, errs, _, _ := rec.snapshot(); len(errs) != 0 {
		t.Fatalf("client teardown surfaced errors: %v", errs)
	}
}

func TestDialSocketAbruptDropSurfacesError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the TCP connection without a close handshake.
		conn.UnderlyingConn().Close()
	}))
	defer server.Close()

	rec := &recorder{}
	session, err := DialSocket(context.Background(), wsURL(server), rec.handler(), nil)
	if err != nil {
		t.Fatalf("DialSocket: %v", err)
	}
	defer session.Close()

	closes := rec.waitForCloses(t, 1)
	if closes[0].Initiated {
		t.Fatalf("abrupt drop reported as client-initiated")
	}
	if _, errs, _, _ := rec.snapshot(); len(errs) != 1 {
		t.Fatalf("error callbacks = %v, want exactly one", errs)
	}
}
