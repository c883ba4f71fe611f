package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/models"
)

func newTestHandler() (*Handler, *memStore, *memArchive) {
	store := newMemStore()
	archive := newMemArchive()
	hub := NewHub(zap.NewNop())
	return NewHandler(store, archive, hub, zap.NewNop()), store, archive
}

// testConn builds a registered connection without a real socket. Outbound
// messages land on its send channel.
func testConn(h *Handler, userID, username string) *Connection {
	c := newConnection(nil, userID, username)
	h.hub.Register(userID, c)
	return c
}

// recv pops the next outbound envelope from c, failing the test when none
// arrives.
func recv(t *testing.T, c *Connection) models.WSMessage {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg models.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("undecodable outbound message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no outbound message")
		return models.WSMessage{}
	}
}

// assertSilent asserts nothing is queued for c.
func assertSilent(t *testing.T, c *Connection) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected outbound message: %s", raw)
	default:
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}
