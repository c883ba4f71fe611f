package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fourline-game/fourline-backend/models"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop())
}

func TestHub_RegisterLookup(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")
	h.Register("1", c)

	got, ok := h.Lookup("1")
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestHub_RegisterLastWriterWins(t *testing.T) {
	h := newTestHub()
	a := newConnection(nil, "1", "alice")
	b := newConnection(nil, "1", "alice")
	h.Register("1", a)
	h.Register("1", b)

	got, ok := h.Lookup("1")
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestHub_UnregisterSupersededKeepsReplacement(t *testing.T) {
	h := newTestHub()
	a := newConnection(nil, "1", "alice")
	b := newConnection(nil, "1", "alice")
	h.Register("1", a)
	h.Register("1", b)

	// The overwritten connection closes late; the replacement must survive.
	h.Unregister(a)

	got, ok := h.Lookup("1")
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestHub_DeliverUnregisteredIsNoop(t *testing.T) {
	h := newTestHub()
	other := newConnection(nil, "2", "bob")
	h.Register("2", other)

	ok := h.Deliver("99", &models.WSMessage{Action: models.ActionMessage})
	assert.False(t, ok)
	assert.Empty(t, other.send, "delivery to an absent user must not touch other users")
}

func TestHub_DeliverClosedConnection(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")
	h.Register("1", c)
	c.Close()

	assert.False(t, h.Deliver("1", &models.WSMessage{Action: models.ActionMessage}))
}

func TestHub_JoinLeaveEvictsEmptyRoom(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")

	h.Join("game-7", c)
	require.True(t, h.RoomExists("game-7"))

	h.Leave("game-7", c)
	assert.False(t, h.RoomExists("game-7"))
}

func TestHub_LobbyIsNeverEvicted(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")

	h.Join(LobbyRoom, c)
	h.Leave(LobbyRoom, c)
	assert.True(t, h.RoomExists(LobbyRoom))
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")
	h.Join("room", c)
	h.Join("room", c)

	h.Leave("room", c)
	assert.False(t, h.RoomExists("room"), "single leave must undo repeated joins")
}

func TestHub_BroadcastUnknownRoom(t *testing.T) {
	h := newTestHub()
	err := h.Broadcast("nowhere", &models.WSMessage{Action: models.ActionMessage})
	assert.ErrorIs(t, err, errUnknownRoom)
}

func TestHub_BroadcastSkipsClosedMembers(t *testing.T) {
	h := newTestHub()
	open := newConnection(nil, "1", "alice")
	closed := newConnection(nil, "2", "bob")
	h.Join("room", open)
	h.Join("room", closed)
	closed.Close()

	err := h.Broadcast("room", &models.WSMessage{Action: models.ActionMessage, Message: "hi"})
	require.NoError(t, err)
	assert.Len(t, open.send, 1)
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
	h := newTestHub()
	c := newConnection(nil, "1", "alice")
	other := newConnection(nil, "2", "bob")
	h.Register("1", c)
	h.Join(LobbyRoom, c)
	h.Join("game-1", c)
	h.Join("game-2", c)
	h.Join("game-2", other)

	h.Unregister(c)

	_, ok := h.Lookup("1")
	assert.False(t, ok)
	assert.False(t, h.RoomExists("game-1"), "emptied room is evicted")
	assert.True(t, h.RoomExists("game-2"), "room with remaining members survives")
	assert.True(t, h.RoomExists(LobbyRoom))
}

func TestConnection_CloseIdempotent(t *testing.T) {
	c := newConnection(nil, "1", "alice")
	c.Close()
	c.Close()
	assert.False(t, c.Open())
	assert.False(t, c.Send([]byte("x")))
}
