package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/store"
)

func newTestSocketServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.Port = "8080"
	cfg.Server.Host = "127.0.0.1"
	st := store.NewMemoryStore(cfg, catalog.New(), zap.NewNop())
	s := NewServer(cfg, st, zap.NewNop())
	st.SetBroadcaster(s)
	return s
}

// A client whose pumps never drain fills its buffer and gets dropped
// mid-broadcast; every frame after that must be discarded, not sent on
// the closed channel.
func TestBroadcastSurvivesDroppedClient(t *testing.T) {
	s := newTestSocketServer(t)

	c := newClient("conn-1", s, nil)
	s.clients[c.ID] = c
	s.joinGroup(c, "ROOM1")

	for i := 0; i < sendBufferSize+8; i++ {
		s.Broadcast("ROOM1", "room:state", map[string]int{"seq": i})
	}
	s.Send(c.ID, "player:reveal", map[string]int{"scoreDelta": 110})

	assert.True(t, c.closed)
}

func TestSendAfterDisconnectIsDiscarded(t *testing.T) {
	s := newTestSocketServer(t)

	c := newClient("conn-1", s, nil)
	s.clients[c.ID] = c
	s.joinGroup(c, "ROOM1")

	// Disconnect closes the send channel; a broadcast racing it must not
	// reach the channel.
	require.True(t, c.close())
	s.Broadcast("ROOM1", "room:state", map[string]string{"phase": "lobby"})
	s.Send(c.ID, "room:state", nil)

	assert.False(t, c.enqueue([]byte("{}")))
	// Closing again is a no-op
	assert.False(t, c.close())
}
