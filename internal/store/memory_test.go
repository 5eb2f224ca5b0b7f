package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/game"
)

const storePackJSON = `{
  "id": "testpack",
  "title": "Test Pack",
  "acts": {
    "homeroom": [
      {"id": "h1", "text": "Two plus two?", "choices": ["3", "4"], "correct": 1, "value": 100}
    ]
  }
}`

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.Load([]byte(storePackJSON), ""))
	return NewMemoryStore(config.DefaultConfig(), cat, zap.NewNop())
}

func TestCreateRoom(t *testing.T) {
	s := newTestStore(t)

	room, token, err := s.CreateRoom("Ms Frizzle", "")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, room.HostToken())
	assert.Equal(t, game.PhaseLobby, room.Phase())
	assert.Equal(t, "testpack", room.PackID())

	// Codes come from the confusion-safe alphabet
	assert.Len(t, room.Code, 5)
	for _, ch := range room.Code {
		assert.Contains(t, roomCodeAlphabet, string(ch))
	}
	for _, banned := range []string{"I", "L", "O", "0", "1"} {
		assert.NotContains(t, roomCodeAlphabet, banned)
	}

	got, err := s.GetRoom(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, got)
	assert.Equal(t, 1, s.RoomCount())
}

func TestCreateRoomUnknownPack(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.CreateRoom("Ms Frizzle", "does-not-exist")
	assert.ErrorIs(t, err, game.ErrNoPacks)
}

func TestGetRoomMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRoom("XXXXX")
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestConnAssociation(t *testing.T) {
	s := newTestStore(t)
	room, _, err := s.CreateRoom("Ms Frizzle", "")
	require.NoError(t, err)

	s.Associate("conn-1", room.Code)
	got, ok := s.RoomForConn("conn-1")
	require.True(t, ok)
	assert.Same(t, room, got)

	s.Dissociate("conn-1")
	_, ok = s.RoomForConn("conn-1")
	assert.False(t, ok)
}

func TestDropDisconnectsPlayer(t *testing.T) {
	s := newTestStore(t)
	room, _, err := s.CreateRoom("Ms Frizzle", "")
	require.NoError(t, err)
	p, err := room.Join("Alice", "conn-1")
	require.NoError(t, err)
	s.Associate("conn-1", room.Code)

	s.Drop("conn-1")
	_, ok := s.RoomForConn("conn-1")
	assert.False(t, ok)
	assert.False(t, p.Connected)

	// Dropping an unknown connection is a no-op
	s.Drop("never-seen")
}

func TestDestroyRoom(t *testing.T) {
	s := newTestStore(t)
	room, _, err := s.CreateRoom("Ms Frizzle", "")
	require.NoError(t, err)
	s.Associate("conn-1", room.Code)

	s.DestroyRoom(room.Code)
	_, err = s.GetRoom(room.Code)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	_, ok := s.RoomForConn("conn-1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.RoomCount())

	// Idempotent
	s.DestroyRoom(room.Code)
}

func TestCleanupExpired(t *testing.T) {
	s := newTestStore(t)

	// connected room: the host holds a live connection
	connected, _, err := s.CreateRoom("Host One", "")
	require.NoError(t, err)
	connected.AttachHost("conn-host")

	// abandoned room: nobody ever connected
	abandoned, _, err := s.CreateRoom("Host Two", "")
	require.NoError(t, err)

	// Nothing is stale yet
	assert.Equal(t, 0, s.CleanupExpired(time.Now()))
	assert.Equal(t, 2, s.RoomCount())

	// Past the no-connection TTL only the abandoned room goes
	destroyed := s.CleanupExpired(time.Now().Add(16 * time.Minute))
	assert.Equal(t, 1, destroyed)
	_, err = s.GetRoom(abandoned.Code)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)
	_, err = s.GetRoom(connected.Code)
	assert.NoError(t, err)

	// Past the idle timeout everything goes
	destroyed = s.CleanupExpired(time.Now().Add(3 * time.Hour))
	assert.Equal(t, 1, destroyed)
	assert.Equal(t, 0, s.RoomCount())
}

func TestCreateRoomCodeSpaceExhausted(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.Load([]byte(storePackJSON), ""))
	cfg := config.DefaultConfig()
	cfg.Game.RoomCodeLength = 3
	s := NewMemoryStore(cfg, cat, zap.NewNop())

	// Occupy every 3-char code so generation cannot find a free one
	s.mu.Lock()
	for _, a := range roomCodeAlphabet {
		for _, b := range roomCodeAlphabet {
			for _, c := range roomCodeAlphabet {
				s.rooms[string([]rune{a, b, c})] = nil
			}
		}
	}
	s.mu.Unlock()

	_, _, err := s.CreateRoom("Ms Frizzle", "")
	assert.ErrorIs(t, err, game.ErrNoRoomCode)
}

func TestGenerateRoomCodeShape(t *testing.T) {
	s := newTestStore(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := s.generateRoomCode()
		assert.Len(t, code, 5)
		assert.Equal(t, strings.ToUpper(code), code)
		for _, ch := range code {
			assert.Contains(t, roomCodeAlphabet, string(ch))
		}
		seen[code] = true
	}
	// 50 draws from a 31^5 space should not all collide
	assert.Greater(t, len(seen), 1)
}
