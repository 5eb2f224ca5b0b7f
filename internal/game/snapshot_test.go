package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicSnapshotNeverLeaksCorrectIndex(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	snap := room.PublicSnapshot()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctIndex")

	hs, err := room.HostSnapshotFor(room.HostToken())
	require.NoError(t, err)
	require.NotNil(t, hs.CorrectIndex)
	assert.Equal(t, currentQuestion(t, room).Correct, *hs.CorrectIndex)
}

func TestHostSnapshotRequiresToken(t *testing.T) {
	room, _, _ := newTestRoom(t)
	_, err := room.HostSnapshotFor("nope")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSnapshotPlayersSortedByName(t *testing.T) {
	room, _, _ := newTestRoom(t)
	joinPlayer(t, room, "Zoe")
	joinPlayer(t, room, "Alice")
	joinPlayer(t, room, "Milo")

	snap := room.PublicSnapshot()
	require.Len(t, snap.Players, 3)
	assert.Equal(t, "Alice", snap.Players[0].Name)
	assert.Equal(t, "Milo", snap.Players[1].Name)
	assert.Equal(t, "Zoe", snap.Players[2].Name)
}

func TestSnapshotShopListing(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	enterReveal(t, room, clk, p)

	snap := room.PublicSnapshot()
	assert.Empty(t, snap.Shop)

	require.NoError(t, room.OpenShop(room.HostToken(), true))
	snap = room.PublicSnapshot()
	assert.True(t, snap.ShopOpen)
	// Field trip carries the full catalogue in stable order
	require.Len(t, snap.Shop, len(ItemOrder))
	assert.Equal(t, ItemDoublePoints, snap.Shop[0].ID)
}

func TestSnapshotAnsweredFlagWithoutAnswer(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	snap := room.PublicSnapshot()
	assert.False(t, snap.Players[0].Answered)

	require.NoError(t, room.Answer(p.ID, 0))
	snap = room.PublicSnapshot()
	assert.True(t, snap.Players[0].Answered)
}

func TestSnapshotRevealAtTracksFreezeBonus(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	room.mu.Lock()
	room.players[p.ID].Inventory[ItemFreezeTime] = 1
	room.mu.Unlock()

	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	before := room.PublicSnapshot().Question.RevealAt
	require.NoError(t, room.UseItem(p.ID, ItemFreezeTime))
	after := room.PublicSnapshot().Question.RevealAt
	assert.Equal(t, before+(10*time.Second).Milliseconds(), after)

	assert.Equal(t, int64(10000), room.PublicSnapshot().Players[0].FreezeBonusMs)
}
