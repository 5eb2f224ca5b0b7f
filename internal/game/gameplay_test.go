package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerAndLockIn(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))

	// No answers during the countdown
	err := room.Answer(p.ID, 0)
	assert.ErrorIs(t, err, ErrWrongPhase)

	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	// Lock-in without an answer is rejected
	assert.ErrorIs(t, room.LockIn(p.ID), ErrNoAnswer)

	// Last submission wins until lock-in
	require.NoError(t, room.Answer(p.ID, 0))
	require.NoError(t, room.Answer(p.ID, q.Correct))
	require.NoError(t, room.LockIn(p.ID))

	assert.ErrorIs(t, room.LockIn(p.ID), ErrAnswerLocked)
	assert.ErrorIs(t, room.Answer(p.ID, 0), ErrAnswerLocked)

	assert.ErrorIs(t, room.Answer(p.ID, len(q.Choices)), ErrInvalidAnswer)
	assert.ErrorIs(t, room.Answer(p.ID, -1), ErrInvalidAnswer)
}

func TestAnswerDeadline(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	duration := 22 * time.Second // homeroom

	// Exactly at the deadline still counts
	clk.Advance(duration)
	assert.NoError(t, room.Answer(p.ID, 0))

	// One millisecond past it does not
	clk.Advance(time.Millisecond)
	assert.ErrorIs(t, room.Answer(p.ID, 1), ErrTimeUp)
	assert.ErrorIs(t, room.LockIn(p.ID), ErrTimeUp)
}

func TestForcedRevealShortCircuit(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	a := joinPlayer(t, room, "Alice")
	b := joinPlayer(t, room, "Bobby")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	// Reveal before the shared deadline is too early
	assert.ErrorIs(t, room.Reveal(room.HostToken()), ErrRevealTooEarly)

	clk.Advance(2 * time.Second)
	require.NoError(t, room.Answer(a.ID, 0))
	require.NoError(t, room.LockIn(a.ID))
	assert.ErrorIs(t, room.Reveal(room.HostToken()), ErrRevealTooEarly)

	// Once every active player has locked in, reveal opens immediately
	require.NoError(t, room.Answer(b.ID, 1))
	require.NoError(t, room.LockIn(b.ID))
	require.NoError(t, room.Reveal(room.HostToken()))
	assert.Equal(t, PhaseReveal, room.Phase())
}

func TestShortCircuitClosesAnswerWindow(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	a := joinPlayer(t, room, "Alice")
	b := joinPlayer(t, room, "Bobby")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	clk.Advance(time.Second)
	require.NoError(t, room.Answer(a.ID, 0))
	require.NoError(t, room.LockIn(a.ID))
	require.NoError(t, room.Answer(b.ID, 0))
	require.NoError(t, room.LockIn(b.ID))

	// The forced reveal point caps every player's answer window
	clk.Advance(time.Millisecond)
	assert.ErrorIs(t, room.Answer(a.ID, 1), ErrTimeUp)
}

func TestRevealLocksQuestion(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	require.NoError(t, room.Answer(p.ID, 0))
	clk.Advance(23 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))

	// Double reveal and post-reveal answers are rejected
	assert.ErrorIs(t, room.Reveal(room.HostToken()), ErrWrongPhase)
	assert.ErrorIs(t, room.Answer(p.ID, 1), ErrWrongPhase)
}

func TestFreezeTimeExtendsPersonalDeadline(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	a := joinPlayer(t, room, "Alice")
	b := joinPlayer(t, room, "Bobby")

	room.mu.Lock()
	room.players[a.ID].Inventory[ItemFreezeTime] = 1
	room.mu.Unlock()

	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)

	require.NoError(t, room.UseItem(a.ID, ItemFreezeTime))

	// Past the shared deadline Alice may still answer, Bobby may not
	clk.Advance(22*time.Second + 5*time.Second)
	assert.NoError(t, room.Answer(a.ID, 0))
	assert.ErrorIs(t, room.Answer(b.ID, 0), ErrTimeUp)

	// The reveal point waits for the latest personal deadline
	assert.ErrorIs(t, room.Reveal(room.HostToken()), ErrRevealTooEarly)
	clk.Advance(6 * time.Second)
	assert.NoError(t, room.Reveal(room.HostToken()))
}
