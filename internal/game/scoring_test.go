package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// revealOutcomeFor digs the private reveal envelope for a connection out
// of the recorder.
func revealOutcomeFor(t *testing.T, rec *recorder, connID string) *RevealOutcome {
	t.Helper()
	for _, e := range rec.byEvent("player:reveal") {
		if e.ConnID == connID {
			out, ok := e.Data.(*RevealOutcome)
			require.True(t, ok)
			return out
		}
	}
	t.Fatalf("no player:reveal sent to %s", connID)
	return nil
}

func TestCorrectAnswerScoring(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	// Lock in halfway through the 22s homeroom window
	clk.Advance(11 * time.Second)
	require.NoError(t, room.Answer(p.ID, q.Correct))
	require.NoError(t, room.LockIn(p.ID))

	clk.Advance(11 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.Correct)
	// value 100 x act multiplier 1.0, plus floor(20 * 0.5) speed bonus
	assert.Equal(t, 10, out.SpeedBonus)
	assert.Equal(t, 110, out.ScoreDelta)
	assert.Equal(t, 50, out.CoinsDelta)
	assert.Equal(t, 0, out.LivesDelta)
	assert.Equal(t, 110, out.Score)
	assert.Equal(t, 200, out.Coins)
}

func TestNoSpeedBonusWithoutLockIn(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	require.NoError(t, room.Answer(p.ID, q.Correct))
	clk.Advance(23 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.Correct)
	assert.Equal(t, 0, out.SpeedBonus)
	assert.Equal(t, 100, out.ScoreDelta)
}

func TestDoublePointsConsumedOnCorrect(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	room.mu.Lock()
	room.players[p.ID].Inventory[ItemDoublePoints] = 1
	room.players[p.ID].DoublePoints = true
	room.mu.Unlock()

	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	require.NoError(t, room.Answer(p.ID, q.Correct))
	clk.Advance(23 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.DoublePointsUsed)
	assert.Equal(t, 200, out.ScoreDelta)

	room.mu.Lock()
	assert.False(t, room.players[p.ID].DoublePoints)
	assert.Zero(t, room.players[p.ID].Inventory[ItemDoublePoints])
	room.mu.Unlock()
}

func TestWrongAnswerCostsHeartWhenAtRisk(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartAct(room.HostToken(), ActFieldTrip))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	wrong := (q.Correct + 1) % len(q.Choices)
	require.NoError(t, room.Answer(p.ID, wrong))
	clk.Advance(19 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.False(t, out.Correct)
	assert.Equal(t, -1, out.LivesDelta)
	assert.Equal(t, 2, out.Lives)
	assert.Equal(t, 0, out.ScoreDelta)
	assert.False(t, out.Eliminated)
}

func TestWrongAnswerSafeInHomeroom(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartGame(room.HostToken()))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	wrong := (q.Correct + 1) % len(q.Choices)
	require.NoError(t, room.Answer(p.ID, wrong))
	clk.Advance(23 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.Equal(t, 0, out.LivesDelta)
	assert.Equal(t, 3, out.Lives)
}

func TestPopQuizHeartsOnlyOnHard(t *testing.T) {
	hardPack := `{
	  "id": "testpack",
	  "title": "Hard Pop Quiz",
	  "acts": {
	    "pop_quiz": [
	      {"id": "p1", "text": "Year the Berlin Wall fell?", "choices": ["1987", "1989"], "correct": 1, "value": 140, "hard": true}
	    ]
	  }
	}`
	room, clk, rec := newTestRoomWithPack(t, hardPack)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartAct(room.HostToken(), ActPopQuiz))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	wrong := (q.Correct + 1) % len(q.Choices)
	require.NoError(t, room.Answer(p.ID, wrong))
	clk.Advance(21 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.Equal(t, -1, out.LivesDelta)
}

func TestNoAnswerCountsAsWrong(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartAct(room.HostToken(), ActFieldTrip))
	enterQuestion(t, room, clk)

	clk.Advance(19 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.Nil(t, out.YourAnswer)
	assert.False(t, out.Correct)
	assert.Equal(t, -1, out.LivesDelta)
}

func TestShieldBlocksHeartLoss(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	room.mu.Lock()
	room.players[p.ID].Inventory[ItemShield] = 1
	room.players[p.ID].Shield = true
	room.mu.Unlock()

	require.NoError(t, room.StartAct(room.HostToken(), ActFieldTrip))
	enterQuestion(t, room, clk)

	clk.Advance(19 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.ShieldUsed)
	assert.Equal(t, 0, out.LivesDelta)
	assert.Equal(t, 3, out.Lives)

	room.mu.Lock()
	assert.False(t, room.players[p.ID].Shield)
	room.mu.Unlock()
}

func TestBuybackTokenAutoRevives(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	joinPlayer(t, room, "Bobby")
	room.mu.Lock()
	room.players[p.ID].Lives = 1
	room.players[p.ID].Inventory[ItemBuybackToken] = 1
	room.mu.Unlock()

	require.NoError(t, room.StartAct(room.HostToken(), ActFieldTrip))
	enterQuestion(t, room, clk)

	clk.Advance(19 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	// The life that would eliminate is restored in the same settlement
	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.BuybackUsed)
	assert.Equal(t, 0, out.LivesDelta)
	assert.Equal(t, 1, out.Lives)
	assert.False(t, out.Eliminated)

	room.mu.Lock()
	assert.Zero(t, room.players[p.ID].Inventory[ItemBuybackToken])
	room.mu.Unlock()
}

func TestEliminationEndsGameWhenNobodyLeft(t *testing.T) {
	room, clk, rec := newTestRoom(t)
	p := joinPlayer(t, room, "Alice")
	room.mu.Lock()
	room.players[p.ID].Lives = 1
	room.mu.Unlock()

	require.NoError(t, room.StartAct(room.HostToken(), ActFieldTrip))
	enterQuestion(t, room, clk)

	clk.Advance(19 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))
	room.Flush()

	out := revealOutcomeFor(t, rec, p.ConnID)
	assert.True(t, out.Eliminated)
	assert.Equal(t, PhaseEnded, room.Phase())
}

func TestBossFightVictory(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	a := joinPlayer(t, room, "Alice")
	b := joinPlayer(t, room, "Bobby")
	require.NoError(t, room.StartBoss(room.HostToken()))

	room.mu.Lock()
	require.NotNil(t, room.boss)
	assert.Equal(t, 2, room.boss.HP)
	room.mu.Unlock()

	enterQuestion(t, room, clk)
	assert.Equal(t, PhaseBoss, room.Phase())
	q := currentQuestion(t, room)

	// Two correct answers deal two points of damage
	require.NoError(t, room.Answer(a.ID, q.Correct))
	require.NoError(t, room.Answer(b.ID, q.Correct))
	clk.Advance(21 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))

	assert.Equal(t, PhaseEnded, room.Phase())
	snap := room.PublicSnapshot()
	assert.True(t, snap.BossDefeated)
	require.NotNil(t, snap.Boss)
	assert.Equal(t, 0, snap.Boss.HP)
}

func TestBossSurvivesPartialDamage(t *testing.T) {
	room, clk, _ := newTestRoom(t)
	a := joinPlayer(t, room, "Alice")
	require.NoError(t, room.StartBoss(room.HostToken()))
	enterQuestion(t, room, clk)
	q := currentQuestion(t, room)

	require.NoError(t, room.Answer(a.ID, q.Correct))
	clk.Advance(21 * time.Second)
	require.NoError(t, room.Reveal(room.HostToken()))

	assert.Equal(t, PhaseReveal, room.Phase())
	snap := room.PublicSnapshot()
	require.NotNil(t, snap.Boss)
	assert.Equal(t, 1, snap.Boss.HP)
}
