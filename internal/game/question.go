package game

import (
	"time"

	"classclash/internal/catalog"
)

// CurrentQuestion is the live question state. It exists from the start of
// the countdown until the next phase advance clears it.
type CurrentQuestion struct {
	Question catalog.Question
	IsWager  bool

	CountdownEndsAt time.Time
	StartedAt       time.Time // equals CountdownEndsAt
	EndsAt          time.Time
	BlackoutUntil   time.Time // zero when no blackout

	Answers     map[string]int           // playerId -> chosen index
	LockinTime  map[string]time.Time     // playerId -> lock-in moment
	FreezeBonus map[string]time.Duration // playerId -> accumulated freeze_time

	Locked         bool
	ForcedRevealAt time.Time // zero until the all-done short-circuit fires
}

func newCurrentQuestion(q catalog.Question, now time.Time, countdown, duration time.Duration) *CurrentQuestion {
	start := now.Add(countdown)
	return &CurrentQuestion{
		Question:        q,
		CountdownEndsAt: start,
		StartedAt:       start,
		EndsAt:          start.Add(duration),
		Answers:         make(map[string]int),
		LockinTime:      make(map[string]time.Time),
		FreezeBonus:     make(map[string]time.Duration),
	}
}

// playerEndsAt is the personal deadline: the shared end plus any freeze
// bonus this player has banked.
func (q *CurrentQuestion) playerEndsAt(playerID string) time.Time {
	return q.EndsAt.Add(q.FreezeBonus[playerID])
}

// revealAt is the earliest moment the host may reveal: the latest personal
// deadline among the given players, or the forced short-circuit time once
// every active player is done.
func (q *CurrentQuestion) revealAt(active []*Player) time.Time {
	if !q.ForcedRevealAt.IsZero() {
		return q.ForcedRevealAt
	}
	at := q.EndsAt
	for _, p := range active {
		if end := q.playerEndsAt(p.ID); end.After(at) {
			at = end
		}
	}
	return at
}

// effectiveDeadline bounds answer acceptance for one player: their own
// deadline, but never past the reveal point.
func (q *CurrentQuestion) effectiveDeadline(playerID string, active []*Player) time.Time {
	deadline := q.playerEndsAt(playerID)
	if reveal := q.revealAt(active); reveal.Before(deadline) {
		deadline = reveal
	}
	return deadline
}

// playerDone reports whether the player has locked in or run out their
// personal clock.
func (q *CurrentQuestion) playerDone(p *Player, now time.Time) bool {
	if _, ok := q.LockinTime[p.ID]; ok {
		return true
	}
	return now.After(q.playerEndsAt(p.ID))
}
