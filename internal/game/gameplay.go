package game

// Answer records a player's chosen index. The last submission wins. An
// ALL_IN wager player gets exactly one post-lockin final swap.
func (r *Room) Answer(playerID string, answerIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseQuestion && r.phase != PhaseBoss {
		return ErrWrongPhase
	}
	q := r.question
	if q == nil {
		return ErrNoQuestion
	}
	if q.Locked {
		return ErrQuestionLocked
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Eliminated {
		return ErrEliminated
	}
	if answerIndex < 0 || answerIndex >= len(q.Question.Choices) {
		return ErrInvalidAnswer
	}

	now := r.now()
	if now.After(q.effectiveDeadline(playerID, r.alivePlayers())) {
		return ErrTimeUp
	}

	if p.LockedIn {
		if !r.allInSwapAvailableLocked(p) {
			return ErrAnswerLocked
		}
		p.WagerSwapUsed = true
	}

	q.Answers[playerID] = answerIndex
	r.queueState()
	return nil
}

// allInSwapAvailableLocked reports whether the player may replace a
// locked-in answer: ALL_IN tier on the live wager question, swap unused.
func (r *Room) allInSwapAvailableLocked(p *Player) bool {
	if r.question == nil || !r.question.IsWager || r.wager == nil {
		return false
	}
	return r.wager.Tiers[p.ID] == TierAllIn && !p.WagerSwapUsed
}

// LockIn commits the player's answer and records the lock-in time for the
// speed bonus. Locking in may trigger the all-done short-circuit.
func (r *Room) LockIn(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseQuestion && r.phase != PhaseBoss {
		return ErrWrongPhase
	}
	q := r.question
	if q == nil {
		return ErrNoQuestion
	}
	if q.Locked {
		return ErrQuestionLocked
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Eliminated {
		return ErrEliminated
	}
	if p.LockedIn {
		return ErrAnswerLocked
	}
	if _, answered := q.Answers[playerID]; !answered {
		return ErrNoAnswer
	}

	now := r.now()
	if now.After(q.effectiveDeadline(playerID, r.alivePlayers())) {
		return ErrTimeUp
	}

	p.LockedIn = true
	q.LockinTime[playerID] = now

	// If every active player is done the host may reveal immediately.
	allDone := true
	for _, alive := range r.alivePlayers() {
		if !q.playerDone(alive, now) {
			allDone = false
			break
		}
	}
	if allDone && q.ForcedRevealAt.IsZero() {
		q.ForcedRevealAt = now
	}

	r.queueState()
	return nil
}
