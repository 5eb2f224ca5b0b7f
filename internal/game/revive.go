package game

// RequestRevive files the single host-approval ticket. Not available
// mid-question or during the boss fight.
func (r *Room) RequestRevive(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.Eliminated {
		return ErrNotEliminated
	}
	if r.phase == PhaseQuestion || r.phase == PhaseBoss || r.phase == PhaseCountdown {
		return ErrWrongPhase
	}
	if r.act != nil && r.act.ID == ActBossFight {
		return ErrWrongPhase
	}
	if r.revive != nil {
		return ErrRevivePending
	}

	r.revive = &PendingRevive{
		PlayerID:    playerID,
		PlayerName:  p.Name,
		RequestedAt: r.now(),
	}

	// The ticket reaches the host through the host-scoped snapshot.
	r.queueState()
	r.queueToPlayer(p, "revive:pending", map[string]any{"playerId": playerID})
	return nil
}

// ApproveRevive restores the requester to full lives
func (r *Room) ApproveRevive(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.revive == nil {
		return ErrNoRevive
	}

	ticket := r.revive
	r.revive = nil
	p, ok := r.players[ticket.PlayerID]
	if ok {
		p.Lives = r.cfg.MaxLives
		p.Eliminated = false
	}

	r.queueState()
	if ok {
		r.queueToPlayer(p, "revive:result", map[string]any{"approved": true})
	}
	return nil
}

// DeclineRevive clears the ticket without changing the player
func (r *Room) DeclineRevive(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.revive == nil {
		return ErrNoRevive
	}

	ticket := r.revive
	r.revive = nil

	r.queueState()
	if p, ok := r.players[ticket.PlayerID]; ok {
		r.queueToPlayer(p, "revive:result", map[string]any{"approved": false})
	}
	return nil
}
