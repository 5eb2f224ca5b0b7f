package game

import "time"

// OpenShop opens or closes the shop. Permitted around questions: reveal,
// shop, intermission.
func (r *Room) OpenShop(token string, open bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	switch r.phase {
	case PhaseReveal, PhaseShop, PhaseIntermission:
	default:
		return ErrWrongPhase
	}

	if open {
		if r.phase != PhaseShop {
			r.shopReturn = r.phase
			r.phase = PhaseShop
		}
		r.shopOpen = true
	} else {
		r.shopOpen = false
		if r.phase == PhaseShop {
			if r.shopReturn == "" {
				r.shopReturn = PhaseReveal
			}
			r.phase = r.shopReturn
		}
	}

	r.queueState()
	return nil
}

// Buy validates a purchase against the current act's allowed set, debits
// coins, and arms passive buffs immediately.
func (r *Room) Buy(playerID string, itemID ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.shopOpen {
		return ErrShopClosed
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	item, ok := Items[itemID]
	if !ok {
		return ErrUnknownItem
	}
	if r.act == nil || !r.act.Config.allowsItem(itemID) {
		return ErrItemNotAllowed
	}
	if p.Coins < item.Cost {
		return ErrNotEnoughCoins
	}

	p.Coins -= item.Cost
	p.Inventory[itemID]++

	if item.Kind == KindPassive {
		switch itemID {
		case ItemDoublePoints:
			p.DoublePoints = true
		case ItemShield:
			p.Shield = true
		}
		// buyback_token stays in inventory until elimination triggers it.
	}

	r.queueState()
	return nil
}

// UseItem triggers an active item during a live question. Rejected during
// the wager round and after lock-in.
func (r *Room) UseItem(playerID string, itemID ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	item, ok := Items[itemID]
	if !ok {
		return ErrUnknownItem
	}
	if item.Kind != KindActive {
		return ErrItemNotActive
	}
	if r.act != nil && r.act.ID == ActWagerRound {
		return ErrItemNotAllowed
	}
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
	if p.Eliminated {
		return ErrEliminated
	}
	if p.LockedIn {
		return ErrAnswerLocked
	}
	if r.now().After(q.effectiveDeadline(playerID, r.alivePlayers())) {
		return ErrTimeUp
	}
	if !p.hasItem(itemID) {
		return ErrItemNotOwned
	}

	p.consumeItem(itemID)

	switch itemID {
	case ItemFiftyFifty:
		removed := pickWrongChoices(q.Question, 2)
		r.queueState()
		r.queueToPlayer(p, "item:fifty_fifty", map[string]any{"removedIndexes": removed})
	case ItemFreezeTime:
		q.FreezeBonus[playerID] += FreezeTimeBonusMs * time.Millisecond
		r.queueState()
		r.queueToPlayer(p, "item:freeze", map[string]any{
			"addedMs": FreezeTimeBonusMs,
			"endsAt":  q.playerEndsAt(playerID).UnixMilli(),
		})
	}
	return nil
}

// Buyback is the manual coin-funded revive for an eliminated player
func (r *Room) Buyback(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !p.Eliminated {
		return ErrNotEliminated
	}
	if p.Coins < r.cfg.BuybackCostCoins {
		return ErrNotEnoughCoins
	}

	p.Coins -= r.cfg.BuybackCostCoins
	p.Lives = 1
	p.Eliminated = false

	r.queueState()
	return nil
}
