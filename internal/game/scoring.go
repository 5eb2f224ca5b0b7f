package game

import "math"

// RevealOutcome is the private per-player reveal envelope
type RevealOutcome struct {
	QuestionID   string `json:"questionId"`
	CorrectIndex int    `json:"correctIndex"`
	YourAnswer   *int   `json:"yourAnswer"`
	Correct      bool   `json:"correct"`

	ScoreDelta int `json:"scoreDelta"`
	CoinsDelta int `json:"coinsDelta"`
	LivesDelta int `json:"livesDelta"`
	SpeedBonus int `json:"speedBonus"`

	DoublePointsUsed bool `json:"doublePointsUsed"`
	ShieldUsed       bool `json:"shieldUsed"`
	BuybackUsed      bool `json:"buybackUsed"`

	WagerAmount int `json:"wagerAmount,omitempty"`

	Score      int  `json:"score"`
	Coins      int  `json:"coins"`
	Lives      int  `json:"lives"`
	Eliminated bool `json:"eliminated"`
}

// Reveal locks the question and adjudicates every non-eliminated player.
// Permitted once the reveal point has passed, which the all-done
// short-circuit can pull forward to "now".
func (r *Room) Reveal(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
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
	if r.now().Before(q.revealAt(r.alivePlayers())) {
		return ErrRevealTooEarly
	}

	q.Locked = true
	r.phase = PhaseReveal
	r.timers.cancel(timerCountdown)

	wagerRound := r.act != nil && r.act.ID == ActWagerRound
	contenders := r.alivePlayers()
	outcomes := make(map[*Player]*RevealOutcome, len(contenders))
	for _, p := range contenders {
		outcomes[p] = r.adjudicateLocked(p, wagerRound)
	}
	if wagerRound {
		r.wager = nil
	}

	// Public snapshot with locked=true goes out before the private
	// reveal envelopes.
	r.queueState()
	for p, out := range outcomes {
		r.queueToPlayer(p, "player:reveal", out)
	}

	r.checkEndLocked()
	return nil
}

// adjudicateLocked settles one player for the current question
func (r *Room) adjudicateLocked(p *Player, wagerRound bool) *RevealOutcome {
	q := r.question
	out := &RevealOutcome{
		QuestionID:   q.Question.ID,
		CorrectIndex: q.Question.Correct,
	}

	answer, answered := q.Answers[p.ID]
	if answered {
		a := answer
		out.YourAnswer = &a
		out.Correct = answer == q.Question.Correct
	}

	if wagerRound {
		r.settleWagerLocked(p, out)
	} else if out.Correct {
		r.settleCorrectLocked(p, out)
	} else {
		r.settleWrongLocked(p, out)
	}

	out.Score = p.Score
	out.Coins = p.Coins
	out.Lives = p.Lives
	out.Eliminated = p.Eliminated
	return out
}

// settleWagerLocked applies wager settlement: win the clamped wager or
// lose it, floored at zero. No coins, hearts, or speed bonus.
func (r *Room) settleWagerLocked(p *Player, out *RevealOutcome) {
	w := p.Wager
	if w < 0 {
		w = 0
	}
	if w > p.Score {
		w = p.Score
	}
	out.WagerAmount = w

	if out.Correct {
		p.Score += w
		out.ScoreDelta = w
	} else {
		p.Score -= w
		if p.Score < 0 {
			p.Score = 0
		}
		out.ScoreDelta = -w
	}

	p.Wager = 0
	p.WagerSubmitted = false
	p.WagerSwapUsed = false
}

func (r *Room) settleCorrectLocked(p *Player, out *RevealOutcome) {
	q := r.question
	act := r.act.Config

	if lockin, ok := q.LockinTime[p.ID]; ok && act.SpeedBonusMax > 0 {
		elapsed := lockin.Sub(q.StartedAt)
		duration := q.EndsAt.Sub(q.StartedAt)
		fracRem := 1 - float64(elapsed)/float64(duration)
		if fracRem < 0 {
			fracRem = 0
		}
		out.SpeedBonus = int(math.Floor(float64(act.SpeedBonusMax) * fracRem))
	}

	multiplier := 1.0
	if p.DoublePoints {
		multiplier = 2.0
		p.consumeItem(ItemDoublePoints)
		p.DoublePoints = false
		out.DoublePointsUsed = true
	}

	out.ScoreDelta = int(math.Floor(float64(q.Question.Value)*act.ScoreMultiplier*multiplier)) + out.SpeedBonus
	out.CoinsDelta = act.CoinRewardBase
	p.Score += out.ScoreDelta
	p.Coins += out.CoinsDelta

	if r.boss != nil && r.boss.HP > 0 {
		r.boss.HP--
	}
}

func (r *Room) settleWrongLocked(p *Player, out *RevealOutcome) {
	act := r.act.Config
	heartsAtRisk := act.HeartsAtRisk || (act.HeartsOnlyOnHard && r.question.Question.Hard)
	if !heartsAtRisk {
		return
	}

	if p.Shield {
		p.consumeItem(ItemShield)
		p.Shield = false
		out.ShieldUsed = true
		return
	}

	p.Lives--
	out.LivesDelta = -1
	if p.Lives > 0 {
		return
	}

	if p.consumeItem(ItemBuybackToken) {
		p.Lives = 1
		p.Eliminated = false
		out.BuybackUsed = true
		out.LivesDelta = 0
		return
	}
	p.Eliminated = true
}
