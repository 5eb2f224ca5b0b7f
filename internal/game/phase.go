package game

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"classclash/internal/catalog"
)

// StartGame begins the first act (homeroom)
func (r *Room) StartGame(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}
	return r.startActLocked(ActHomeroom)
}

// StartAct begins a specific act from the lobby or an intermission. Acts
// only move forward in ActOrder.
func (r *Room) StartAct(token string, actID ActID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseLobby && r.phase != PhaseIntermission && r.phase != PhaseShop {
		return ErrWrongPhase
	}
	return r.startActLocked(actID)
}

// StartBoss is sugar for starting the boss fight act
func (r *Room) StartBoss(token string) error {
	return r.StartAct(token, ActBossFight)
}

func (r *Room) startActLocked(actID ActID) error {
	cfg, ok := ActConfigFor(actID)
	if !ok {
		return ErrActOrder
	}
	if r.act != nil && actIndex(actID) <= actIndex(r.act.ID) {
		return ErrActOrder
	}

	questions, ok := r.catalog.Questions(r.packID, string(actID))
	if !ok {
		return ErrNoQuestions
	}
	shuffled := make([]catalog.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	r.act = &ActState{ID: actID, Config: cfg, Questions: shuffled}
	r.shopOpen = false
	r.boss = nil
	if actID == ActBossFight {
		r.boss = &BossState{HP: r.cfg.BossHP, MaxHP: r.cfg.BossHP}
	}

	q, _ := r.act.next()
	if actID == ActWagerRound {
		r.startWagerLocked(q)
		return nil
	}
	r.startQuestionLocked(q, 0)
	return nil
}

// startQuestionLocked resets lock-ins, installs the question, and arms the
// countdown. durationOverride of zero uses the act's question duration.
func (r *Room) startQuestionLocked(q catalog.Question, durationOverride time.Duration) {
	for _, p := range r.players {
		p.LockedIn = false
	}

	duration := time.Duration(r.act.Config.QuestionDurationMs) * time.Millisecond
	if durationOverride > 0 {
		duration = durationOverride
	}
	countdown := time.Duration(r.cfg.CountdownMs) * time.Millisecond

	cq := newCurrentQuestion(q, r.now(), countdown, duration)
	if r.wager != nil && r.wager.Locked {
		cq.IsWager = true
		// Choices stay hidden until the countdown runs out.
		cq.BlackoutUntil = cq.CountdownEndsAt
	}
	r.question = cq
	r.phase = PhaseCountdown

	qid := q.ID
	r.timers.schedule(timerCountdown, countdown, func() {
		r.onCountdownFired(qid)
	})

	r.log.Info("question started",
		zap.String("question", qid),
		zap.String("act", string(r.act.ID)),
		zap.Bool("wager", cq.IsWager))
	r.queueState()
}

// onCountdownFired moves countdown -> question (or boss). The guard
// re-validates because a host command may have raced the timer.
func (r *Room) onCountdownFired(questionID string) {
	r.mu.Lock()
	if r.destroyed || r.phase != PhaseCountdown || r.question == nil ||
		r.question.Question.ID != questionID || r.question.Locked {
		r.mu.Unlock()
		return
	}

	if r.boss != nil {
		r.phase = PhaseBoss
	} else {
		r.phase = PhaseQuestion
	}
	r.queueState()
	r.mu.Unlock()

	r.Flush()
}

// NextQuestion advances past a reveal: next question of the act, the next
// wager timeline, an intermission, or the end of the game.
func (r *Room) NextQuestion(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseReveal && r.phase != PhaseShop {
		return ErrWrongPhase
	}
	if r.act == nil {
		return ErrNoActiveAct
	}

	r.shopOpen = false
	r.question = nil

	q, ok := r.act.next()
	if !ok {
		if actIndex(r.act.ID) == len(ActOrder)-1 {
			r.endGameLocked()
			return nil
		}
		r.phase = PhaseIntermission
		r.queueState()
		return nil
	}

	if r.act.ID == ActWagerRound {
		r.startWagerLocked(q)
		return nil
	}
	r.startQuestionLocked(q, 0)
	return nil
}

// endGameLocked is the only path into the ended phase
func (r *Room) endGameLocked() {
	r.phase = PhaseEnded
	r.question = nil
	r.wager = nil
	r.shopOpen = false
	r.timers.cancelAll()
	r.log.Info("game ended", zap.Bool("bossDefeated", r.bossWin))
	r.queueState()
}

// checkEndLocked applies the terminal conditions after a reveal
func (r *Room) checkEndLocked() {
	if r.boss != nil && r.boss.HP == 0 {
		r.bossWin = true
		r.endGameLocked()
		return
	}
	if len(r.alivePlayers()) == 0 && len(r.players) > 0 {
		r.endGameLocked()
	}
}
