package game

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"classclash/internal/catalog"
)

// WagerStage is the staged wager timeline. Offsets are fixed from the
// start of the phase.
type WagerStage int

const (
	StageBlind    WagerStage = iota // 0s: bet with no information
	StageCategory                   // +15s: category shown
	StageHint                       // +30s: hint shown
	StageRedline                    // +45s: wagers may no longer decrease
	StageClosing                    // +55s: siren
	StageLocked                     // +60s: locked
)

const wagerDuration = 60 * time.Second

var wagerStageOffsets = map[WagerStage]time.Duration{
	StageCategory: 15 * time.Second,
	StageHint:     30 * time.Second,
	StageRedline:  45 * time.Second,
	StageClosing:  55 * time.Second,
	StageLocked:   60 * time.Second,
}

func (s WagerStage) String() string {
	switch s {
	case StageBlind:
		return "blind"
	case StageCategory:
		return "category"
	case StageHint:
		return "hint"
	case StageRedline:
		return "redline"
	case StageClosing:
		return "closing"
	case StageLocked:
		return "locked"
	}
	return "unknown"
}

// WagerTier classifies a wager against the player's score
type WagerTier int

const (
	TierSafe WagerTier = iota
	TierBold
	TierHighRoller
	TierInsane
	TierAllIn
)

func (t WagerTier) String() string {
	switch t {
	case TierBold:
		return "BOLD"
	case TierHighRoller:
		return "HIGH_ROLLER"
	case TierInsane:
		return "INSANE"
	case TierAllIn:
		return "ALL_IN"
	}
	return "SAFE"
}

// ComputeTier classifies a clamped wager. Zero score or zero wager is
// always SAFE.
func ComputeTier(score, wager int) WagerTier {
	if wager <= 0 || score <= 0 {
		return TierSafe
	}
	if wager >= score {
		return TierAllIn
	}
	ratio := float64(wager) / float64(score)
	switch {
	case ratio >= 0.8:
		return TierInsane
	case ratio >= 0.5:
		return TierHighRoller
	case ratio >= 0.25:
		return TierBold
	}
	return TierSafe
}

// WagerState is the live wager timeline plus everything pre-computed at
// lock time so reconnects see identical perks.
type WagerState struct {
	Question  catalog.Question
	StartedAt time.Time
	EndsAt    time.Time
	Stage     WagerStage
	Locked    bool

	Wagers  map[string]int
	Tiers   map[string]WagerTier
	Removed map[string][]int // fifty-fifty removals, fixed at lock
}

// SpotlightEntry is one row of the locked-wager tableau
type SpotlightEntry struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Wager    int     `json:"wager"`
	Ratio    float64 `json:"ratio"`
	Tier     string  `json:"tier"`
}

// Spotlight is broadcast once wagers lock and shown until the host starts
// the wager question.
type Spotlight struct {
	TotalWagered int              `json:"totalWagered"`
	AllInCount   int              `json:"allInCount"`
	ZeroBetCount int              `json:"zeroBetCount"`
	Biggest      *SpotlightEntry  `json:"biggest"`
	Top          []SpotlightEntry `json:"top"`
}

// startWagerLocked opens the 60-second wager timeline for q
func (r *Room) startWagerLocked(q catalog.Question) {
	for _, p := range r.players {
		p.Wager = 0
		p.WagerSubmitted = false
		p.WagerSwapUsed = false
		p.LockedIn = false
	}

	now := r.now()
	r.wager = &WagerState{
		Question:  q,
		StartedAt: now,
		EndsAt:    now.Add(wagerDuration),
		Stage:     StageBlind,
		Wagers:    make(map[string]int),
		Tiers:     make(map[string]WagerTier),
		Removed:   make(map[string][]int),
	}
	r.question = nil
	r.shopOpen = false
	r.phase = PhaseWager

	startedAt := now.UnixMilli()
	schedule := func(name string, stage WagerStage) {
		r.timers.schedule(name, wagerStageOffsets[stage], func() {
			r.onWagerStage(stage, startedAt)
		})
	}
	schedule(timerWagerCategory, StageCategory)
	schedule(timerWagerHint, StageHint)
	schedule(timerWagerRedline, StageRedline)
	schedule(timerWagerClosing, StageClosing)
	schedule(timerWagerLock, StageLocked)

	r.log.Info("wager phase started", zap.String("question", q.ID))
	r.queueState()
}

// onWagerStage advances the staged timeline. The startedAt token guards
// against a stale timer outliving a replaced wager state.
func (r *Room) onWagerStage(stage WagerStage, startedAt int64) {
	r.mu.Lock()
	w := r.wager
	if r.destroyed || r.phase != PhaseWager || w == nil || w.Locked ||
		w.StartedAt.UnixMilli() != startedAt {
		r.mu.Unlock()
		return
	}

	w.Stage = stage
	switch stage {
	case StageRedline:
		r.queueState()
		for _, p := range r.alivePlayers() {
			if ComputeTier(p.Score, r.clampedWagerLocked(p)) >= TierBold {
				r.queueToPlayer(p, "wager:extra_hint", map[string]string{"hint": w.Question.Hint})
			}
		}
	case StageClosing:
		r.queueState()
		r.queue(Emission{Event: "wager:siren", Data: map[string]int64{"endsAt": w.EndsAt.UnixMilli()}})
	case StageLocked:
		r.lockWagersLocked()
	default:
		r.queueState()
	}
	r.mu.Unlock()

	r.Flush()
}

func (r *Room) clampedWagerLocked(p *Player) int {
	w := r.wager.Wagers[p.ID]
	if w < 0 {
		w = 0
	}
	if w > p.Score {
		w = p.Score
	}
	return w
}

// SetWager records a wager while the phase is open. During redline and
// later the recorded amount never decreases.
func (r *Room) SetWager(playerID string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWager {
		return ErrNotInWagerPhase
	}
	w := r.wager
	if w == nil || w.Locked {
		return ErrWagersClosed
	}
	if r.now().After(w.EndsAt) {
		return ErrWagersClosed
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.Eliminated {
		return ErrEliminated
	}

	if amount < 0 {
		amount = 0
	}
	if amount > p.Score {
		amount = p.Score
	}
	if w.Stage >= StageRedline {
		if prev, ok := w.Wagers[playerID]; ok && amount < prev {
			amount = prev
		}
	}

	w.Wagers[playerID] = amount
	p.Wager = amount
	p.WagerSubmitted = true
	r.queueState()
	return nil
}

// LockWagers lets the host close wagers ahead of the +60s timer
func (r *Room) LockWagers(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseWager {
		return ErrNotInWagerPhase
	}
	if r.wager == nil || r.wager.Locked {
		return ErrWagersClosed
	}
	r.lockWagersLocked()
	return nil
}

// lockWagersLocked freezes wagers, computes tiers, pre-generates perks,
// and broadcasts the spotlight. The wager question does not auto-start;
// the host sends wager:spotlight_end.
func (r *Room) lockWagersLocked() {
	w := r.wager
	w.Locked = true
	w.Stage = StageLocked
	r.timers.cancelWagerStages()

	entries := make([]SpotlightEntry, 0, len(r.players))
	spot := &Spotlight{}
	for _, p := range r.alivePlayers() {
		amount := r.clampedWagerLocked(p)
		w.Wagers[p.ID] = amount
		p.Wager = amount
		tier := ComputeTier(p.Score, amount)
		w.Tiers[p.ID] = tier

		if tier >= TierHighRoller {
			w.Removed[p.ID] = pickWrongChoices(w.Question, 2)
		}

		spot.TotalWagered += amount
		if tier == TierAllIn {
			spot.AllInCount++
		}
		if amount == 0 {
			spot.ZeroBetCount++
		}

		ratio := 0.0
		if p.Score > 0 {
			ratio = float64(amount) / float64(p.Score)
		}
		entries = append(entries, SpotlightEntry{
			PlayerID: p.ID,
			Name:     p.Name,
			Wager:    amount,
			Ratio:    ratio,
			Tier:     tier.String(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Ratio != entries[j].Ratio {
			return entries[i].Ratio > entries[j].Ratio
		}
		return entries[i].Wager > entries[j].Wager
	})
	if len(entries) > 0 {
		e := entries[0]
		spot.Biggest = &e
	}
	if len(entries) > 3 {
		entries = entries[:3]
	}
	spot.Top = entries

	r.log.Info("wagers locked",
		zap.Int("total", spot.TotalWagered),
		zap.Int("allIn", spot.AllInCount))

	r.queueState()
	r.queue(Emission{Event: "wager:spotlight", Data: spot})
}

// SpotlightEnd starts the wager question and delivers the pre-computed
// perks privately.
func (r *Room) SpotlightEnd(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseWager {
		return ErrNotInWagerPhase
	}
	w := r.wager
	if w == nil || !w.Locked {
		return ErrWagersNotLocked
	}

	duration := time.Duration(r.act.Config.QuestionDurationMs) * time.Millisecond
	r.startQuestionLocked(w.Question, duration)
	for _, p := range r.alivePlayers() {
		r.queueWagerPerksLocked(p)
	}
	return nil
}

// queueWagerPerksLocked sends the stored perks for one player. Used at
// spotlight end and again on resume, with identical payloads.
func (r *Room) queueWagerPerksLocked(p *Player) {
	w := r.wager
	tier := w.Tiers[p.ID]
	if removed, ok := w.Removed[p.ID]; ok && tier >= TierHighRoller {
		r.queueToPlayer(p, "wager:fifty_fifty", map[string]any{"removedIndexes": removed})
	}
	if tier >= TierBold {
		r.queueToPlayer(p, "wager:extra_hint", map[string]string{"hint": w.Question.Hint})
	}
}

// requeueWagerPerksLocked re-delivers perks after a resume while the
// wager question is live. Removals are never recomputed.
func (r *Room) requeueWagerPerksLocked(p *Player) {
	if r.question == nil || !r.question.IsWager || r.wager == nil || !r.wager.Locked {
		return
	}
	if p.Eliminated {
		return
	}
	r.queueWagerPerksLocked(p)
}

// pickWrongChoices returns n random wrong indices for a question
func pickWrongChoices(q catalog.Question, n int) []int {
	wrong := make([]int, 0, len(q.Choices))
	for i := range q.Choices {
		if i != q.Correct {
			wrong = append(wrong, i)
		}
	}
	rand.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})
	if len(wrong) > n {
		wrong = wrong[:n]
	}
	sort.Ints(wrong)
	return wrong
}
