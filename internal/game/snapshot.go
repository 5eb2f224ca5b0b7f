package game

import (
	"sort"
)

// PlayerView is the public projection of a player
type PlayerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Connected  bool   `json:"connected"`
	Lives      int    `json:"lives"`
	Score      int    `json:"score"`
	Coins      int    `json:"coins"`
	Eliminated bool   `json:"eliminated"`
	LockedIn   bool   `json:"lockedIn"`

	Inventory    map[ItemID]int `json:"inventory"`
	DoublePoints bool           `json:"doublePoints"`
	Shield       bool           `json:"shield"`

	Answered       bool  `json:"answered"`
	FreezeBonusMs  int64 `json:"freezeBonusMs,omitempty"`
	WagerSubmitted bool  `json:"wagerSubmitted,omitempty"`
}

// QuestionView is the public projection of the live question. The correct
// index never appears here.
type QuestionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Choices  []string `json:"choices"`
	Value    int      `json:"value"`
	Hard     bool     `json:"hard,omitempty"`
	Category string   `json:"category,omitempty"`

	CountdownEndsAt int64 `json:"countdownEndsAt"`
	StartedAt       int64 `json:"startedAt"`
	EndsAt          int64 `json:"endsAt"`
	RevealAt        int64 `json:"revealAt"`
	Locked          bool  `json:"locked"`
	IsWager         bool  `json:"isWager,omitempty"`
}

// ActView summarises the act in progress
type ActView struct {
	ID              ActID    `json:"id"`
	QuestionNumber  int      `json:"questionNumber"`
	QuestionTotal   int      `json:"questionTotal"`
	DurationMs      int      `json:"durationMs"`
	ScoreMultiplier float64  `json:"scoreMultiplier"`
	CoinRewardBase  int      `json:"coinRewardBase"`
	SpeedBonusMax   int      `json:"speedBonusMax"`
	HeartsAtRisk    bool     `json:"heartsAtRisk"`
	AllowedItems    []ItemID `json:"allowedItems"`
}

// WagerView is the public projection of the wager timeline. Category and
// hint appear only once their stages have passed.
type WagerView struct {
	Stage          string `json:"stage"`
	StageIndex     int    `json:"stageIndex"`
	StartedAt      int64  `json:"startedAt"`
	EndsAt         int64  `json:"endsAt"`
	Locked         bool   `json:"locked"`
	Category       string `json:"category,omitempty"`
	Hint           string `json:"hint,omitempty"`
	SubmittedCount int    `json:"submittedCount"`
}

// BossView is the public boss health bar
type BossView struct {
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
}

// ReviveView is the pending ticket as shown to the host
type ReviveView struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	RequestedAt int64  `json:"requestedAt"`
}

// Snapshot is the public room state broadcast as room:state
type Snapshot struct {
	Code          string        `json:"code"`
	Phase         Phase         `json:"phase"`
	PackID        string        `json:"packId"`
	HostName      string        `json:"hostName"`
	HostConnected bool          `json:"hostConnected"`
	Config        RoomConfig    `json:"config"`
	Players       []PlayerView  `json:"players"`
	Act           *ActView      `json:"act,omitempty"`
	Question      *QuestionView `json:"question,omitempty"`
	Wager         *WagerView    `json:"wager,omitempty"`
	Boss          *BossView     `json:"boss,omitempty"`
	BossDefeated  bool          `json:"bossDefeated,omitempty"`
	ShopOpen      bool          `json:"shopOpen"`
	Shop          []Item        `json:"shop,omitempty"`
}

// HostSnapshot adds the host-only fields to the public snapshot
type HostSnapshot struct {
	Snapshot
	CorrectIndex  *int        `json:"correctIndex,omitempty"`
	Hint          string      `json:"hint,omitempty"`
	PendingRevive *ReviveView `json:"pendingRevive,omitempty"`
	AvailableActs []ActID     `json:"availableActs"`
}

// PublicSnapshot builds the public snapshot (for acks)
func (r *Room) PublicSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.publicSnapshotLocked()
}

// HostSnapshotFor builds the host snapshot after authorizing the token
func (r *Room) HostSnapshotFor(token string) (HostSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.requireHost(token); err != nil {
		return HostSnapshot{}, err
	}
	return r.hostSnapshotLocked(), nil
}

func (r *Room) publicSnapshotLocked() Snapshot {
	now := r.now()

	snap := Snapshot{
		Code:          r.Code,
		Phase:         r.phase,
		PackID:        r.packID,
		HostName:      r.hostName,
		HostConnected: r.hostConnID != "",
		Config:        r.cfg,
		ShopOpen:      r.shopOpen,
		BossDefeated:  r.bossWin,
	}

	snap.Players = make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		snap.Players = append(snap.Players, r.playerViewLocked(p))
	}
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].Name < snap.Players[j].Name
	})

	if r.act != nil {
		a := r.act
		snap.Act = &ActView{
			ID:              a.ID,
			QuestionNumber:  a.Index,
			QuestionTotal:   len(a.Questions),
			DurationMs:      a.Config.QuestionDurationMs,
			ScoreMultiplier: a.Config.ScoreMultiplier,
			CoinRewardBase:  a.Config.CoinRewardBase,
			SpeedBonusMax:   a.Config.SpeedBonusMax,
			HeartsAtRisk:    a.Config.HeartsAtRisk,
			AllowedItems:    a.Config.AllowedItems,
		}
		if r.shopOpen {
			snap.Shop = make([]Item, 0, len(a.Config.AllowedItems))
			for _, id := range ItemOrder {
				if a.Config.allowsItem(id) {
					snap.Shop = append(snap.Shop, Items[id])
				}
			}
		}
	}

	if q := r.question; q != nil {
		qv := &QuestionView{
			ID:              q.Question.ID,
			Value:           q.Question.Value,
			Hard:            q.Question.Hard,
			Category:        q.Question.Category,
			CountdownEndsAt: q.CountdownEndsAt.UnixMilli(),
			StartedAt:       q.StartedAt.UnixMilli(),
			EndsAt:          q.EndsAt.UnixMilli(),
			RevealAt:        q.revealAt(r.alivePlayers()).UnixMilli(),
			Locked:          q.Locked,
			IsWager:         q.IsWager,
		}
		// Blackout hides the content until the countdown runs out.
		if q.BlackoutUntil.IsZero() || !now.Before(q.BlackoutUntil) {
			qv.Text = q.Question.Text
			qv.Choices = q.Question.Choices
		}
		snap.Question = qv
	}

	if w := r.wager; w != nil {
		wv := &WagerView{
			Stage:      w.Stage.String(),
			StageIndex: int(w.Stage),
			StartedAt:  w.StartedAt.UnixMilli(),
			EndsAt:     w.EndsAt.UnixMilli(),
			Locked:     w.Locked,
		}
		if w.Stage >= StageCategory {
			wv.Category = w.Question.Category
		}
		if w.Stage >= StageHint {
			wv.Hint = w.Question.Hint
		}
		for _, p := range r.players {
			if p.WagerSubmitted {
				wv.SubmittedCount++
			}
		}
		snap.Wager = wv
	}

	if b := r.boss; b != nil {
		snap.Boss = &BossView{HP: b.HP, MaxHP: b.MaxHP}
	}

	return snap
}

func (r *Room) playerViewLocked(p *Player) PlayerView {
	pv := PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		Connected:      p.Connected,
		Lives:          p.Lives,
		Score:          p.Score,
		Coins:          p.Coins,
		Eliminated:     p.Eliminated,
		LockedIn:       p.LockedIn,
		DoublePoints:   p.DoublePoints,
		Shield:         p.Shield,
		WagerSubmitted: p.WagerSubmitted,
	}
	pv.Inventory = make(map[ItemID]int, len(p.Inventory))
	for id, n := range p.Inventory {
		if n > 0 {
			pv.Inventory[id] = n
		}
	}
	if q := r.question; q != nil {
		_, pv.Answered = q.Answers[p.ID]
		if bonus := q.FreezeBonus[p.ID]; bonus > 0 {
			pv.FreezeBonusMs = bonus.Milliseconds()
		}
	}
	return pv
}

func (r *Room) hostSnapshotLocked() HostSnapshot {
	hs := HostSnapshot{
		Snapshot:      r.publicSnapshotLocked(),
		AvailableActs: r.availableActsLocked(),
	}
	if q := r.question; q != nil {
		idx := q.Question.Correct
		hs.CorrectIndex = &idx
		hs.Hint = q.Question.Hint
	}
	if t := r.revive; t != nil {
		hs.PendingRevive = &ReviveView{
			PlayerID:    t.PlayerID,
			PlayerName:  t.PlayerName,
			RequestedAt: t.RequestedAt.UnixMilli(),
		}
	}
	return hs
}

// availableActsLocked lists the acts the host may still start, in order
func (r *Room) availableActsLocked() []ActID {
	if r.phase == PhaseEnded {
		return nil
	}
	current := ActID("")
	if r.act != nil {
		current = r.act.ID
	}
	acts := actsAfter(current)
	if acts == nil {
		return []ActID{}
	}
	out := make([]ActID, 0, len(acts))
	for _, a := range acts {
		if _, ok := r.catalog.Questions(r.packID, string(a)); ok {
			out = append(out, a)
		}
	}
	return out
}
