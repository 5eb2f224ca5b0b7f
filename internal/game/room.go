package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"classclash/internal/catalog"
)

// Phase represents the current state of a room
type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseWager        Phase = "wager"
	PhaseCountdown    Phase = "countdown"
	PhaseQuestion     Phase = "question"
	PhaseReveal       Phase = "reveal"
	PhaseShop         Phase = "shop"
	PhaseBoss         Phase = "boss"
	PhaseIntermission Phase = "intermission"
	PhaseEnded        Phase = "ended"
)

// RoomConfig is the fixed-key per-room configuration. Hosts may patch it
// in the lobby; unknown keys in the patch are ignored by the decoder.
type RoomConfig struct {
	MaxLives         int `json:"maxLives"`
	CountdownMs      int `json:"countdownMs"`
	StartingCoins    int `json:"startingCoins"`
	BuybackCostCoins int `json:"buybackCostCoins"`
	BossHP           int `json:"bossHp"`
}

// ConfigPatch carries the host's partial room configuration
type ConfigPatch struct {
	MaxLives         *int `json:"maxLives"`
	CountdownMs      *int `json:"countdownMs"`
	StartingCoins    *int `json:"startingCoins"`
	BuybackCostCoins *int `json:"buybackCostCoins"`
	BossHP           *int `json:"bossHp"`
}

// ActState tracks the act in progress
type ActState struct {
	ID        ActID
	Config    ActConfig
	Questions []catalog.Question
	Index     int
}

// next returns the next question of the act, advancing the cursor
func (a *ActState) next() (catalog.Question, bool) {
	if a.Index >= len(a.Questions) {
		return catalog.Question{}, false
	}
	q := a.Questions[a.Index]
	a.Index++
	return q, true
}

// BossState tracks boss fight health
type BossState struct {
	HP    int
	MaxHP int
}

// PendingRevive is the single outstanding host-approval ticket
type PendingRevive struct {
	PlayerID    string
	PlayerName  string
	RequestedAt time.Time
}

// Emission is one queued outbound message. Empty ConnID means a broadcast
// to the room group; HostOnly routes to the host connection.
type Emission struct {
	ConnID   string
	HostOnly bool
	Event    string
	Data     any
}

// Broadcaster delivers queued emissions. Implemented by the ws server;
// sends are non-blocking.
type Broadcaster interface {
	Broadcast(code, event string, data any)
	Send(connID, event string, data any)
}

// Room is the unit of game state. All mutation happens under mu; timer
// callbacks re-acquire it through the public methods, so every change is
// serialized per room.
type Room struct {
	mu sync.Mutex

	Code      string
	CreatedAt time.Time

	hostToken  string
	hostName   string
	hostConnID string

	phase      Phase
	cfg        RoomConfig
	maxPlayers int
	packID     string

	players      map[string]*Player
	connToPlayer map[string]string

	act      *ActState
	wager    *WagerState
	question *CurrentQuestion
	boss     *BossState
	revive   *PendingRevive
	shopOpen bool
	// Phase to restore when the shop closes.
	shopReturn Phase
	bossWin    bool

	lastActivity time.Time
	destroyed    bool

	timers   *timerSet
	outbox   []Emission
	notifier Broadcaster
	catalog  *catalog.Catalog
	log      *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewRoom creates a room in the lobby phase. The caller (registry) is
// responsible for code uniqueness.
func NewRoom(code, hostName, packID string, cfg RoomConfig, maxPlayers int, cat *catalog.Catalog, notifier Broadcaster, log *zap.Logger) *Room {
	r := &Room{
		Code:         code,
		CreatedAt:    time.Now(),
		hostToken:    newHostToken(),
		hostName:     hostName,
		phase:        PhaseLobby,
		cfg:          cfg,
		maxPlayers:   maxPlayers,
		packID:       packID,
		players:      make(map[string]*Player),
		connToPlayer: make(map[string]string),
		lastActivity: time.Now(),
		timers:       newTimerSet(),
		notifier:     notifier,
		catalog:      cat,
		log:          log.With(zap.String("room", code)),
		now:          time.Now,
	}
	return r
}

func newHostToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// HostToken returns the opaque host secret, handed out once at creation
func (r *Room) HostToken() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostToken
}

// PackID returns the pack the room plays from
func (r *Room) PackID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packID
}

// Phase returns the current phase
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// LastActivity returns the last inbound-event or broadcast time
func (r *Room) LastActivity() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

// HasConnections reports whether any player or the host is connected
func (r *Room) HasConnections() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostConnID != "" {
		return true
	}
	for _, p := range r.players {
		if p.Connected {
			return true
		}
	}
	return false
}

// Destroy cancels all timers and marks the room dead. Timer callbacks
// racing destroy observe the flag and return silently.
func (r *Room) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.destroyed = true
	r.timers.cancelAll()
	r.outbox = nil
}

func (r *Room) touch() {
	r.lastActivity = r.now()
}

// requireHost authorizes a host-scoped operation
func (r *Room) requireHost(token string) error {
	if token == "" || token != r.hostToken {
		return ErrNotAuthorized
	}
	return nil
}

// alivePlayers returns the non-eliminated players
func (r *Room) alivePlayers() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// queue appends an outbound message, delivered by the next Flush
func (r *Room) queue(e Emission) {
	r.outbox = append(r.outbox, e)
}

// queueState queues the public snapshot for the room group and the
// host-scoped snapshot for the host connection.
func (r *Room) queueState() {
	r.queue(Emission{Event: "room:state", Data: r.publicSnapshotLocked()})
	if r.hostConnID != "" {
		r.queue(Emission{HostOnly: true, Event: "host:state", Data: r.hostSnapshotLocked()})
	}
	r.touch()
}

// queueToPlayer queues a private envelope for one player's connection
func (r *Room) queueToPlayer(p *Player, event string, data any) {
	if p.ConnID == "" {
		return
	}
	r.queue(Emission{ConnID: p.ConnID, Event: event, Data: data})
}

// Flush delivers everything queued since the last flush, in order. Called
// by the event router after the acknowledgement, and by timer callbacks.
func (r *Room) Flush() {
	r.mu.Lock()
	pending := r.outbox
	r.outbox = nil
	hostConn := r.hostConnID
	destroyed := r.destroyed
	r.mu.Unlock()

	if destroyed || r.notifier == nil {
		return
	}
	for _, e := range pending {
		switch {
		case e.HostOnly:
			if hostConn != "" {
				r.notifier.Send(hostConn, e.Event, e.Data)
			}
		case e.ConnID != "":
			r.notifier.Send(e.ConnID, e.Event, e.Data)
		default:
			r.notifier.Broadcast(r.Code, e.Event, e.Data)
		}
	}
}

// AttachHost binds the creating host's connection
func (r *Room) AttachHost(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hostConnID = connID
	r.queueState()
}

// Join adds a player in the lobby
func (r *Room) Join(name, connID string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return nil, ErrRoomNotFound
	}
	if r.phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	if len(r.players) >= r.maxPlayers {
		return nil, ErrRoomFull
	}
	lower := strings.ToLower(name)
	for _, p := range r.players {
		if strings.ToLower(p.Name) == lower {
			return nil, ErrNameTaken
		}
	}

	p := NewPlayer(name, r.cfg.MaxLives, r.cfg.StartingCoins)
	p.ConnID = connID
	p.Connected = true
	r.players[p.ID] = p
	r.connToPlayer[connID] = p.ID

	r.queueState()
	return p, nil
}

// Resume re-associates a connection: host by token, player by id. Game
// state is untouched beyond the connection flip; applicable wager perks
// are re-sent privately.
func (r *Room) Resume(connID, playerID, hostToken string) (isHost bool, p *Player, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return false, nil, ErrRoomNotFound
	}

	if hostToken != "" {
		if hostToken != r.hostToken {
			return false, nil, ErrNotAuthorized
		}
		r.hostConnID = connID
		r.queueState()
		return true, nil, nil
	}

	p, ok := r.players[playerID]
	if !ok {
		return false, nil, ErrPlayerNotFound
	}
	if p.ConnID != "" {
		delete(r.connToPlayer, p.ConnID)
	}
	p.ConnID = connID
	p.Connected = true
	r.connToPlayer[connID] = p.ID

	r.queueState()
	r.requeueWagerPerksLocked(p)
	return false, p, nil
}

// Leave removes a player in the lobby; after start it only disconnects
// them, since players are never removed mid-game.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if p.ConnID != "" {
		delete(r.connToPlayer, p.ConnID)
	}
	if r.phase == PhaseLobby {
		delete(r.players, playerID)
	} else {
		p.Connected = false
		p.ConnID = ""
	}
	r.queueState()
	return nil
}

// DropConn handles a closed connection. The player survives disconnected;
// the room may still advance past them via personal deadlines.
func (r *Room) DropConn(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostConnID == connID {
		r.hostConnID = ""
	}
	if pid, ok := r.connToPlayer[connID]; ok {
		delete(r.connToPlayer, connID)
		if p, ok := r.players[pid]; ok && p.ConnID == connID {
			p.Connected = false
			p.ConnID = ""
		}
	}
	r.queueState()
}

// Configure patches the room config, lobby only
func (r *Room) Configure(token string, patch ConfigPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(token); err != nil {
		return err
	}
	if r.phase != PhaseLobby {
		return ErrGameInProgress
	}

	if v := patch.MaxLives; v != nil && *v >= 1 {
		r.cfg.MaxLives = *v
		for _, p := range r.players {
			p.Lives = *v
		}
	}
	if v := patch.CountdownMs; v != nil && *v >= 0 {
		r.cfg.CountdownMs = *v
	}
	if v := patch.StartingCoins; v != nil && *v >= 0 {
		r.cfg.StartingCoins = *v
		for _, p := range r.players {
			p.Coins = *v
		}
	}
	if v := patch.BuybackCostCoins; v != nil && *v >= 0 {
		r.cfg.BuybackCostCoins = *v
	}
	if v := patch.BossHP; v != nil && *v >= 1 {
		r.cfg.BossHP = *v
	}

	r.queueState()
	return nil
}

// PlayerByConn resolves a connection to its player id
func (r *Room) PlayerByConn(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pid, ok := r.connToPlayer[connID]
	return pid, ok
}

// Touch records activity from a non-mutating event (eg. room:watch)
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
}
