package game

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Player name bounds, checked after trimming whitespace.
const (
	MinNameLen = 2
	MaxNameLen = 18
)

// Player represents a player in the room. Players are never removed once
// the game has started; disconnects only flip Connected.
type Player struct {
	ID        string
	Name      string
	ConnID    string
	Connected bool
	JoinedAt  time.Time

	Lives      int
	Score      int
	Coins      int
	Eliminated bool

	LockedIn  bool
	Inventory map[ItemID]int

	// Armed passive buffs, consumed at reveal.
	DoublePoints bool
	Shield       bool

	// Wager round state, reset when the wager question settles.
	Wager          int
	WagerSubmitted bool
	WagerSwapUsed  bool
}

// NewPlayer creates a new player with starting resources
func NewPlayer(name string, lives, coins int) *Player {
	return &Player{
		ID:        newPlayerID(),
		Name:      name,
		JoinedAt:  time.Now(),
		Lives:     lives,
		Coins:     coins,
		Inventory: make(map[ItemID]int),
	}
}

// newPlayerID returns an opaque 12-char identifier, stable across
// reconnects.
func newPlayerID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ValidateName trims and checks a requested player name. Bounds count
// runes, so multibyte names are not penalized.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinNameLen || n > MaxNameLen {
		return "", ErrNameLength
	}
	return name, nil
}

// hasItem reports whether the player holds at least one of the item
func (p *Player) hasItem(id ItemID) bool {
	return p.Inventory[id] > 0
}

// consumeItem decrements one charge, never below zero
func (p *Player) consumeItem(id ItemID) bool {
	if p.Inventory[id] <= 0 {
		return false
	}
	p.Inventory[id]--
	return true
}
