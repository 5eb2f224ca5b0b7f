package game

// ActID identifies one stage of the game
type ActID string

const (
	ActHomeroom   ActID = "homeroom"
	ActPopQuiz    ActID = "pop_quiz"
	ActFieldTrip  ActID = "field_trip"
	ActWagerRound ActID = "wager_round"
	ActBossFight  ActID = "boss_fight"
)

// ActOrder is the forward-only progression. A room may skip acts but can
// never restart or go back.
var ActOrder = []ActID{ActHomeroom, ActPopQuiz, ActFieldTrip, ActWagerRound, ActBossFight}

// ActConfig tunes one act
type ActConfig struct {
	QuestionDurationMs int
	HeartsAtRisk       bool
	HeartsOnlyOnHard   bool
	ScoreMultiplier    float64
	CoinRewardBase     int
	SpeedBonusMax      int
	AllowedItems       []ItemID
}

var actConfigs = map[ActID]ActConfig{
	ActHomeroom: {
		QuestionDurationMs: 22000,
		ScoreMultiplier:    1.0,
		CoinRewardBase:     50,
		SpeedBonusMax:      20,
		AllowedItems:       []ItemID{ItemDoublePoints, ItemFiftyFifty, ItemFreezeTime},
	},
	ActPopQuiz: {
		QuestionDurationMs: 20000,
		HeartsOnlyOnHard:   true,
		ScoreMultiplier:    1.25,
		CoinRewardBase:     60,
		SpeedBonusMax:      30,
		AllowedItems:       []ItemID{ItemDoublePoints, ItemShield, ItemFiftyFifty, ItemFreezeTime},
	},
	ActFieldTrip: {
		QuestionDurationMs: 18000,
		HeartsAtRisk:       true,
		ScoreMultiplier:    1.5,
		CoinRewardBase:     75,
		SpeedBonusMax:      40,
		AllowedItems:       ItemOrder,
	},
	ActWagerRound: {
		QuestionDurationMs: 25000,
		ScoreMultiplier:    1.0,
		// No coins, no speed bonus, no shop during the wager round.
	},
	ActBossFight: {
		QuestionDurationMs: 20000,
		HeartsAtRisk:       true,
		ScoreMultiplier:    2.0,
		CoinRewardBase:     100,
		SpeedBonusMax:      50,
		AllowedItems:       ItemOrder,
	},
}

// ActConfigFor returns the configuration for an act
func ActConfigFor(id ActID) (ActConfig, bool) {
	cfg, ok := actConfigs[id]
	return cfg, ok
}

// actIndex returns the position of id in ActOrder, or -1
func actIndex(id ActID) int {
	for i, a := range ActOrder {
		if a == id {
			return i
		}
	}
	return -1
}

// actsAfter returns the acts strictly later than current. A zero current
// means no act has run yet and everything is available.
func actsAfter(current ActID) []ActID {
	start := 0
	if current != "" {
		start = actIndex(current) + 1
	}
	if start < 0 || start >= len(ActOrder) {
		return nil
	}
	out := make([]ActID, len(ActOrder)-start)
	copy(out, ActOrder[start:])
	return out
}

// allowsItem reports whether the act's shop carries the item
func (c ActConfig) allowsItem(id ItemID) bool {
	for _, it := range c.AllowedItems {
		if it == id {
			return true
		}
	}
	return false
}
