package game

// ItemID identifies a shop item
type ItemID string

const (
	ItemDoublePoints ItemID = "double_points"
	ItemShield       ItemID = "shield"
	ItemBuybackToken ItemID = "buyback_token"
	ItemFiftyFifty   ItemID = "fifty_fifty"
	ItemFreezeTime   ItemID = "freeze_time"
)

// ItemKind separates auto-consumed buffs from player-triggered effects
type ItemKind string

const (
	KindPassive ItemKind = "passive"
	KindActive  ItemKind = "active"
)

// Item describes one shop catalogue entry
type Item struct {
	ID   ItemID   `json:"id"`
	Kind ItemKind `json:"kind"`
	Cost int      `json:"cost"`
	Name string   `json:"name"`
	Desc string   `json:"desc"`
}

// FreezeTimeBonusMs is added to the buyer's personal deadline for the
// current question each time freeze_time is used.
const FreezeTimeBonusMs = 10000

// ItemOrder keeps shop listings stable
var ItemOrder = []ItemID{ItemDoublePoints, ItemShield, ItemBuybackToken, ItemFiftyFifty, ItemFreezeTime}

// Items is the fixed catalogue
var Items = map[ItemID]Item{
	ItemDoublePoints: {
		ID:   ItemDoublePoints,
		Kind: KindPassive,
		Cost: 100,
		Name: "Double Points",
		Desc: "Next correct answer scores double",
	},
	ItemShield: {
		ID:   ItemShield,
		Kind: KindPassive,
		Cost: 100,
		Name: "Shield",
		Desc: "Blocks the next heart you would lose",
	},
	ItemBuybackToken: {
		ID:   ItemBuybackToken,
		Kind: KindPassive,
		Cost: 120,
		Name: "Buyback Token",
		Desc: "Auto-revive with 1 life when eliminated",
	},
	ItemFiftyFifty: {
		ID:   ItemFiftyFifty,
		Kind: KindActive,
		Cost: 80,
		Name: "50/50",
		Desc: "Removes two wrong choices",
	},
	ItemFreezeTime: {
		ID:   ItemFreezeTime,
		Kind: KindActive,
		Cost: 70,
		Name: "Freeze Time",
		Desc: "Adds 10 seconds to your timer",
	},
}
