package market

// Tier identifies the quality grouping of a crate.
type Tier uint8

const (
	TierBronze Tier = iota + 1
	TierSilver
	TierGold
)

// Valid reports whether the tier is one of the three supported groupings.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	}
	return "unknown"
}

// Slot identifies the monthly release slot a crate belongs to.
type Slot uint8

const (
	SlotM1 Slot = iota + 1
	SlotM2
	SlotM3
)

// Valid reports whether the slot is one of the three season slots.
func (s Slot) Valid() bool {
	switch s {
	case SlotM1, SlotM2, SlotM3:
		return true
	}
	return false
}

func (s Slot) String() string {
	switch s {
	case SlotM1:
		return "m1"
	case SlotM2:
		return "m2"
	case SlotM3:
		return "m3"
	}
	return "unknown"
}

// Address identifies a participant or treasury account.
type Address = [20]byte

// Crate is the ownership record minted at purchase time. Opened, Prize and
// OpenedAt are written exactly once by the randomness callback; Claimed exactly
// once by ClaimPrize. Crates are never deleted.
type Crate struct {
	ID          uint64  `json:"id"`
	Owner       Address `json:"owner"`
	Tier        Tier    `json:"tier"`
	Slot        Slot    `json:"slot"`
	UnlockTime  int64   `json:"unlockTime"`
	Price       uint64  `json:"price"`
	PurchasedAt int64   `json:"purchasedAt"`
	RequestID   []byte  `json:"requestId,omitempty"`
	Opened      bool    `json:"opened"`
	OpenedAt    int64   `json:"openedAt,omitempty"`
	Prize       uint64  `json:"prize,omitempty"`
	Claimed     bool    `json:"claimed"`
}

// RaffleEntry is immutable after purchase apart from being referenced by a
// winner record.
type RaffleEntry struct {
	ID          uint64  `json:"id"`
	Owner       Address `json:"owner"`
	TypeID      uint32  `json:"typeId"`
	PurchasedAt int64   `json:"purchasedAt"`
}

// RaffleTierOf maps a raffle type onto its coarser tier grouping.
func RaffleTierOf(typeID uint32) uint32 {
	return typeID / 10
}

// MerchItem describes a capped merchandise product and its sale counters.
type MerchItem struct {
	TypeID      uint32    `json:"typeId"`
	Name        string    `json:"name"`
	Price       uint64    `json:"price"`
	TotalSupply uint64    `json:"totalSupply"`
	Quota       QuotaPool `json:"quota"`
}

// MerchHolding records a participant's single permitted unit of a merch type.
type MerchHolding struct {
	TypeID      uint32 `json:"typeId"`
	PricePaid   uint64 `json:"pricePaid"`
	PurchasedAt int64  `json:"purchasedAt"`
}

// DailyCounters tracks a participant's same-day purchase counts per category.
type DailyCounters struct {
	Raffles uint32 `json:"raffles"`
	Bronze  uint32 `json:"bronze"`
	Silver  uint32 `json:"silver"`
	Gold    uint32 `json:"gold"`
}

// TierCount returns the counter bucket for the supplied crate tier.
func (c *DailyCounters) TierCount(tier Tier) uint32 {
	if c == nil {
		return 0
	}
	switch tier {
	case TierBronze:
		return c.Bronze
	case TierSilver:
		return c.Silver
	case TierGold:
		return c.Gold
	}
	return 0
}

func (c *DailyCounters) addTier(tier Tier, qty uint32) {
	switch tier {
	case TierBronze:
		c.Bronze += qty
	case TierSilver:
		c.Silver += qty
	case TierGold:
		c.Gold += qty
	}
}

// Clone returns a defensive copy of the counters.
func (c *DailyCounters) Clone() *DailyCounters {
	if c == nil {
		return &DailyCounters{}
	}
	clone := *c
	return &clone
}

// Winner pairs a winning entry with its owner for append-only winner records.
type Winner struct {
	EntryID uint64  `json:"entryId"`
	Owner   Address `json:"owner"`
}
