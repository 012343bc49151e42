package market

import "fmt"

const (
	// SecondsPerDay defines the accounting bucket for crate and raffle quotas.
	SecondsPerDay = 86_400
	// SecondsPerWindow defines the rolling merchandise release bucket.
	SecondsPerWindow = 21_600
	// MerchWindowDivisor derives the per-window release limit from total supply.
	MerchWindowDivisor = 4
)

// SeasonConfig carries the sale window, price tables and scarcity parameters
// for a single promotional season.
//
// Prices, payouts and caps are expressed in whole credits; conversion to the
// smallest credit denomination happens at the payment boundary using
// CreditDecimals.
type SeasonConfig struct {
	Admin     Address `json:"admin"`
	Treasury  Address `json:"treasury"`
	StartTime int64   `json:"startTime"`
	EndTime   int64   `json:"endTime"`

	UnlockTimes map[Slot]int64 `json:"unlockTimes"`

	CratePrices        map[Tier]map[Slot]uint64 `json:"cratePrices"`
	CrateTotals        map[Tier]uint64          `json:"crateTotals"`
	CrateDailyRates    map[Tier]uint64          `json:"crateDailyRates"`
	CrateUserDailyCaps map[Tier]uint32          `json:"crateUserDailyCaps"`

	RafflePrices       map[uint32]uint64 `json:"rafflePrices"`
	RaffleUserDailyCap uint32            `json:"raffleUserDailyCap"`

	MaxCratePayout uint64 `json:"maxCratePayout"`
	CreditDecimals uint8  `json:"creditDecimals"`
}

// Clone produces a deep copy of the configuration.
func (c *SeasonConfig) Clone() *SeasonConfig {
	if c == nil {
		return nil
	}
	clone := &SeasonConfig{
		Admin:              c.Admin,
		Treasury:           c.Treasury,
		StartTime:          c.StartTime,
		EndTime:            c.EndTime,
		RaffleUserDailyCap: c.RaffleUserDailyCap,
		MaxCratePayout:     c.MaxCratePayout,
		CreditDecimals:     c.CreditDecimals,
	}
	if c.UnlockTimes != nil {
		clone.UnlockTimes = make(map[Slot]int64, len(c.UnlockTimes))
		for k, v := range c.UnlockTimes {
			clone.UnlockTimes[k] = v
		}
	}
	if c.CratePrices != nil {
		clone.CratePrices = make(map[Tier]map[Slot]uint64, len(c.CratePrices))
		for tier, slots := range c.CratePrices {
			inner := make(map[Slot]uint64, len(slots))
			for slot, price := range slots {
				inner[slot] = price
			}
			clone.CratePrices[tier] = inner
		}
	}
	if c.CrateTotals != nil {
		clone.CrateTotals = make(map[Tier]uint64, len(c.CrateTotals))
		for k, v := range c.CrateTotals {
			clone.CrateTotals[k] = v
		}
	}
	if c.CrateDailyRates != nil {
		clone.CrateDailyRates = make(map[Tier]uint64, len(c.CrateDailyRates))
		for k, v := range c.CrateDailyRates {
			clone.CrateDailyRates[k] = v
		}
	}
	if c.CrateUserDailyCaps != nil {
		clone.CrateUserDailyCaps = make(map[Tier]uint32, len(c.CrateUserDailyCaps))
		for k, v := range c.CrateUserDailyCaps {
			clone.CrateUserDailyCaps[k] = v
		}
	}
	if c.RafflePrices != nil {
		clone.RafflePrices = make(map[uint32]uint64, len(c.RafflePrices))
		for k, v := range c.RafflePrices {
			clone.RafflePrices[k] = v
		}
	}
	return clone
}

// Normalize ensures all map fields are non-nil. The method returns the
// receiver to allow chaining.
func (c *SeasonConfig) Normalize() *SeasonConfig {
	if c == nil {
		return nil
	}
	if c.UnlockTimes == nil {
		c.UnlockTimes = make(map[Slot]int64)
	}
	if c.CratePrices == nil {
		c.CratePrices = make(map[Tier]map[Slot]uint64)
	}
	if c.CrateTotals == nil {
		c.CrateTotals = make(map[Tier]uint64)
	}
	if c.CrateDailyRates == nil {
		c.CrateDailyRates = make(map[Tier]uint64)
	}
	if c.CrateUserDailyCaps == nil {
		c.CrateUserDailyCaps = make(map[Tier]uint32)
	}
	if c.RafflePrices == nil {
		c.RafflePrices = make(map[uint32]uint64)
	}
	return c
}

// Validate performs static validation of the configuration.
func (c *SeasonConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("nil season config")
	}
	if c.StartTime > c.EndTime {
		return fmt.Errorf("season start must not be after end")
	}
	if c.Admin == (Address{}) {
		return fmt.Errorf("admin address must be configured")
	}
	if c.Treasury == (Address{}) {
		return fmt.Errorf("treasury address must be configured")
	}
	for tier, slots := range c.CratePrices {
		if !tier.Valid() {
			return fmt.Errorf("crate price for invalid tier %d", tier)
		}
		for slot := range slots {
			if !slot.Valid() {
				return fmt.Errorf("crate price for invalid slot %d", slot)
			}
		}
	}
	for slot := range c.UnlockTimes {
		if !slot.Valid() {
			return fmt.Errorf("unlock time for invalid slot %d", slot)
		}
	}
	return nil
}

// CratePrice resolves the configured price for a tier/slot pairing.
func (c *SeasonConfig) CratePrice(tier Tier, slot Slot) (uint64, bool) {
	if c == nil {
		return 0, false
	}
	slots, ok := c.CratePrices[tier]
	if !ok {
		return 0, false
	}
	price, ok := slots[slot]
	return price, ok
}

// RafflePrice resolves the configured price for a raffle type.
func (c *SeasonConfig) RafflePrice(typeID uint32) (uint64, bool) {
	if c == nil {
		return 0, false
	}
	price, ok := c.RafflePrices[typeID]
	return price, ok
}

// UnlockTime returns the crate opening unlock timestamp for a slot. Slots
// without an explicit unlock open with the season start.
func (c *SeasonConfig) UnlockTime(slot Slot) int64 {
	if c == nil {
		return 0
	}
	if ts, ok := c.UnlockTimes[slot]; ok {
		return ts
	}
	return c.StartTime
}

// InSeason reports whether the supplied instant falls inside the sale window.
func (c *SeasonConfig) InSeason(now int64) bool {
	if c == nil {
		return false
	}
	return now >= c.StartTime && now < c.EndTime
}

// DayIndex computes the zero-based day bucket for quota accounting. The caller
// must ensure now is not before the season start.
func (c *SeasonConfig) DayIndex(now int64) uint64 {
	if c == nil || now < c.StartTime {
		return 0
	}
	return uint64(now-c.StartTime) / SecondsPerDay
}

// WindowIndex computes the zero-based six-hour bucket for merch accounting.
func (c *SeasonConfig) WindowIndex(now int64) uint64 {
	if c == nil || now < c.StartTime {
		return 0
	}
	return uint64(now-c.StartTime) / SecondsPerWindow
}
