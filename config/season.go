package config

import (
	"fmt"
	"strconv"

	"seasonmarket/native/market"
)

var tierNames = map[string]market.Tier{
	"bronze": market.TierBronze,
	"silver": market.TierSilver,
	"gold":   market.TierGold,
}

var slotNames = map[string]market.Slot{
	"m1": market.SlotM1,
	"m2": market.SlotM2,
	"m3": market.SlotM3,
}

func parseTier(name string) (market.Tier, error) {
	tier, ok := tierNames[name]
	if !ok {
		return 0, fmt.Errorf("config: unknown tier %q", name)
	}
	return tier, nil
}

func parseSlot(name string) (market.Slot, error) {
	slot, ok := slotNames[name]
	if !ok {
		return 0, fmt.Errorf("config: unknown slot %q", name)
	}
	return slot, nil
}

// MarketSeason converts the TOML season block into the ledger configuration.
func (c *Config) MarketSeason() (*market.SeasonConfig, error) {
	admin, err := DecodeAddress(c.AdminAddress)
	if err != nil {
		return nil, err
	}
	treasury, err := DecodeAddress(c.TreasuryAddress)
	if err != nil {
		return nil, err
	}
	decimals := uint8(6)
	if c.Season.CreditDecimals != nil {
		decimals = *c.Season.CreditDecimals
	}
	out := (&market.SeasonConfig{
		Admin:              admin,
		Treasury:           treasury,
		StartTime:          c.Season.StartTime,
		EndTime:            c.Season.EndTime,
		RaffleUserDailyCap: c.Season.RaffleUserDailyCap,
		MaxCratePayout:     c.Season.MaxCratePayout,
		CreditDecimals:     decimals,
	}).Normalize()

	for name, ts := range c.Season.UnlockTimes {
		slot, err := parseSlot(name)
		if err != nil {
			return nil, err
		}
		out.UnlockTimes[slot] = ts
	}
	for tierName, slots := range c.Season.CratePrices {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		inner := make(map[market.Slot]uint64, len(slots))
		for slotName, price := range slots {
			slot, err := parseSlot(slotName)
			if err != nil {
				return nil, err
			}
			inner[slot] = price
		}
		out.CratePrices[tier] = inner
	}
	for tierName, total := range c.Season.CrateTotals {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		out.CrateTotals[tier] = total
	}
	for tierName, rate := range c.Season.CrateDailyRates {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		out.CrateDailyRates[tier] = rate
	}
	for tierName, cap := range c.Season.CrateUserDailyCaps {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		out.CrateUserDailyCaps[tier] = cap
	}
	for typeName, price := range c.Season.RafflePrices {
		typeID, err := strconv.ParseUint(typeName, 10, 32)
		if err != nil || typeID == 0 {
			return nil, fmt.Errorf("config: invalid raffle type %q", typeName)
		}
		out.RafflePrices[uint32(typeID)] = price
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("config: season: %w", err)
	}
	return out, nil
}
