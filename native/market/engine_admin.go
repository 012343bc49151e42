package market

import "strconv"

// InitSeason installs the season configuration exactly once.
func (e *Engine) InitSeason(st State, cfg *SeasonConfig) error {
	if st == nil || cfg == nil {
		return ErrInvalidArgument
	}
	if _, ok, err := st.SeasonConfig(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	normalized := cfg.Clone().Normalize()
	if err := normalized.Validate(); err != nil {
		return ErrInvalidArgument
	}
	return st.SetSeasonConfig(normalized)
}

// updateSeason loads the config, authorizes the caller, applies the mutation
// and persists the result when it still validates.
func (e *Engine) updateSeason(st State, caller Address, field string, mutate func(cfg *SeasonConfig)) error {
	if st == nil {
		return ErrInvalidArgument
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	mutate(cfg)
	if err := cfg.Validate(); err != nil {
		return ErrInvalidArgument
	}
	if err := st.SetSeasonConfig(cfg); err != nil {
		return err
	}
	emit(st, eventSeasonUpdated, map[string]string{"field": field})
	return nil
}

// SetSeasonWindow updates the sale window. Admin-gated.
func (e *Engine) SetSeasonWindow(st State, caller Address, start, end int64) error {
	return e.updateSeason(st, caller, "window", func(cfg *SeasonConfig) {
		cfg.StartTime = start
		cfg.EndTime = end
	})
}

// SetUnlockTime updates the crate opening unlock for a slot. Admin-gated.
func (e *Engine) SetUnlockTime(st State, caller Address, slot Slot, ts int64) error {
	if !slot.Valid() {
		return ErrInvalidArgument
	}
	return e.updateSeason(st, caller, "unlock:"+slot.String(), func(cfg *SeasonConfig) {
		cfg.UnlockTimes[slot] = ts
	})
}

// SetCratePrice updates the price for one tier/slot pairing. Admin-gated.
func (e *Engine) SetCratePrice(st State, caller Address, tier Tier, slot Slot, price uint64) error {
	if !tier.Valid() || !slot.Valid() {
		return ErrInvalidArgument
	}
	return e.updateSeason(st, caller, "cratePrice:"+tier.String()+":"+slot.String(), func(cfg *SeasonConfig) {
		slots, ok := cfg.CratePrices[tier]
		if !ok {
			slots = make(map[Slot]uint64)
			cfg.CratePrices[tier] = slots
		}
		slots[slot] = price
	})
}

// SetCrateQuotaParams updates the season total, daily release rate and
// per-participant daily cap for a crate tier. Admin-gated.
func (e *Engine) SetCrateQuotaParams(st State, caller Address, tier Tier, total, dailyRate uint64, userDailyCap uint32) error {
	if !tier.Valid() {
		return ErrInvalidArgument
	}
	return e.updateSeason(st, caller, "crateQuota:"+tier.String(), func(cfg *SeasonConfig) {
		cfg.CrateTotals[tier] = total
		cfg.CrateDailyRates[tier] = dailyRate
		cfg.CrateUserDailyCaps[tier] = userDailyCap
	})
}

// SetRafflePrice updates the entry price for a raffle type. Admin-gated.
func (e *Engine) SetRafflePrice(st State, caller Address, typeID uint32, price uint64) error {
	if typeID == 0 || typeID > maxRaffleTypeID {
		return ErrInvalidArgument
	}
	return e.updateSeason(st, caller, "rafflePrice:"+strconv.FormatUint(uint64(typeID), 10), func(cfg *SeasonConfig) {
		cfg.RafflePrices[typeID] = price
	})
}

// SetRaffleUserDailyCap updates the per-participant daily raffle purchase cap.
// Admin-gated.
func (e *Engine) SetRaffleUserDailyCap(st State, caller Address, cap uint32) error {
	return e.updateSeason(st, caller, "raffleUserDailyCap", func(cfg *SeasonConfig) {
		cfg.RaffleUserDailyCap = cap
	})
}

// SetMaxCratePayout updates the single-crate payout ceiling. Admin-gated.
func (e *Engine) SetMaxCratePayout(st State, caller Address, cap uint64) error {
	return e.updateSeason(st, caller, "maxCratePayout", func(cfg *SeasonConfig) {
		cfg.MaxCratePayout = cap
	})
}

// RegisterMerchItem installs a merchandise product exactly once. Admin-gated.
func (e *Engine) RegisterMerchItem(st State, caller Address, typeID uint32, name string, price, totalSupply uint64) error {
	if st == nil || typeID == 0 || totalSupply == 0 {
		return ErrInvalidArgument
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return err
	}
	if caller != cfg.Admin {
		return ErrUnauthorized
	}
	if _, ok, err := st.MerchItem(typeID); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	item := &MerchItem{TypeID: typeID, Name: name, Price: price, TotalSupply: totalSupply}
	return st.PutMerchItem(item)
}
