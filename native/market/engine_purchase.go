package market

import (
	"encoding/hex"
	"math/big"
	"strconv"
)

// BuyCrates purchases qty crates of one tier/slot pairing for the buyer. The
// payment collaborator is debited exactly once, after every quota and cap
// check has passed against loaded copies and before any ledger effect is
// persisted; a failing check or debit leaves the ledger untouched.
func (e *Engine) BuyCrates(st State, buyer Address, tier Tier, slot Slot, qty uint32, now int64) ([]uint64, error) {
	if st == nil || qty == 0 || !tier.Valid() || !slot.Valid() {
		return nil, ErrInvalidArgument
	}
	if err := e.checkRegistered(buyer); err != nil {
		return nil, err
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return nil, err
	}
	if !cfg.InSeason(now) {
		return nil, ErrOutOfSeasonWindow
	}
	price, ok := cfg.CratePrice(tier, slot)
	if !ok {
		return nil, ErrInvalidArgument
	}

	day := cfg.DayIndex(now)
	pool, err := st.CrateQuota(tier)
	if err != nil {
		return nil, err
	}
	counters, err := st.DailyCounters(buyer, day)
	if err != nil {
		return nil, err
	}
	if err := pool.ReserveGlobal(cfg.CrateTotals[tier], cfg.CrateDailyRates[tier], uint64(qty), day); err != nil {
		return nil, err
	}
	if err := ReserveUserDaily(counters, tier, qty, cfg.CrateUserDailyCaps[tier]); err != nil {
		return nil, err
	}
	if err := ensureSequenceCapacity(st, ClassCrate, qty, maxCrateSequence); err != nil {
		return nil, err
	}

	total := new(big.Int).Mul(creditsToBase(price, cfg.CreditDecimals), big.NewInt(int64(qty)))
	if err := e.payments.Debit(buyer, total); err != nil {
		return nil, err
	}
	if err := e.payments.Credit(cfg.Treasury, total); err != nil {
		return nil, err
	}

	if err := st.SetCrateQuota(tier, pool); err != nil {
		return nil, err
	}
	if err := st.SetDailyCounters(buyer, day, counters); err != nil {
		return nil, err
	}

	inv, err := st.Inventory(buyer)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, qty)
	for i := uint32(0); i < qty; i++ {
		id, err := AllocateCrateID(st, tier, slot)
		if err != nil {
			return nil, err
		}
		crate := &Crate{
			ID:          id,
			Owner:       buyer,
			Tier:        tier,
			Slot:        slot,
			UnlockTime:  cfg.UnlockTime(slot),
			Price:       price,
			PurchasedAt: now,
		}
		if err := st.PutCrate(crate); err != nil {
			return nil, err
		}
		inv.addCrate(id)
		ids = append(ids, id)
	}
	inv.Owner = buyer
	if err := st.PutInventory(inv); err != nil {
		return nil, err
	}

	emit(st, eventCratePurchased, map[string]string{
		"buyer":    hex.EncodeToString(buyer[:]),
		"tier":     tier.String(),
		"slot":     slot.String(),
		"quantity": strconv.FormatUint(uint64(qty), 10),
		"firstId":  strconv.FormatUint(ids[0], 10),
		"total":    total.String(),
	})
	return ids, nil
}

// BuyRaffleEntries purchases qty raffle entries of one type for the buyer.
func (e *Engine) BuyRaffleEntries(st State, buyer Address, typeID uint32, qty uint32, now int64) ([]uint64, error) {
	if st == nil || qty == 0 {
		return nil, ErrInvalidArgument
	}
	if err := e.checkRegistered(buyer); err != nil {
		return nil, err
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return nil, err
	}
	if !cfg.InSeason(now) {
		return nil, ErrOutOfSeasonWindow
	}
	price, ok := cfg.RafflePrice(typeID)
	if !ok {
		return nil, ErrInvalidArgument
	}

	day := cfg.DayIndex(now)
	counters, err := st.DailyCounters(buyer, day)
	if err != nil {
		return nil, err
	}
	if err := ReserveUserDailyRaffles(counters, qty, cfg.RaffleUserDailyCap); err != nil {
		return nil, err
	}
	if err := ensureSequenceCapacity(st, ClassRaffle, qty, maxRaffleSequence); err != nil {
		return nil, err
	}

	total := new(big.Int).Mul(creditsToBase(price, cfg.CreditDecimals), big.NewInt(int64(qty)))
	if err := e.payments.Debit(buyer, total); err != nil {
		return nil, err
	}
	if err := e.payments.Credit(cfg.Treasury, total); err != nil {
		return nil, err
	}

	if err := st.SetDailyCounters(buyer, day, counters); err != nil {
		return nil, err
	}

	inv, err := st.Inventory(buyer)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, qty)
	for i := uint32(0); i < qty; i++ {
		id, err := AllocateRaffleID(st, typeID)
		if err != nil {
			return nil, err
		}
		entry := &RaffleEntry{ID: id, Owner: buyer, TypeID: typeID, PurchasedAt: now}
		if err := st.PutRaffleEntry(entry); err != nil {
			return nil, err
		}
		if err := st.AppendRafflePool(typeID, id); err != nil {
			return nil, err
		}
		inv.addRaffle(id)
		ids = append(ids, id)
	}
	inv.Owner = buyer
	if err := st.PutInventory(inv); err != nil {
		return nil, err
	}

	emit(st, eventRafflePurchased, map[string]string{
		"buyer":    hex.EncodeToString(buyer[:]),
		"typeId":   strconv.FormatUint(uint64(typeID), 10),
		"quantity": strconv.FormatUint(uint64(qty), 10),
		"total":    total.String(),
	})
	return ids, nil
}

// BuyMerch purchases exactly one unit of a merchandise type. Quantities other
// than one are always rejected, and a participant may hold at most one unit of
// each type for the lifetime of the season.
func (e *Engine) BuyMerch(st State, buyer Address, typeID uint32, qty uint32, now int64) error {
	if st == nil {
		return ErrInvalidArgument
	}
	if qty != 1 {
		return ErrInvalidArgument
	}
	if err := e.checkRegistered(buyer); err != nil {
		return err
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return err
	}
	if !cfg.InSeason(now) {
		return ErrOutOfSeasonWindow
	}
	item, ok, err := st.MerchItem(typeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidArgument
	}
	if _, owned, err := st.MerchHolding(buyer, typeID); err != nil {
		return err
	} else if owned {
		return ErrAlreadyPurchased
	}

	window := cfg.WindowIndex(now)
	day := cfg.DayIndex(now)
	if err := item.Quota.ReserveWindow(item.TotalSupply, 1, window, day); err != nil {
		return err
	}

	total := creditsToBase(item.Price, cfg.CreditDecimals)
	if err := e.payments.Debit(buyer, total); err != nil {
		return err
	}
	if err := e.payments.Credit(cfg.Treasury, total); err != nil {
		return err
	}

	if err := st.PutMerchItem(item); err != nil {
		return err
	}
	holding := &MerchHolding{TypeID: typeID, PricePaid: item.Price, PurchasedAt: now}
	if err := st.PutMerchHolding(buyer, holding); err != nil {
		return err
	}
	inv, err := st.Inventory(buyer)
	if err != nil {
		return err
	}
	inv.Owner = buyer
	inv.addMerch(typeID)
	if err := st.PutInventory(inv); err != nil {
		return err
	}

	emit(st, eventMerchPurchased, map[string]string{
		"buyer":  hex.EncodeToString(buyer[:]),
		"typeId": strconv.FormatUint(uint64(typeID), 10),
		"name":   item.Name,
		"total":  total.String(),
	})
	return nil
}
