package market

import "math"

// QuotaPool tracks cumulative and bucketed sale counters for one crate tier or
// one merchandise type. SoldPerDay is informational for crates and merch alike;
// only the cumulative carry-forward check (crates) and the six-hour window
// check (merch) gate purchases.
type QuotaPool struct {
	CumulativeSold uint64            `json:"cumulativeSold"`
	SoldPerDay     map[uint64]uint64 `json:"soldPerDay,omitempty"`
	SoldPerWindow  map[uint64]uint64 `json:"soldPerWindow,omitempty"`
}

// Clone produces a deep copy of the pool.
func (p *QuotaPool) Clone() *QuotaPool {
	if p == nil {
		return &QuotaPool{}
	}
	clone := &QuotaPool{CumulativeSold: p.CumulativeSold}
	if p.SoldPerDay != nil {
		clone.SoldPerDay = make(map[uint64]uint64, len(p.SoldPerDay))
		for k, v := range p.SoldPerDay {
			clone.SoldPerDay[k] = v
		}
	}
	if p.SoldPerWindow != nil {
		clone.SoldPerWindow = make(map[uint64]uint64, len(p.SoldPerWindow))
		for k, v := range p.SoldPerWindow {
			clone.SoldPerWindow[k] = v
		}
	}
	return clone
}

func (p *QuotaPool) recordDay(day, qty uint64) {
	if p.SoldPerDay == nil {
		p.SoldPerDay = make(map[uint64]uint64)
	}
	p.SoldPerDay[day] += qty
}

func (p *QuotaPool) recordWindow(window, qty uint64) {
	if p.SoldPerWindow == nil {
		p.SoldPerWindow = make(map[uint64]uint64)
	}
	p.SoldPerWindow[window] += qty
}

// carryForwardAllowance computes the cumulative sale allowance after day
// buckets 0..day have been released: min(totalCap, (day+1)*perDayRate).
func carryForwardAllowance(totalCap, perDayRate, day uint64) uint64 {
	if perDayRate == 0 {
		return totalCap
	}
	if day+1 > math.MaxUint64/perDayRate {
		return totalCap
	}
	released := (day + 1) * perDayRate
	if released > totalCap {
		return totalCap
	}
	return released
}

// Allowance reports the carry-forward allowance for a day, for read surfaces.
func Allowance(totalCap, perDayRate, day uint64) uint64 {
	return carryForwardAllowance(totalCap, perDayRate, day)
}

// ReserveGlobal commits qty units against the carry-forward allowance for the
// given day bucket. All checks run before any counter mutates; on failure the
// pool is untouched.
func (p *QuotaPool) ReserveGlobal(totalCap, perDayRate, qty, day uint64) error {
	if p == nil || qty == 0 {
		return ErrInvalidArgument
	}
	if p.CumulativeSold > math.MaxUint64-qty {
		return ErrQuotaExceeded
	}
	allowed := carryForwardAllowance(totalCap, perDayRate, day)
	if p.CumulativeSold+qty > allowed {
		return ErrQuotaExceeded
	}
	p.CumulativeSold += qty
	p.recordDay(day, qty)
	return nil
}

// ReserveWindow commits qty units for a merchandise pool. The season supply cap
// and the rolling six-hour release limit (totalSupply/4 units unlocked per
// elapsed window) both gate the purchase; the per-day bucket is recorded but
// intentionally not enforced.
func (p *QuotaPool) ReserveWindow(totalSupply, qty, window, day uint64) error {
	if p == nil || qty == 0 {
		return ErrInvalidArgument
	}
	if p.CumulativeSold > math.MaxUint64-qty {
		return ErrSupplyExceeded
	}
	if p.CumulativeSold+qty > totalSupply {
		return ErrSupplyExceeded
	}
	windowLimit := totalSupply / MerchWindowDivisor
	released := uint64(math.MaxUint64)
	if windowLimit == 0 || window+1 <= math.MaxUint64/windowLimit {
		released = windowLimit * (window + 1)
	}
	if p.CumulativeSold+qty > released {
		return ErrWindowLimitExceeded
	}
	p.CumulativeSold += qty
	p.recordWindow(window, qty)
	p.recordDay(day, qty)
	return nil
}

// ReserveUserDaily commits qty purchases of the supplied crate tier against a
// participant's same-day counters. A zero cap disables the limit.
func ReserveUserDaily(c *DailyCounters, tier Tier, qty, cap uint32) error {
	if c == nil || qty == 0 {
		return ErrInvalidArgument
	}
	current := c.TierCount(tier)
	if current > math.MaxUint32-qty {
		return ErrUserDailyLimitExceeded
	}
	if cap > 0 && current+qty > cap {
		return ErrUserDailyLimitExceeded
	}
	c.addTier(tier, qty)
	return nil
}

// ReserveUserDailyRaffles commits qty raffle purchases against a participant's
// same-day raffle counter. A zero cap disables the limit.
func ReserveUserDailyRaffles(c *DailyCounters, qty, cap uint32) error {
	if c == nil || qty == 0 {
		return ErrInvalidArgument
	}
	if c.Raffles > math.MaxUint32-qty {
		return ErrUserDailyLimitExceeded
	}
	if cap > 0 && c.Raffles+qty > cap {
		return ErrUserDailyLimitExceeded
	}
	c.Raffles += qty
	return nil
}
