package market

// prizeStep maps a cumulative upper bound on the fine 1-10000 scale to a
// payout in whole credits.
type prizeStep struct {
	upper  uint32
	payout uint64
}

// Payout tables per tier. Bounds are cumulative; the final step is the
// jackpot for any fine value above the last explicit bound.
var prizeTables = map[Tier][]prizeStep{
	TierBronze: {
		{upper: 5000, payout: 20},
		{upper: 9000, payout: 300},
		{upper: 9999, payout: 1_600},
	},
	TierSilver: {
		{upper: 5000, payout: 80},
		{upper: 8400, payout: 1_600},
		{upper: 9900, payout: 8_000},
	},
	TierGold: {
		{upper: 4400, payout: 320},
		{upper: 7800, payout: 1_600},
		{upper: 9300, payout: 8_000},
	},
}

var prizeJackpots = map[Tier]uint64{
	TierBronze: 32_000,
	TierSilver: 32_000,
	TierGold:   80_000,
}

// ResolvePrize maps a random bucket in [1,100] onto the tier's payout table.
// The bucket is widened to a 1-10000 fine scale before threshold comparison so
// the tables can express sub-percent odds. The result is capped at maxCap.
// Identical inputs always produce identical output.
func ResolvePrize(tier Tier, bucket uint32, maxCap uint64) (uint64, error) {
	if !tier.Valid() {
		return 0, ErrInvalidArgument
	}
	if bucket < 1 || bucket > 100 {
		return 0, ErrInvalidArgument
	}
	fine := bucket * 100
	payout := prizeJackpots[tier]
	for _, step := range prizeTables[tier] {
		if fine <= step.upper {
			payout = step.payout
			break
		}
	}
	if maxCap > 0 && payout > maxCap {
		payout = maxCap
	}
	return payout, nil
}

// PrizeBucket derives the 1-100 bucket from a raw random value.
func PrizeBucket(random uint64) uint32 {
	return uint32(random%100) + 1
}
