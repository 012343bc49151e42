package market

const (
	eventCratePurchased  = "market.crate.purchased"
	eventCrateOpened     = "market.crate.opened"
	eventCrateRequested  = "market.crate.randomness_requested"
	eventPrizeClaimed    = "market.crate.prize_claimed"
	eventRafflePurchased = "market.raffle.purchased"
	eventRaffleDrawn     = "market.raffle.drawn"
	eventMerchPurchased  = "market.merch.purchased"
	eventSeasonUpdated   = "market.season.updated"
)
