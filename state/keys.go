package state

import (
	"encoding/hex"
	"strconv"
)

var (
	keySeasonConfig    = []byte("market/season")
	keyRandomnessNonce = []byte("rng/nonce")

	prefixIDSequence   = "market/seq/"
	prefixCrateQuota   = "market/quota/crate/"
	prefixCounters     = "market/counters/"
	prefixCrate        = "market/crate/"
	prefixRaffleEntry  = "market/raffle/entry/"
	prefixRafflePool   = "market/raffle/pool/"
	prefixMerchItem    = "market/merch/item/"
	prefixMerchHolding = "market/merch/holding/"
	prefixInventory    = "market/inventory/"
	prefixTierWinners  = "market/winners/tier/"
	prefixTypeWinners  = "market/winners/type/"
	prefixRandomness   = "rng/request/"
	prefixBalance      = "pay/balance/"
	prefixRegistered   = "registry/participant/"
)

func idSequenceKey(class uint8) []byte {
	return []byte(prefixIDSequence + strconv.FormatUint(uint64(class), 10))
}

func crateQuotaKey(tier uint8) []byte {
	return []byte(prefixCrateQuota + strconv.FormatUint(uint64(tier), 10))
}

func countersKey(addr [20]byte, day uint64) []byte {
	return []byte(prefixCounters + hex.EncodeToString(addr[:]) + "/" + strconv.FormatUint(day, 10))
}

func crateKey(id uint64) []byte {
	return []byte(prefixCrate + strconv.FormatUint(id, 10))
}

func raffleEntryKey(id uint64) []byte {
	return []byte(prefixRaffleEntry + strconv.FormatUint(id, 10))
}

func rafflePoolKey(typeID uint32) []byte {
	return []byte(prefixRafflePool + strconv.FormatUint(uint64(typeID), 10))
}

func merchItemKey(typeID uint32) []byte {
	return []byte(prefixMerchItem + strconv.FormatUint(uint64(typeID), 10))
}

func merchHoldingKey(addr [20]byte, typeID uint32) []byte {
	return []byte(prefixMerchHolding + hex.EncodeToString(addr[:]) + "/" + strconv.FormatUint(uint64(typeID), 10))
}

func inventoryKey(addr [20]byte) []byte {
	return []byte(prefixInventory + hex.EncodeToString(addr[:]))
}

func tierWinnersKey(tier uint32) []byte {
	return []byte(prefixTierWinners + strconv.FormatUint(uint64(tier), 10))
}

func typeWinnersKey(typeID uint32) []byte {
	return []byte(prefixTypeWinners + strconv.FormatUint(uint64(typeID), 10))
}

func randomnessKey(id [32]byte) []byte {
	return []byte(prefixRandomness + hex.EncodeToString(id[:]))
}

func balanceKey(addr [20]byte) []byte {
	return []byte(prefixBalance + hex.EncodeToString(addr[:]))
}

func registeredKey(addr [20]byte) []byte {
	return []byte(prefixRegistered + hex.EncodeToString(addr[:]))
}
