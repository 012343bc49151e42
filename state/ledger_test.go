package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"seasonmarket/core/types"
	"seasonmarket/native/market"
	"seasonmarket/native/rng"
	"seasonmarket/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(storage.NewMemDB())
}

func TestSeasonConfigRoundTrip(t *testing.T) {
	ledger := newTestLedger(t)

	_, ok, err := ledger.SeasonConfig()
	require.NoError(t, err)
	require.False(t, ok, "fresh ledger should have no season")

	cfg := (&market.SeasonConfig{
		Admin:     market.Address{0xAA},
		Treasury:  market.Address{0xBB},
		StartTime: 100,
		EndTime:   200,
	}).Normalize()
	cfg.CrateTotals[market.TierGold] = 5

	require.NoError(t, ledger.SetSeasonConfig(cfg))
	loaded, ok, err := ledger.SeasonConfig()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg.Admin, loaded.Admin)
	require.Equal(t, uint64(5), loaded.CrateTotals[market.TierGold])
	require.NotNil(t, loaded.RafflePrices, "loaded config should be normalized")
}

func TestCrateAndInventoryPersistence(t *testing.T) {
	ledger := newTestLedger(t)
	owner := market.Address{0x01}

	_, ok, err := ledger.Crate(42)
	require.NoError(t, err)
	require.False(t, ok)

	crate := &market.Crate{ID: 42, Owner: owner, Tier: market.TierSilver, Slot: market.SlotM2, Price: 40}
	require.NoError(t, ledger.PutCrate(crate))
	loaded, ok, err := ledger.Crate(42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, crate.Tier, loaded.Tier)

	inv, err := ledger.Inventory(owner)
	require.NoError(t, err)
	require.Empty(t, inv.CrateIDs, "fresh inventory should be empty")
}

func TestDailyCountersKeyedByDay(t *testing.T) {
	ledger := newTestLedger(t)
	addr := market.Address{0x01}

	counters := &market.DailyCounters{Bronze: 3}
	require.NoError(t, ledger.SetDailyCounters(addr, 5, counters))

	sameDay, err := ledger.DailyCounters(addr, 5)
	require.NoError(t, err)
	require.Equal(t, uint32(3), sameDay.Bronze)

	nextDay, err := ledger.DailyCounters(addr, 6)
	require.NoError(t, err)
	require.Zero(t, nextDay.Bronze, "day buckets must be independent")
}

func TestWinnerRecordsAppendOnly(t *testing.T) {
	ledger := newTestLedger(t)
	first := market.Winner{EntryID: 1, Owner: market.Address{0x01}}
	second := market.Winner{EntryID: 2, Owner: market.Address{0x02}}

	require.NoError(t, ledger.AppendTypeWinner(11, first))
	require.NoError(t, ledger.AppendTypeWinner(11, second))
	winners, err := ledger.TypeWinners(11)
	require.NoError(t, err)
	require.Equal(t, []market.Winner{first, second}, winners)

	require.NoError(t, ledger.AppendTierWinner(1, first))
	tierWinners, err := ledger.TierWinners(1)
	require.NoError(t, err)
	require.Len(t, tierWinners, 1)
}

func TestBalancesDebitCredit(t *testing.T) {
	ledger := newTestLedger(t)
	addr := market.Address{0x01}

	balance, err := ledger.Balance(addr)
	require.NoError(t, err)
	require.Zero(t, balance.Sign())

	require.NoError(t, ledger.Credit(addr, big.NewInt(100)))
	require.NoError(t, ledger.Debit(addr, big.NewInt(40)))
	balance, err = ledger.Balance(addr)
	require.NoError(t, err)
	require.Equal(t, int64(60), balance.Int64())

	err = ledger.Debit(addr, big.NewInt(61))
	require.ErrorIs(t, err, market.ErrInsufficientFunds)
	balance, err = ledger.Balance(addr)
	require.NoError(t, err)
	require.Equal(t, int64(60), balance.Int64(), "failed debit must not move funds")

	require.ErrorIs(t, ledger.Debit(addr, big.NewInt(-1)), market.ErrInvalidArgument)
	require.ErrorIs(t, ledger.Credit(addr, nil), market.ErrInvalidArgument)
}

func TestRandomnessRequestPersistence(t *testing.T) {
	ledger := newTestLedger(t)

	nonce, err := ledger.RandomnessNonce()
	require.NoError(t, err)
	require.Zero(t, nonce)
	require.NoError(t, ledger.SetRandomnessNonce(7))
	nonce, err = ledger.RandomnessNonce()
	require.NoError(t, err)
	require.Equal(t, uint64(7), nonce)

	var id [32]byte
	id[0] = 0x01
	req := &rng.Request{ID: id, Count: 4, Target: rng.Target{Kind: rng.TargetCrate, CrateID: 9}}
	require.NoError(t, ledger.PutRandomnessRequest(req))
	loaded, ok, err := ledger.RandomnessRequest(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint16(4), loaded.Count)
	require.Equal(t, uint64(9), loaded.Target.CrateID)
}

func TestRegistry(t *testing.T) {
	ledger := newTestLedger(t)
	addr := market.Address{0x01}

	ok, err := ledger.Registered(addr)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, ledger.RegisterParticipant(addr))
	ok, err = ledger.Registered(addr)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEventsAccumulateAndDrain(t *testing.T) {
	ledger := newTestLedger(t)
	ledger.AppendEvent(&types.Event{Type: "a"})
	ledger.AppendEvent(&types.Event{Type: "b"})
	ledger.AppendEvent(nil)

	require.Len(t, ledger.Events(), 2)
	drained := ledger.DrainEvents()
	require.Len(t, drained, 2)
	require.Empty(t, ledger.Events())
}
