// Package state provides the concrete ledger backing the market and rng
// engines. Records are JSON-encoded under prefixed keys in a key-value store;
// the surrounding node applies every mutating operation as a serialized
// transaction, so the ledger itself carries no locking.
package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"seasonmarket/core/types"
	"seasonmarket/native/market"
	"seasonmarket/native/rng"
	"seasonmarket/storage"
)

// Ledger implements market.State, rng.State, market.PaymentLedger and
// market.Registry over a storage.Database.
type Ledger struct {
	db     storage.Database
	events []types.Event
}

// NewLedger constructs a ledger over the supplied database.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) getJSON(key []byte, out interface{}) (bool, error) {
	raw, ok, err := l.db.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", string(key), err)
	}
	return true, nil
}

func (l *Ledger) putJSON(key []byte, in interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", string(key), err)
	}
	return l.db.Put(key, raw)
}

// --- events ---

// AppendEvent records an event emitted during the current transaction.
func (l *Ledger) AppendEvent(evt *types.Event) {
	if evt == nil {
		return
	}
	l.events = append(l.events, evt.Clone())
}

// Events returns a copy of the events accumulated since the last drain.
func (l *Ledger) Events() []types.Event {
	out := make([]types.Event, len(l.events))
	copy(out, l.events)
	return out
}

// DrainEvents returns and clears the accumulated events.
func (l *Ledger) DrainEvents() []types.Event {
	out := l.events
	l.events = nil
	return out
}

// --- id sequences ---

func (l *Ledger) IDSequence(class market.IDClass) (uint64, error) {
	raw, ok, err := l.db.Get(idSequenceKey(uint8(class)))
	if err != nil {
		return 0, err
	}
	if !ok || len(raw) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (l *Ledger) SetIDSequence(class market.IDClass, seq uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return l.db.Put(idSequenceKey(uint8(class)), buf[:])
}

// --- season config ---

func (l *Ledger) SeasonConfig() (*market.SeasonConfig, bool, error) {
	cfg := &market.SeasonConfig{}
	ok, err := l.getJSON(keySeasonConfig, cfg)
	if err != nil || !ok {
		return nil, false, err
	}
	return cfg.Normalize(), true, nil
}

func (l *Ledger) SetSeasonConfig(cfg *market.SeasonConfig) error {
	if cfg == nil {
		return fmt.Errorf("state: nil season config")
	}
	return l.putJSON(keySeasonConfig, cfg)
}

// --- quota pools and counters ---

func (l *Ledger) CrateQuota(tier market.Tier) (*market.QuotaPool, error) {
	pool := &market.QuotaPool{}
	if _, err := l.getJSON(crateQuotaKey(uint8(tier)), pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (l *Ledger) SetCrateQuota(tier market.Tier, pool *market.QuotaPool) error {
	return l.putJSON(crateQuotaKey(uint8(tier)), pool)
}

func (l *Ledger) DailyCounters(addr market.Address, day uint64) (*market.DailyCounters, error) {
	counters := &market.DailyCounters{}
	if _, err := l.getJSON(countersKey(addr, day), counters); err != nil {
		return nil, err
	}
	return counters, nil
}

func (l *Ledger) SetDailyCounters(addr market.Address, day uint64, counters *market.DailyCounters) error {
	return l.putJSON(countersKey(addr, day), counters)
}

// --- crates ---

func (l *Ledger) Crate(id uint64) (*market.Crate, bool, error) {
	crate := &market.Crate{}
	ok, err := l.getJSON(crateKey(id), crate)
	if err != nil || !ok {
		return nil, false, err
	}
	return crate, true, nil
}

func (l *Ledger) PutCrate(crate *market.Crate) error {
	if crate == nil {
		return fmt.Errorf("state: nil crate")
	}
	return l.putJSON(crateKey(crate.ID), crate)
}

// --- raffles ---

func (l *Ledger) RaffleEntry(id uint64) (*market.RaffleEntry, bool, error) {
	entry := &market.RaffleEntry{}
	ok, err := l.getJSON(raffleEntryKey(id), entry)
	if err != nil || !ok {
		return nil, false, err
	}
	return entry, true, nil
}

func (l *Ledger) PutRaffleEntry(entry *market.RaffleEntry) error {
	if entry == nil {
		return fmt.Errorf("state: nil raffle entry")
	}
	return l.putJSON(raffleEntryKey(entry.ID), entry)
}

func (l *Ledger) RafflePool(typeID uint32) ([]uint64, error) {
	var pool []uint64
	if _, err := l.getJSON(rafflePoolKey(typeID), &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (l *Ledger) AppendRafflePool(typeID uint32, id uint64) error {
	pool, err := l.RafflePool(typeID)
	if err != nil {
		return err
	}
	return l.putJSON(rafflePoolKey(typeID), append(pool, id))
}

// --- merch ---

func (l *Ledger) MerchItem(typeID uint32) (*market.MerchItem, bool, error) {
	item := &market.MerchItem{}
	ok, err := l.getJSON(merchItemKey(typeID), item)
	if err != nil || !ok {
		return nil, false, err
	}
	return item, true, nil
}

func (l *Ledger) PutMerchItem(item *market.MerchItem) error {
	if item == nil {
		return fmt.Errorf("state: nil merch item")
	}
	return l.putJSON(merchItemKey(item.TypeID), item)
}

func (l *Ledger) MerchHolding(addr market.Address, typeID uint32) (*market.MerchHolding, bool, error) {
	holding := &market.MerchHolding{}
	ok, err := l.getJSON(merchHoldingKey(addr, typeID), holding)
	if err != nil || !ok {
		return nil, false, err
	}
	return holding, true, nil
}

func (l *Ledger) PutMerchHolding(addr market.Address, holding *market.MerchHolding) error {
	if holding == nil {
		return fmt.Errorf("state: nil merch holding")
	}
	return l.putJSON(merchHoldingKey(addr, holding.TypeID), holding)
}

// --- inventory ---

func (l *Ledger) Inventory(addr market.Address) (*market.Inventory, error) {
	inv := &market.Inventory{Owner: addr}
	if _, err := l.getJSON(inventoryKey(addr), inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (l *Ledger) PutInventory(inv *market.Inventory) error {
	if inv == nil {
		return fmt.Errorf("state: nil inventory")
	}
	return l.putJSON(inventoryKey(inv.Owner), inv)
}

// --- winner records ---

func (l *Ledger) TierWinners(tier uint32) ([]market.Winner, error) {
	var winners []market.Winner
	if _, err := l.getJSON(tierWinnersKey(tier), &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

func (l *Ledger) AppendTierWinner(tier uint32, w market.Winner) error {
	winners, err := l.TierWinners(tier)
	if err != nil {
		return err
	}
	return l.putJSON(tierWinnersKey(tier), append(winners, w))
}

func (l *Ledger) TypeWinners(typeID uint32) ([]market.Winner, error) {
	var winners []market.Winner
	if _, err := l.getJSON(typeWinnersKey(typeID), &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

func (l *Ledger) AppendTypeWinner(typeID uint32, w market.Winner) error {
	winners, err := l.TypeWinners(typeID)
	if err != nil {
		return err
	}
	return l.putJSON(typeWinnersKey(typeID), append(winners, w))
}

// --- randomness requests ---

func (l *Ledger) RandomnessRequest(id [32]byte) (*rng.Request, bool, error) {
	req := &rng.Request{}
	ok, err := l.getJSON(randomnessKey(id), req)
	if err != nil || !ok {
		return nil, false, err
	}
	return req, true, nil
}

func (l *Ledger) PutRandomnessRequest(req *rng.Request) error {
	if req == nil {
		return fmt.Errorf("state: nil randomness request")
	}
	return l.putJSON(randomnessKey(req.ID), req)
}

func (l *Ledger) RandomnessNonce() (uint64, error) {
	raw, ok, err := l.db.Get(keyRandomnessNonce)
	if err != nil {
		return 0, err
	}
	if !ok || len(raw) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (l *Ledger) SetRandomnessNonce(nonce uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return l.db.Put(keyRandomnessNonce, buf[:])
}

// --- payment collaborator ---

// Balance returns the stored credit balance in base denomination.
func (l *Ledger) Balance(addr market.Address) (*big.Int, error) {
	raw, ok, err := l.db.Get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	balance, okParse := new(big.Int).SetString(string(raw), 10)
	if !okParse {
		return nil, fmt.Errorf("state: corrupt balance for %x", addr)
	}
	return balance, nil
}

func (l *Ledger) setBalance(addr market.Address, balance *big.Int) error {
	return l.db.Put(balanceKey(addr), []byte(balance.String()))
}

// Debit removes amount from the address balance, failing without effect when
// funds are insufficient.
func (l *Ledger) Debit(addr market.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return market.ErrInvalidArgument
	}
	balance, err := l.Balance(addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return market.ErrInsufficientFunds
	}
	return l.setBalance(addr, new(big.Int).Sub(balance, amount))
}

// Credit adds amount to the address balance.
func (l *Ledger) Credit(addr market.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return market.ErrInvalidArgument
	}
	balance, err := l.Balance(addr)
	if err != nil {
		return err
	}
	return l.setBalance(addr, new(big.Int).Add(balance, amount))
}

// --- participant registry ---

// RegisterParticipant marks the address as on-boarded.
func (l *Ledger) RegisterParticipant(addr market.Address) error {
	return l.db.Put(registeredKey(addr), []byte{1})
}

// Registered reports whether the address has been on-boarded.
func (l *Ledger) Registered(addr market.Address) (bool, error) {
	_, ok, err := l.db.Get(registeredKey(addr))
	if err != nil {
		return false, err
	}
	return ok, nil
}

var (
	_ market.State         = (*Ledger)(nil)
	_ rng.State            = (*Ledger)(nil)
	_ market.PaymentLedger = (*Ledger)(nil)
	_ market.Registry      = (*Ledger)(nil)
)
