package market

import (
	"math/big"
	"time"

	"seasonmarket/core/types"
	"seasonmarket/native/rng"
)

// State describes the ledger access the market engine needs from the
// surrounding state implementation. Every mutating operation is applied by the
// execution environment as a serialized, all-or-nothing transaction; the
// engine performs its checks against loaded copies and persists effects only
// once every guard has passed.
type State interface {
	rng.State
	SequenceState

	SeasonConfig() (*SeasonConfig, bool, error)
	SetSeasonConfig(cfg *SeasonConfig) error

	CrateQuota(tier Tier) (*QuotaPool, error)
	SetCrateQuota(tier Tier, pool *QuotaPool) error

	DailyCounters(addr Address, day uint64) (*DailyCounters, error)
	SetDailyCounters(addr Address, day uint64, counters *DailyCounters) error

	Crate(id uint64) (*Crate, bool, error)
	PutCrate(crate *Crate) error

	RaffleEntry(id uint64) (*RaffleEntry, bool, error)
	PutRaffleEntry(entry *RaffleEntry) error
	RafflePool(typeID uint32) ([]uint64, error)
	AppendRafflePool(typeID uint32, id uint64) error

	MerchItem(typeID uint32) (*MerchItem, bool, error)
	PutMerchItem(item *MerchItem) error
	MerchHolding(addr Address, typeID uint32) (*MerchHolding, bool, error)
	PutMerchHolding(addr Address, holding *MerchHolding) error

	Inventory(addr Address) (*Inventory, error)
	PutInventory(inv *Inventory) error

	TierWinners(tier uint32) ([]Winner, error)
	AppendTierWinner(tier uint32, w Winner) error
	TypeWinners(typeID uint32) ([]Winner, error)
	AppendTypeWinner(typeID uint32, w Winner) error
}

// PaymentLedger is the external credit bookkeeping collaborator. Debit is
// called exactly once per purchase, before any quota or inventory effect; a
// failed debit leaves the ledger untouched.
type PaymentLedger interface {
	Debit(addr Address, amount *big.Int) error
	Credit(addr Address, amount *big.Int) error
}

// Registry is the optional participant on-boarding collaborator. A nil
// registry admits every address.
type Registry interface {
	Registered(addr Address) (bool, error)
}

// Engine applies the market's purchase, opening, claim and draw operations.
type Engine struct {
	payments PaymentLedger
	gateway  *rng.Gateway
	registry Registry
	now      func() time.Time
}

// NewEngine constructs an engine backed by the supplied payment collaborator
// and randomness gateway.
func NewEngine(payments PaymentLedger, gateway *rng.Gateway) *Engine {
	return &Engine{payments: payments, gateway: gateway}
}

// SetRegistry installs the participant registry collaborator.
func (e *Engine) SetRegistry(r Registry) {
	if e == nil {
		return
	}
	e.registry = r
}

// SetClock overrides the engine clock, primarily for deterministic testing.
func (e *Engine) SetClock(now func() time.Time) {
	if e == nil {
		return
	}
	e.now = now
}

// Timestamp reports the engine's current Unix time, honoring any clock
// installed via SetClock.
func (e *Engine) Timestamp() int64 {
	return e.timestamp()
}

func (e *Engine) timestamp() int64 {
	if e != nil && e.now != nil {
		return e.now().Unix()
	}
	return time.Now().Unix()
}

func (e *Engine) checkRegistered(addr Address) error {
	if e == nil || e.registry == nil {
		return nil
	}
	ok, err := e.registry.Registered(addr)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	return nil
}

// seasonConfig loads the season configuration, failing closed when the season
// has not been initialized.
func seasonConfig(st State) (*SeasonConfig, error) {
	cfg, ok, err := st.SeasonConfig()
	if err != nil {
		return nil, err
	}
	if !ok || cfg == nil {
		return nil, ErrOutOfSeasonWindow
	}
	return cfg.Clone().Normalize(), nil
}

// creditsToBase scales a whole-credit amount into the smallest denomination.
func creditsToBase(units uint64, decimals uint8) *big.Int {
	amount := new(big.Int).SetUint64(units)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return amount.Mul(amount, scale)
}

func emit(st State, eventType string, attrs map[string]string) {
	st.AppendEvent(&types.Event{Type: eventType, Attributes: attrs})
}
