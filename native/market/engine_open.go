package market

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"seasonmarket/native/rng"
)

// DefaultConfirmations is the oracle block-confirmation depth requested when
// the engine has not been configured otherwise.
const DefaultConfirmations uint16 = 3

// maxDrawWinners keeps 2*N random values within the gateway's split capacity.
const maxDrawWinners = 510

// OpenCrate issues the randomness request that will eventually resolve the
// crate's prize. Exactly one random value is requested per crate. A crate with
// a pending request rejects a second open attempt.
func (e *Engine) OpenCrate(st State, caller Address, crateID uint64, now int64) ([32]byte, error) {
	var zero [32]byte
	if st == nil || e.gateway == nil {
		return zero, ErrInvalidArgument
	}
	crate, ok, err := st.Crate(crateID)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrInvalidArgument
	}
	if crate.Owner != caller {
		return zero, ErrNotOwner
	}
	if crate.Opened {
		return zero, ErrAlreadyOpened
	}
	if len(crate.RequestID) > 0 {
		return zero, ErrAlreadyRequested
	}
	if now < crate.UnlockTime {
		return zero, ErrNotYetUnlocked
	}

	var idBytes, nowBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], crateID)
	binary.BigEndian.PutUint64(nowBytes[:], uint64(now))
	seed := rng.Seed(idBytes[:], nowBytes[:], caller[:])

	target := rng.Target{Kind: rng.TargetCrate, CrateID: crateID}
	ids, err := e.gateway.Request(st, target, 1, seed, e.confirmations(), caller)
	if err != nil {
		return zero, err
	}
	crate.RequestID = append([]byte(nil), ids[0][:]...)
	if err := st.PutCrate(crate); err != nil {
		return zero, err
	}

	emit(st, eventCrateRequested, map[string]string{
		"crateId":       strconv.FormatUint(crateID, 10),
		"owner":         hex.EncodeToString(caller[:]),
		"correlationId": hex.EncodeToString(ids[0][:]),
	})
	return ids[0], nil
}

// ClaimPrize pays out an opened crate's prize exactly once. The treasury is
// debited and the owner credited through the payment collaborator.
func (e *Engine) ClaimPrize(st State, caller Address, crateID uint64) (uint64, error) {
	if st == nil {
		return 0, ErrInvalidArgument
	}
	crate, ok, err := st.Crate(crateID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrInvalidArgument
	}
	if crate.Owner != caller {
		return 0, ErrNotOwner
	}
	if !crate.Opened {
		return 0, ErrNotYetOpened
	}
	if crate.Claimed {
		return 0, ErrAlreadyClaimed
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return 0, err
	}

	amount := creditsToBase(crate.Prize, cfg.CreditDecimals)
	if err := e.payments.Debit(cfg.Treasury, amount); err != nil {
		return 0, err
	}
	if err := e.payments.Credit(caller, amount); err != nil {
		return 0, err
	}

	crate.Claimed = true
	if err := st.PutCrate(crate); err != nil {
		return 0, err
	}
	emit(st, eventPrizeClaimed, map[string]string{
		"crateId": strconv.FormatUint(crateID, 10),
		"owner":   hex.EncodeToString(caller[:]),
		"prize":   strconv.FormatUint(crate.Prize, 10),
	})
	return crate.Prize, nil
}

// DrawRaffleWinners requests randomness for a raffle draw. Twice the target
// winner count is requested to provide slack for duplicate-owner skips during
// selection. Admin-gated.
func (e *Engine) DrawRaffleWinners(st State, caller Address, typeID uint32, winnerCount uint32, now int64) ([][32]byte, error) {
	if st == nil || e.gateway == nil {
		return nil, ErrInvalidArgument
	}
	if winnerCount == 0 || winnerCount > maxDrawWinners {
		return nil, ErrInvalidArgument
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return nil, err
	}
	if caller != cfg.Admin {
		return nil, ErrUnauthorized
	}
	pool, err := st.RafflePool(typeID)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrInvalidArgument
	}

	var typeBytes [4]byte
	var nowBytes [8]byte
	binary.BigEndian.PutUint32(typeBytes[:], typeID)
	binary.BigEndian.PutUint64(nowBytes[:], uint64(now))
	seed := rng.Seed(typeBytes[:], nowBytes[:])

	target := rng.Target{Kind: rng.TargetRaffleDraw, TypeID: typeID, WinnerCount: winnerCount}
	ids, err := e.gateway.Request(st, target, uint16(2*winnerCount), seed, e.confirmations(), caller)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (e *Engine) confirmations() uint16 {
	return DefaultConfirmations
}

// HandleCrateRandomness derives the prize bucket from the delivered value and
// resolves the crate. Opened, Prize and OpenedAt are set exactly once.
func (e *Engine) HandleCrateRandomness(st State, crateID uint64, values []uint64) error {
	if st == nil || len(values) == 0 {
		return ErrInvalidArgument
	}
	crate, ok, err := st.Crate(crateID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidArgument
	}
	if crate.Opened {
		return ErrAlreadyOpened
	}
	cfg, err := seasonConfig(st)
	if err != nil {
		return err
	}
	bucket := PrizeBucket(values[0])
	prize, err := ResolvePrize(crate.Tier, bucket, cfg.MaxCratePayout)
	if err != nil {
		return err
	}
	crate.Opened = true
	crate.OpenedAt = e.timestamp()
	crate.Prize = prize
	if err := st.PutCrate(crate); err != nil {
		return err
	}
	emit(st, eventCrateOpened, map[string]string{
		"crateId": strconv.FormatUint(crateID, 10),
		"owner":   hex.EncodeToString(crate.Owner[:]),
		"tier":    crate.Tier.String(),
		"bucket":  strconv.FormatUint(uint64(bucket), 10),
		"prize":   strconv.FormatUint(prize, 10),
	})
	return nil
}

// HandleDrawRandomness runs winner selection for one raffle type using the
// delivered value stream. The tier-level winner set spans all types in the
// tier, so owners who already won a sibling type this season are skipped.
// Split deliveries each contribute winners up to the remaining target; a
// stream exhausted early simply yields fewer winners.
func (e *Engine) HandleDrawRandomness(st State, typeID uint32, winnerCount uint32, values []uint64) error {
	if st == nil {
		return ErrInvalidArgument
	}
	tier := RaffleTierOf(typeID)
	existing, err := st.TypeWinners(typeID)
	if err != nil {
		return err
	}
	remaining := int(winnerCount) - len(existing)
	if remaining <= 0 {
		return nil
	}
	tierWinners, err := st.TierWinners(tier)
	if err != nil {
		return err
	}
	seen := make(map[Address]struct{}, len(tierWinners))
	for _, w := range tierWinners {
		seen[w.Owner] = struct{}{}
	}

	poolIDs, err := st.RafflePool(typeID)
	if err != nil {
		return err
	}
	entries := make([]*RaffleEntry, 0, len(poolIDs))
	for _, id := range poolIDs {
		entry, ok, err := st.RaffleEntry(id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidArgument
		}
		entries = append(entries, entry)
	}

	result := SelectWinners(values, entries, remaining, seen)
	for _, w := range result.Winners {
		if err := st.AppendTierWinner(tier, w); err != nil {
			return err
		}
		if err := st.AppendTypeWinner(typeID, w); err != nil {
			return err
		}
	}
	emit(st, eventRaffleDrawn, map[string]string{
		"typeId":  strconv.FormatUint(uint64(typeID), 10),
		"tier":    strconv.FormatUint(uint64(tier), 10),
		"winners": strconv.Itoa(len(result.Winners)),
		"skipped": strconv.Itoa(result.Skipped),
	})
	return nil
}

type randomnessSink struct {
	eng *Engine
	st  State
}

// RandomnessSink binds the engine to a ledger state for use as the gateway's
// delivery sink.
func (e *Engine) RandomnessSink(st State) rng.Sink {
	return &randomnessSink{eng: e, st: st}
}

func (s *randomnessSink) OnRandomness(target rng.Target, values []uint64) error {
	switch target.Kind {
	case rng.TargetCrate:
		return s.eng.HandleCrateRandomness(s.st, target.CrateID, values)
	case rng.TargetRaffleDraw:
		return s.eng.HandleDrawRandomness(s.st, target.TypeID, target.WinnerCount, values)
	}
	return ErrInvalidArgument
}
