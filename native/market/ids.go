package market

// Composite id encoding. Multipliers are sized so a season's sequence values
// can never overflow into a subtag field; decode is round-trip exact.
const (
	crateTierMultiplier  = 1_000_000_000_000
	crateSlotMultiplier  = 1_000_000_000
	raffleTypeMultiplier = 1_000_000_000

	maxCrateSequence  = crateSlotMultiplier - 1
	maxRaffleSequence = raffleTypeMultiplier - 1
	maxRaffleTypeID   = 999
)

// IDClass names a resource class with its own strictly increasing sequence.
type IDClass uint8

const (
	ClassCrate IDClass = iota + 1
	ClassRaffle
)

// SequenceState exposes the per-class sequence counters the allocator needs
// from the surrounding state implementation.
type SequenceState interface {
	IDSequence(class IDClass) (uint64, error)
	SetIDSequence(class IDClass, seq uint64) error
}

// ensureSequenceCapacity verifies qty further allocations fit under max
// without consuming any sequence values. Purchase engines run this before any
// payment or quota effect so a mid-loop exhaustion can never strand a partial
// mint.
func ensureSequenceCapacity(st SequenceState, class IDClass, qty uint32, max uint64) error {
	seq, err := st.IDSequence(class)
	if err != nil {
		return err
	}
	if seq > max || uint64(qty) > max-seq {
		return ErrSequenceExhausted
	}
	return nil
}

func nextSequence(st SequenceState, class IDClass, max uint64) (uint64, error) {
	seq, err := st.IDSequence(class)
	if err != nil {
		return 0, err
	}
	next := seq + 1
	if next > max {
		return 0, ErrSequenceExhausted
	}
	if err := st.SetIDSequence(class, next); err != nil {
		return 0, err
	}
	return next, nil
}

// AllocateCrateID mints a globally unique crate id embedding the tier and slot.
func AllocateCrateID(st SequenceState, tier Tier, slot Slot) (uint64, error) {
	if !tier.Valid() || !slot.Valid() {
		return 0, ErrInvalidArgument
	}
	seq, err := nextSequence(st, ClassCrate, maxCrateSequence)
	if err != nil {
		return 0, err
	}
	return uint64(tier)*crateTierMultiplier + uint64(slot)*crateSlotMultiplier + seq, nil
}

// DecodeCrateID recovers the tier, slot and sequence embedded in a crate id.
func DecodeCrateID(id uint64) (Tier, Slot, uint64, error) {
	tier := Tier(id / crateTierMultiplier)
	rem := id % crateTierMultiplier
	slot := Slot(rem / crateSlotMultiplier)
	seq := rem % crateSlotMultiplier
	if !tier.Valid() || !slot.Valid() || seq == 0 {
		return 0, 0, 0, ErrInvalidArgument
	}
	return tier, slot, seq, nil
}

// AllocateRaffleID mints a globally unique raffle entry id embedding the type.
func AllocateRaffleID(st SequenceState, typeID uint32) (uint64, error) {
	if typeID == 0 || typeID > maxRaffleTypeID {
		return 0, ErrInvalidArgument
	}
	seq, err := nextSequence(st, ClassRaffle, maxRaffleSequence)
	if err != nil {
		return 0, err
	}
	return uint64(typeID)*raffleTypeMultiplier + seq, nil
}

// DecodeRaffleID recovers the raffle type and sequence embedded in an entry id.
func DecodeRaffleID(id uint64) (uint32, uint64, error) {
	typeID := id / raffleTypeMultiplier
	seq := id % raffleTypeMultiplier
	if typeID == 0 || typeID > maxRaffleTypeID || seq == 0 {
		return 0, 0, ErrInvalidArgument
	}
	return uint32(typeID), seq, nil
}
