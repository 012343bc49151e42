package market

import (
	"errors"
	"testing"
)

type memSequences struct {
	seqs map[IDClass]uint64
}

func newMemSequences() *memSequences {
	return &memSequences{seqs: make(map[IDClass]uint64)}
}

func (m *memSequences) IDSequence(class IDClass) (uint64, error) {
	return m.seqs[class], nil
}

func (m *memSequences) SetIDSequence(class IDClass, seq uint64) error {
	m.seqs[class] = seq
	return nil
}

func TestCrateIDRoundTrip(t *testing.T) {
	st := newMemSequences()
	for _, tier := range []Tier{TierBronze, TierSilver, TierGold} {
		for _, slot := range []Slot{SlotM1, SlotM2, SlotM3} {
			id, err := AllocateCrateID(st, tier, slot)
			if err != nil {
				t.Fatalf("allocate %s/%s: %v", tier, slot, err)
			}
			gotTier, gotSlot, seq, err := DecodeCrateID(id)
			if err != nil {
				t.Fatalf("decode %d: %v", id, err)
			}
			if gotTier != tier || gotSlot != slot {
				t.Fatalf("decode %d = %s/%s, want %s/%s", id, gotTier, gotSlot, tier, slot)
			}
			if seq == 0 {
				t.Fatalf("decode %d produced zero sequence", id)
			}
		}
	}
}

func TestCrateIDsDistinctAcrossSubtags(t *testing.T) {
	st := newMemSequences()
	seen := make(map[uint64]struct{})
	for i := 0; i < 100; i++ {
		tier := Tier(i%3 + 1)
		slot := Slot(i%3 + 1)
		id, err := AllocateCrateID(st, tier, slot)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate crate id %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestRaffleIDRoundTrip(t *testing.T) {
	st := newMemSequences()
	id, err := AllocateRaffleID(st, 21)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	typeID, seq, err := DecodeRaffleID(id)
	if err != nil {
		t.Fatalf("decode %d: %v", id, err)
	}
	if typeID != 21 || seq != 1 {
		t.Fatalf("decode %d = (%d,%d), want (21,1)", id, typeID, seq)
	}
}

func TestRaffleIDTypeBounds(t *testing.T) {
	st := newMemSequences()
	if _, err := AllocateRaffleID(st, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for type 0, got %v", err)
	}
	if _, err := AllocateRaffleID(st, 1000); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for type 1000, got %v", err)
	}
}

func TestSequenceExhaustion(t *testing.T) {
	st := newMemSequences()
	st.seqs[ClassRaffle] = maxRaffleSequence
	if _, err := AllocateRaffleID(st, 11); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected sequence exhausted, got %v", err)
	}
}

func TestEnsureSequenceCapacity(t *testing.T) {
	st := newMemSequences()
	st.seqs[ClassCrate] = maxCrateSequence - 1

	if err := ensureSequenceCapacity(st, ClassCrate, 1, maxCrateSequence); err != nil {
		t.Fatalf("one value left should admit qty 1: %v", err)
	}
	if err := ensureSequenceCapacity(st, ClassCrate, 2, maxCrateSequence); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected sequence exhausted for qty 2, got %v", err)
	}
	// The capacity check never consumes sequence values.
	if st.seqs[ClassCrate] != maxCrateSequence-1 {
		t.Fatalf("capacity check advanced the sequence to %d", st.seqs[ClassCrate])
	}
}

func TestDecodeRejectsMalformedIDs(t *testing.T) {
	if _, _, _, err := DecodeCrateID(0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for zero crate id, got %v", err)
	}
	// Tier 4 does not exist.
	if _, _, _, err := DecodeCrateID(4*crateTierMultiplier + crateSlotMultiplier + 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown tier, got %v", err)
	}
	// Zero sequence never allocated.
	if _, _, err := DecodeRaffleID(21 * raffleTypeMultiplier); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for zero raffle sequence, got %v", err)
	}
}

func TestRaffleTierOf(t *testing.T) {
	if got := RaffleTierOf(21); got != 2 {
		t.Fatalf("RaffleTierOf(21) = %d, want 2", got)
	}
	if RaffleTierOf(11) != RaffleTierOf(12) {
		t.Fatalf("types 11 and 12 should share a tier")
	}
	if RaffleTierOf(11) == RaffleTierOf(21) {
		t.Fatalf("types 11 and 21 should not share a tier")
	}
}
