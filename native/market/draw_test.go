package market

import "testing"

func owner(b byte) Address {
	var addr Address
	addr[0] = b
	return addr
}

func entryPool(owners ...byte) []*RaffleEntry {
	pool := make([]*RaffleEntry, 0, len(owners))
	for i, b := range owners {
		pool = append(pool, &RaffleEntry{ID: uint64(i + 1), Owner: owner(b)})
	}
	return pool
}

func TestSelectWinnersInBoundsValuesUsedDirectly(t *testing.T) {
	pool := entryPool(1, 2, 3, 4)
	result := SelectWinners([]uint64{2, 0}, pool, 2, nil)
	if len(result.Winners) != 2 {
		t.Fatalf("winners = %d, want 2", len(result.Winners))
	}
	if result.Winners[0].EntryID != 3 || result.Winners[1].EntryID != 1 {
		t.Fatalf("unexpected winner order: %+v", result.Winners)
	}
}

func TestSelectWinnersOutOfBoundsValuesWrap(t *testing.T) {
	pool := entryPool(1, 2, 3)
	// 7 % 3 == 1.
	result := SelectWinners([]uint64{7}, pool, 1, nil)
	if len(result.Winners) != 1 || result.Winners[0].EntryID != 2 {
		t.Fatalf("unexpected wrap result: %+v", result.Winners)
	}
}

func TestSelectWinnersSkipsDuplicateOwnersWithoutConsumingSlots(t *testing.T) {
	pool := entryPool(1, 1, 2, 3)
	result := SelectWinners([]uint64{0, 1, 2, 3}, pool, 3, nil)
	if len(result.Winners) != 3 {
		t.Fatalf("winners = %d, want 3", len(result.Winners))
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	seen := make(map[Address]struct{})
	for _, w := range result.Winners {
		if _, dup := seen[w.Owner]; dup {
			t.Fatalf("duplicate winning owner %x", w.Owner)
		}
		seen[w.Owner] = struct{}{}
	}
}

func TestSelectWinnersHonorsTierLevelSeenSet(t *testing.T) {
	pool := entryPool(1, 2)
	tierSeen := map[Address]struct{}{owner(1): {}}
	result := SelectWinners([]uint64{0, 1}, pool, 2, tierSeen)
	if len(result.Winners) != 1 || result.Winners[0].Owner != owner(2) {
		t.Fatalf("expected only owner 2 to win, got %+v", result.Winners)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	if _, ok := tierSeen[owner(2)]; !ok {
		t.Fatalf("tierSeen was not extended with the accepted owner")
	}
}

func TestSelectWinnersExhaustedStreamYieldsFewer(t *testing.T) {
	pool := entryPool(1, 1, 1, 2)
	result := SelectWinners([]uint64{0, 1, 2}, pool, 3, nil)
	if len(result.Winners) != 1 {
		t.Fatalf("winners = %d, want 1 after exhausting the stream", len(result.Winners))
	}
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", result.Skipped)
	}
}

func TestSelectWinnersEmptyInputs(t *testing.T) {
	if got := SelectWinners([]uint64{1, 2}, nil, 3, nil); len(got.Winners) != 0 {
		t.Fatalf("empty pool produced winners: %+v", got.Winners)
	}
	if got := SelectWinners(nil, entryPool(1), 3, nil); len(got.Winners) != 0 {
		t.Fatalf("empty stream produced winners: %+v", got.Winners)
	}
	if got := SelectWinners([]uint64{1}, entryPool(1), 0, nil); len(got.Winners) != 0 {
		t.Fatalf("zero target produced winners: %+v", got.Winners)
	}
}
