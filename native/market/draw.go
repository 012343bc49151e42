package market

// DrawResult captures the winners accepted from one random-value stream.
type DrawResult struct {
	Winners []Winner
	// Skipped counts stream values discarded because their owner already won
	// within the tier for this draw cycle.
	Skipped int
}

// SelectWinners walks the random-value stream in order, mapping each value
// onto the sold-entry pool and accepting at most n distinct owners. Owners
// already present in tierSeen (the tier-level winner set spanning all types in
// the draw cycle) are skipped without consuming a winner slot. tierSeen is
// extended in place with each accepted owner. Exhausting the stream before
// reaching n winners is not an error; fewer winners are returned.
func SelectWinners(stream []uint64, pool []*RaffleEntry, n int, tierSeen map[Address]struct{}) DrawResult {
	result := DrawResult{}
	if n <= 0 || len(pool) == 0 {
		return result
	}
	if tierSeen == nil {
		tierSeen = make(map[Address]struct{})
	}
	size := uint64(len(pool))
	for _, r := range stream {
		if len(result.Winners) >= n {
			break
		}
		idx := r
		if idx >= size {
			idx = r % size
		}
		entry := pool[idx]
		if entry == nil {
			continue
		}
		if _, seen := tierSeen[entry.Owner]; seen {
			result.Skipped++
			continue
		}
		tierSeen[entry.Owner] = struct{}{}
		result.Winners = append(result.Winners, Winner{EntryID: entry.ID, Owner: entry.Owner})
	}
	return result
}
