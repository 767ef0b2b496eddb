package shop

import "math/rand"

// Draw selects min(count, len(pool)) distinct entries from pool uniformly
// at random without replacement (shuffle-then-take). The pool slice is not
// modified. Returns nil for an empty pool or a non-positive count; callers
// treat that as "keep the previous rotation".
func Draw(pool []PoolEntry, count int, rng *rand.Rand) []PoolEntry {
	if len(pool) == 0 || count <= 0 {
		return nil
	}

	shuffled := make([]PoolEntry, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
