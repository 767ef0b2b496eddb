package shop

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testPool(n int) []PoolEntry {
	pool := make([]PoolEntry, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, PoolEntry{
			Material: string(rune('A' + i)),
			Price:    decimal.NewFromInt(int64(i + 1)),
		})
	}
	return pool
}

func TestDraw_SizeIsMinOfCountAndPool(t *testing.T) {
	tests := []struct {
		name     string
		poolSize int
		count    int
		want     int
	}{
		{name: "count below pool size", poolSize: 10, count: 5, want: 5},
		{name: "count equals pool size", poolSize: 5, count: 5, want: 5},
		{name: "count above pool size", poolSize: 3, count: 7, want: 3},
		{name: "single entry", poolSize: 1, count: 5, want: 1},
	}

	rng := rand.New(rand.NewSource(42))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drawn := Draw(testPool(tt.poolSize), tt.count, rng)
			require.Len(t, drawn, tt.want)
		})
	}
}

func TestDraw_EntriesAreDistinctAndFromPool(t *testing.T) {
	pool := testPool(20)
	rng := rand.New(rand.NewSource(7))

	members := make(map[string]struct{}, len(pool))
	for _, entry := range pool {
		members[entry.Material] = struct{}{}
	}

	// Repeated draws: every result must be a distinct sample from the pool.
	for i := 0; i < 50; i++ {
		drawn := Draw(pool, 5, rng)
		require.Len(t, drawn, 5)

		seen := make(map[string]struct{}, len(drawn))
		for _, entry := range drawn {
			_, inPool := members[entry.Material]
			require.True(t, inPool, "drawn entry %q not in pool", entry.Material)

			_, dup := seen[entry.Material]
			require.False(t, dup, "duplicate entry %q in draw", entry.Material)
			seen[entry.Material] = struct{}{}
		}
	}
}

func TestDraw_EmptyPoolAndZeroCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	require.Nil(t, Draw(nil, 5, rng))
	require.Nil(t, Draw([]PoolEntry{}, 5, rng))
	require.Nil(t, Draw(testPool(3), 0, rng))
}

func TestDraw_DoesNotMutatePool(t *testing.T) {
	pool := testPool(10)
	before := make([]PoolEntry, len(pool))
	copy(before, pool)

	rng := rand.New(rand.NewSource(3))
	Draw(pool, 4, rng)

	require.Equal(t, before, pool)
}
