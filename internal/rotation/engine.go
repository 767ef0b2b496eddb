// Package rotation owns the daily rotation lifecycle: drawing a bounded
// random subset of the pool, persisting it with its selection date, and
// serving it to concurrent readers.
package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage"
)

// Engine holds the active rotation behind a read/write lock. The lock is
// held only for the swap or the read, never across storage I/O, so purchase
// handling always observes a fully-formed rotation. Writers additionally
// serialize on writeMu across the whole draw-persist-swap sequence: a
// manual refresh racing a scheduler tick must never persist one draw while
// swapping in another.
type Engine struct {
	store     storage.StateStore
	itemCount int
	rng       *rand.Rand
	nowFn     func() time.Time

	writeMu sync.Mutex

	mu      sync.RWMutex
	current shop.Rotation
}

// Option customizes an Engine. Used by tests to pin the clock and the
// random source.
type Option func(*Engine)

func WithClock(nowFn func() time.Time) Option {
	return func(e *Engine) { e.nowFn = nowFn }
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates a rotation engine drawing itemCount entries per
// rotation (capped by pool size).
func NewEngine(store storage.StateStore, itemCount int, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		itemCount: itemCount,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		nowFn:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadOrInit restores the persisted rotation on startup. If the persisted
// selection date is today and the item list is non-empty, it is adopted
// as-is; otherwise a fresh rotation is drawn. Combined with the scheduler's
// date guard this gives at most one automatic rotation per calendar day
// across restarts, including the catch-up case where the process was down
// over a day boundary.
func (e *Engine) LoadOrInit(ctx context.Context) error {
	persisted, err := e.store.LoadRotation(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted rotation: %w", err)
	}

	today := shop.DateOf(e.nowFn())
	if persisted.SelectionDate == today && len(persisted.Items) > 0 {
		e.swap(persisted)
		slog.Info("[Rotation] Adopted persisted rotation",
			"selection_date", persisted.SelectionDate,
			"items", len(persisted.Items))
		return nil
	}

	if _, err := e.Rotate(ctx); err != nil {
		return err
	}
	return nil
}

// Rotate draws a fresh rotation from the pool, persists it, and swaps it
// in. It always produces a new draw when invoked; whether to call it is the
// caller's policy (the scheduler's once-per-day guard, or an explicit admin
// refresh). An empty pool is a no-op that leaves the previous rotation
// untouched. On a persist failure the previous rotation stays
// authoritative. Concurrent calls run one at a time, so the persisted
// rotation and the served one always come from the same draw.
func (e *Engine) Rotate(ctx context.Context) (shop.Rotation, error) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	pool, err := e.store.ListPool(ctx)
	if err != nil {
		return e.Current(), fmt.Errorf("failed to load pool: %w", err)
	}

	if len(pool) == 0 {
		slog.Warn("[Rotation] Pool is empty, keeping previous rotation")
		return e.Current(), nil
	}

	rotation := shop.Rotation{
		Items:         shop.Draw(pool, e.itemCount, e.rng),
		SelectionDate: shop.DateOf(e.nowFn()),
	}

	if err := e.store.SaveRotation(ctx, rotation); err != nil {
		return e.Current(), fmt.Errorf("failed to persist rotation: %w", err)
	}

	e.swap(rotation)
	slog.Info("[Rotation] Rotated daily items",
		"selection_date", rotation.SelectionDate,
		"items", len(rotation.Items),
		"pool_size", len(pool))
	return rotation, nil
}

// Current returns a copy of the active rotation.
func (e *Engine) Current() shop.Rotation {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]shop.PoolEntry, len(e.current.Items))
	copy(items, e.current.Items)
	return shop.Rotation{Items: items, SelectionDate: e.current.SelectionDate}
}

// SelectionDate returns the date of the active rotation; empty when no
// rotation has ever happened.
func (e *Engine) SelectionDate() shop.Date {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.SelectionDate
}

// ResolveSlot maps a zero-based slot to its entry in the active rotation.
// Slots outside the drawn items are legitimately empty and come back as
// shop.ErrUnknownSlot, not as a fault.
func (e *Engine) ResolveSlot(slot int) (shop.PoolEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if slot < 0 || slot >= len(e.current.Items) {
		return shop.PoolEntry{}, fmt.Errorf("%w: slot %d", shop.ErrUnknownSlot, slot+1)
	}
	return e.current.Items[slot], nil
}

func (e *Engine) swap(rotation shop.Rotation) {
	e.mu.Lock()
	e.current = rotation
	e.mu.Unlock()
}
