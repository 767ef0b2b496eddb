package storage

import (
	"context"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
)

// StateStore persists the shop's configuration state: the item pool, the
// active rotation, and the rotation schedule. All mutations are durable
// before the call returns.
type StateStore interface {
	// ListPool returns the pool in its configured order, unfiltered.
	ListPool(ctx context.Context) ([]shop.PoolEntry, error)

	// AppendPoolEntry adds an entry at the end of the pool.
	AppendPoolEntry(ctx context.Context, entry shop.PoolEntry) error

	// RemovePoolEntry deletes the entry at the given zero-based position in
	// the ordered pool and returns it. Returns shop.ErrIndexOutOfRange when
	// the position does not exist.
	RemovePoolEntry(ctx context.Context, index int) (shop.PoolEntry, error)

	// SaveRotation atomically replaces the persisted rotation and its
	// selection date.
	SaveRotation(ctx context.Context, rotation shop.Rotation) error

	// LoadRotation returns the persisted rotation. A zero Rotation with a
	// nil error means nothing has been persisted yet.
	LoadRotation(ctx context.Context) (shop.Rotation, error)

	// SaveSchedule persists admin overrides of the rotation schedule.
	SaveSchedule(ctx context.Context, schedule shop.Schedule) error

	// LoadSchedule returns the persisted schedule override, if any.
	LoadSchedule(ctx context.Context) (shop.Schedule, bool, error)
}

// LedgerStore is the durable purchase ledger: an append-only event relation
// plus the two aggregate relations maintained in the same transaction.
type LedgerStore interface {
	// Append records one purchase event and upserts both aggregate rows as
	// a single atomic unit. A failure leaves neither the event nor the
	// aggregates written.
	Append(ctx context.Context, event *shop.PurchaseEvent) error

	// BuyerHistory returns a buyer's events newest-first.
	BuyerHistory(ctx context.Context, buyerID string) ([]shop.PurchaseEvent, error)

	// TopSpenders returns buyer aggregates with total_spent > 0, highest
	// spender first, limited to limit.
	TopSpenders(ctx context.Context, limit int) ([]shop.BuyerStats, error)

	// TopItems returns item aggregates by purchase count descending,
	// limited to limit.
	TopItems(ctx context.Context, limit int) ([]shop.ItemStats, error)
}
