package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
)

// LedgerAdapter implements storage.LedgerStore for PostgreSQL. The event
// append and both aggregate upserts run in a single transaction: a crash
// mid-operation never leaves the event recorded without its aggregates, or
// vice versa.
type LedgerAdapter struct {
	db *sql.DB
}

// NewLedgerAdapter creates the ledger adapter on an existing connection.
func NewLedgerAdapter(db *sql.DB) *LedgerAdapter {
	return &LedgerAdapter{db: db}
}

// Append records one purchase event and upserts the buyer and item
// aggregates atomically.
func (a *LedgerAdapter) Append(ctx context.Context, event *shop.PurchaseEvent) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, queryInsertPurchaseEvent,
		event.ID,
		event.BuyerID,
		event.BuyerName,
		event.ItemKey,
		event.ItemName,
		event.Price,
		event.PurchasedAt,
		nullString(event.OriginTag),
	)
	if err != nil {
		return fmt.Errorf("failed to insert purchase event: %w", err)
	}

	_, err = tx.ExecContext(ctx, queryUpsertBuyerStats,
		event.BuyerID, event.BuyerName, event.Price, event.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert buyer stats: %w", err)
	}

	_, err = tx.ExecContext(ctx, queryUpsertItemStats,
		event.ItemKey, event.ItemName, event.Price, event.PurchasedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert item stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	slog.Debug("[Postgres] Recorded purchase",
		"event_id", event.ID,
		"buyer_id", event.BuyerID,
		"item_key", event.ItemKey,
		"price", event.Price)
	return nil
}

// BuyerHistory returns a buyer's purchase events newest-first.
func (a *LedgerAdapter) BuyerHistory(ctx context.Context, buyerID string) ([]shop.PurchaseEvent, error) {
	rows, err := a.db.QueryContext(ctx, queryBuyerHistory, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query buyer history: %w", err)
	}
	defer rows.Close()

	var events []shop.PurchaseEvent
	for rows.Next() {
		var (
			event     shop.PurchaseEvent
			originTag sql.NullString
		)
		err := rows.Scan(
			&event.ID,
			&event.BuyerID,
			&event.BuyerName,
			&event.ItemKey,
			&event.ItemName,
			&event.Price,
			&event.PurchasedAt,
			&originTag,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase event: %w", err)
		}
		event.OriginTag = originTag.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase events: %w", err)
	}
	return events, nil
}

// TopSpenders returns buyer aggregates with total_spent > 0, highest
// spender first.
func (a *LedgerAdapter) TopSpenders(ctx context.Context, limit int) ([]shop.BuyerStats, error) {
	rows, err := a.db.QueryContext(ctx, queryTopSpenders, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top spenders: %w", err)
	}
	defer rows.Close()

	var spenders []shop.BuyerStats
	for rows.Next() {
		var stats shop.BuyerStats
		err := rows.Scan(
			&stats.BuyerID,
			&stats.BuyerName,
			&stats.PurchaseCount,
			&stats.TotalSpent,
			&stats.FirstPurchaseAt,
			&stats.LastPurchaseAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan buyer stats: %w", err)
		}
		spenders = append(spenders, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buyer stats: %w", err)
	}
	return spenders, nil
}

// TopItems returns item aggregates by purchase count descending.
func (a *LedgerAdapter) TopItems(ctx context.Context, limit int) ([]shop.ItemStats, error) {
	rows, err := a.db.QueryContext(ctx, queryTopItems, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top items: %w", err)
	}
	defer rows.Close()

	var items []shop.ItemStats
	for rows.Next() {
		var stats shop.ItemStats
		err := rows.Scan(
			&stats.ItemKey,
			&stats.ItemName,
			&stats.TimesPurchased,
			&stats.TotalRevenue,
			&stats.LastPurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item stats: %w", err)
		}
		items = append(items, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item stats: %w", err)
	}
	return items, nil
}
