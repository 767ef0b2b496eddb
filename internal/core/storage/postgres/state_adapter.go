package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
)

// StateAdapter implements storage.StateStore for PostgreSQL. It shares the
// connection pool owned by Adapter.
type StateAdapter struct {
	db *sql.DB
}

// NewStateAdapter creates the shop-state adapter on an existing connection.
func NewStateAdapter(db *sql.DB) *StateAdapter {
	return &StateAdapter{db: db}
}

// ListPool returns the pool in configured order, unfiltered.
func (a *StateAdapter) ListPool(ctx context.Context) ([]shop.PoolEntry, error) {
	rows, err := a.db.QueryContext(ctx, queryListPool)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool entries: %w", err)
	}
	defer rows.Close()

	var pool []shop.PoolEntry
	for rows.Next() {
		entry, err := scanPoolEntry(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pool entries: %w", err)
	}
	return pool, nil
}

// AppendPoolEntry adds an entry at the end of the pool.
func (a *StateAdapter) AppendPoolEntry(ctx context.Context, entry shop.PoolEntry) error {
	_, err := a.db.ExecContext(ctx, queryAppendPoolEntry,
		entry.Material, nullString(entry.DisplayName), entry.Price)
	if err != nil {
		return fmt.Errorf("failed to append pool entry: %w", err)
	}

	slog.Debug("[Postgres] Appended pool entry",
		"material", entry.Material,
		"price", entry.Price)
	return nil
}

// RemovePoolEntry deletes the entry at the given zero-based position and
// returns it. The position-to-row resolution and the delete run in one
// transaction so concurrent removes cannot delete the same row twice.
func (a *StateAdapter) RemovePoolEntry(ctx context.Context, index int) (shop.PoolEntry, error) {
	if index < 0 {
		return shop.PoolEntry{}, fmt.Errorf("%w: %d", shop.ErrIndexOutOfRange, index+1)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return shop.PoolEntry{}, fmt.Errorf("failed to begin pool transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		position    int64
		entry       shop.PoolEntry
		displayName sql.NullString
	)
	err = tx.QueryRowContext(ctx, querySelectPoolEntryAt, index).
		Scan(&position, &entry.Material, &displayName, &entry.Price)
	if err == sql.ErrNoRows {
		return shop.PoolEntry{}, fmt.Errorf("%w: %d", shop.ErrIndexOutOfRange, index+1)
	}
	if err != nil {
		return shop.PoolEntry{}, fmt.Errorf("failed to resolve pool entry at %d: %w", index, err)
	}
	entry.DisplayName = displayName.String

	if _, err := tx.ExecContext(ctx, queryDeletePoolEntry, position); err != nil {
		return shop.PoolEntry{}, fmt.Errorf("failed to delete pool entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return shop.PoolEntry{}, fmt.Errorf("failed to commit pool transaction: %w", err)
	}

	slog.Debug("[Postgres] Removed pool entry",
		"index", index,
		"material", entry.Material)
	return entry, nil
}

// SaveRotation replaces the persisted rotation atomically: the item list
// and the selection date land in one transaction, so a reader never sees a
// half-written rotation.
func (a *StateAdapter) SaveRotation(ctx context.Context, rotation shop.Rotation) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rotation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, queryClearRotationItems); err != nil {
		return fmt.Errorf("failed to clear rotation items: %w", err)
	}

	for slot, item := range rotation.Items {
		_, err := tx.ExecContext(ctx, queryInsertRotationItem,
			slot, item.Material, nullString(item.DisplayName), item.Price)
		if err != nil {
			return fmt.Errorf("failed to insert rotation item at slot %d: %w", slot, err)
		}
	}

	if _, err := tx.ExecContext(ctx, queryUpsertRotationState, string(rotation.SelectionDate)); err != nil {
		return fmt.Errorf("failed to save rotation state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rotation transaction: %w", err)
	}

	slog.Debug("[Postgres] Saved rotation",
		"selection_date", rotation.SelectionDate,
		"items", len(rotation.Items))
	return nil
}

// LoadRotation returns the persisted rotation, or a zero Rotation when
// nothing has been persisted yet.
func (a *StateAdapter) LoadRotation(ctx context.Context) (shop.Rotation, error) {
	var selectionDate time.Time
	err := a.db.QueryRowContext(ctx, querySelectRotationState).Scan(&selectionDate)
	if err == sql.ErrNoRows {
		return shop.Rotation{}, nil
	}
	if err != nil {
		return shop.Rotation{}, fmt.Errorf("failed to query rotation state: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, querySelectRotationItems)
	if err != nil {
		return shop.Rotation{}, fmt.Errorf("failed to query rotation items: %w", err)
	}
	defer rows.Close()

	rotation := shop.Rotation{SelectionDate: shop.DateOf(selectionDate.UTC())}
	for rows.Next() {
		item, err := scanPoolEntry(rows)
		if err != nil {
			return shop.Rotation{}, err
		}
		rotation.Items = append(rotation.Items, item)
	}
	if err := rows.Err(); err != nil {
		return shop.Rotation{}, fmt.Errorf("error iterating rotation items: %w", err)
	}
	return rotation, nil
}

// SaveSchedule persists admin overrides of the rotation schedule.
func (a *StateAdapter) SaveSchedule(ctx context.Context, schedule shop.Schedule) error {
	_, err := a.db.ExecContext(ctx, queryUpsertSchedule,
		schedule.RefreshHour, int64(schedule.CheckInterval/time.Second))
	if err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// LoadSchedule returns the persisted schedule override, if any.
func (a *StateAdapter) LoadSchedule(ctx context.Context) (shop.Schedule, bool, error) {
	var (
		refreshHour     int
		intervalSeconds int64
	)
	err := a.db.QueryRowContext(ctx, querySelectSchedule).Scan(&refreshHour, &intervalSeconds)
	if err == sql.ErrNoRows {
		return shop.Schedule{}, false, nil
	}
	if err != nil {
		return shop.Schedule{}, false, fmt.Errorf("failed to query schedule: %w", err)
	}
	return shop.Schedule{
		RefreshHour:   refreshHour,
		CheckInterval: time.Duration(intervalSeconds) * time.Second,
	}, true, nil
}

// scanPoolEntry reads (material, display_name, price) from the current row.
func scanPoolEntry(rows *sql.Rows) (shop.PoolEntry, error) {
	var (
		entry       shop.PoolEntry
		displayName sql.NullString
	)
	if err := rows.Scan(&entry.Material, &displayName, &entry.Price); err != nil {
		return shop.PoolEntry{}, fmt.Errorf("failed to scan pool entry: %w", err)
	}
	entry.DisplayName = displayName.String
	return entry, nil
}

// nullString maps "" to NULL for nullable text columns.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
