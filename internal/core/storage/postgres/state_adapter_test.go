package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMockStateAdapter(t *testing.T) (*StateAdapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewStateAdapter(db), mock, db
}

func TestStateAdapter_ListPool(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryListPool)).
		WillReturnRows(sqlmock.NewRows([]string{"material", "display_name", "price"}).
			AddRow("DIAMOND", "Shiny Diamond", "250.50").
			AddRow("IRON_INGOT", nil, "10"))

	pool, err := adapter.ListPool(context.Background())
	require.NoError(t, err)
	require.Len(t, pool, 2)
	require.Equal(t, "DIAMOND", pool[0].Material)
	require.Equal(t, "Shiny Diamond", pool[0].DisplayName)
	require.True(t, pool[0].Price.Equal(decimal.RequireFromString("250.50")))
	require.Equal(t, "", pool[1].DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_AppendPoolEntry(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	entry := shop.PoolEntry{
		Material:    "DIAMOND",
		DisplayName: "Shiny Diamond",
		Price:       decimal.NewFromInt(250),
	}

	mock.ExpectExec(regexp.QuoteMeta(queryAppendPoolEntry)).
		WithArgs(entry.Material, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.AppendPoolEntry(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_RemovePoolEntry(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(querySelectPoolEntryAt)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"position", "material", "display_name", "price"}).
			AddRow(int64(7), "IRON_INGOT", nil, "10"))
	mock.ExpectExec(regexp.QuoteMeta(queryDeletePoolEntry)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entry, err := adapter.RemovePoolEntry(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "IRON_INGOT", entry.Material)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_RemovePoolEntryOutOfRange(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(querySelectPoolEntryAt)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := adapter.RemovePoolEntry(context.Background(), 99)
	require.ErrorIs(t, err, shop.ErrIndexOutOfRange)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_RemovePoolEntryNegativeIndex(t *testing.T) {
	adapter, _, db := newMockStateAdapter(t)
	defer db.Close()

	_, err := adapter.RemovePoolEntry(context.Background(), -1)
	require.ErrorIs(t, err, shop.ErrIndexOutOfRange)
}

func TestStateAdapter_SaveRotation(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	rotation := shop.Rotation{
		Items: []shop.PoolEntry{
			{Material: "DIAMOND", Price: decimal.NewFromInt(250)},
			{Material: "EMERALD", DisplayName: "Gem", Price: decimal.NewFromInt(99)},
		},
		SelectionDate: shop.Date("2026-08-30"),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryClearRotationItems)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertRotationItem)).
		WithArgs(0, "DIAMOND", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertRotationItem)).
		WithArgs(1, "EMERALD", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryUpsertRotationState)).
		WithArgs("2026-08-30").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, adapter.SaveRotation(context.Background(), rotation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_SaveRotationRollsBackOnFailure(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	rotation := shop.Rotation{
		Items:         []shop.PoolEntry{{Material: "DIAMOND", Price: decimal.NewFromInt(250)}},
		SelectionDate: shop.Date("2026-08-30"),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryClearRotationItems)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryInsertRotationItem)).
		WithArgs(0, "DIAMOND", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := adapter.SaveRotation(context.Background(), rotation)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to insert rotation item")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_LoadRotation(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	selectionDate := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(querySelectRotationState)).
		WillReturnRows(sqlmock.NewRows([]string{"selection_date"}).AddRow(selectionDate))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectRotationItems)).
		WillReturnRows(sqlmock.NewRows([]string{"material", "display_name", "price"}).
			AddRow("DIAMOND", "Shiny Diamond", "250"))

	rotation, err := adapter.LoadRotation(context.Background())
	require.NoError(t, err)
	require.Equal(t, shop.Date("2026-08-30"), rotation.SelectionDate)
	require.Len(t, rotation.Items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_LoadRotationNonePersisted(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(querySelectRotationState)).
		WillReturnError(sql.ErrNoRows)

	rotation, err := adapter.LoadRotation(context.Background())
	require.NoError(t, err)
	require.True(t, rotation.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_SaveAndLoadSchedule(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(queryUpsertSchedule)).
		WithArgs(9, int64(300)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectSchedule)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_hour", "check_interval_seconds"}).
			AddRow(9, int64(300)))

	schedule := shop.Schedule{RefreshHour: 9, CheckInterval: 5 * time.Minute}
	require.NoError(t, adapter.SaveSchedule(context.Background(), schedule))

	loaded, ok, err := adapter.LoadSchedule(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, schedule, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStateAdapter_LoadScheduleNoOverride(t *testing.T) {
	adapter, mock, db := newMockStateAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(querySelectSchedule)).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := adapter.LoadSchedule(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
