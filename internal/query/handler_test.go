package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httperr "github.com/bazaar-lab/daily-bazaar/internal/core/errors"
	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newQueryRouter(ledger *fakeLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewService(ledger).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestPersonalHistoryHandler(t *testing.T) {
	ledger := &fakeLedger{events: []shop.PurchaseEvent{
		event("b1", 250),
		event("b1", 50),
	}}
	router := newQueryRouter(ledger)

	w := get(router, "/v1/stats/buyers/b1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		BuyerID       string          `json:"buyer_id"`
		PurchaseCount int             `json:"purchase_count"`
		TotalSpent    decimal.Decimal `json:"total_spent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "b1", resp.BuyerID)
	require.Equal(t, 2, resp.PurchaseCount)
	require.True(t, resp.TotalSpent.Equal(decimal.NewFromInt(300)))
}

func TestTopSpendersHandler(t *testing.T) {
	ledger := &fakeLedger{spenders: []shop.BuyerStats{
		{
			BuyerID:        "b1",
			BuyerName:      "Alice",
			PurchaseCount:  4,
			TotalSpent:     decimal.NewFromInt(900),
			LastPurchaseAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}}
	router := newQueryRouter(ledger)

	w := get(router, "/v1/stats/top-spenders?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5, ledger.gotLimit)

	var resp struct {
		TopSpenders []shop.BuyerStats `json:"top_spenders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.TopSpenders, 1)
	require.Equal(t, "Alice", resp.TopSpenders[0].BuyerName)
}

func TestTopItemsHandler_DefaultLimit(t *testing.T) {
	ledger := &fakeLedger{items: []shop.ItemStats{
		{ItemKey: "DIAMOND", ItemName: "Diamond", TimesPurchased: 7, TotalRevenue: decimal.NewFromInt(1750)},
	}}
	router := newQueryRouter(ledger)

	w := get(router, "/v1/stats/top-items")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 10, ledger.gotLimit)
}

func TestStatsHandlers_BadLimit(t *testing.T) {
	for _, path := range []string{
		"/v1/stats/top-spenders?limit=abc",
		"/v1/stats/top-spenders?limit=0",
		"/v1/stats/top-items?limit=-1",
	} {
		w := get(newQueryRouter(&fakeLedger{}), path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)

		var resp httperr.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, httperr.HttpInvalidRequestError, resp.ErrorType)
	}
}

func TestStatsHandlers_LedgerError(t *testing.T) {
	ledger := &fakeLedger{spendersErr: errDatabaseDown}
	router := newQueryRouter(ledger)

	w := get(router, "/v1/stats/top-spenders")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
