package economy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClient_GetBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/accounts/buyer-1/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"balance": "123.45"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	balance, err := client.GetBalance(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("123.45")))
}

func TestClient_GetBalanceNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetBalance(context.Background(), "buyer-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
}

func TestClient_Withdraw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/accounts/buyer-1/withdraw", r.URL.Path)

		var body struct {
			Amount decimal.Decimal `json:"amount"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.True(t, body.Amount.Equal(decimal.NewFromInt(250)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(250)))
}

func TestClient_WithdrawRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(250))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 422")
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts/b/balance", r.URL.Path)
		w.Write([]byte(`{"balance": "0"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	_, err := client.GetBalance(context.Background(), "b")
	require.NoError(t, err)
}
