package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	balance    decimal.Decimal
	balanceErr error
	withErr    error
	block      time.Duration
}

func (s stubGateway) GetBalance(ctx context.Context, _ string) (decimal.Decimal, error) {
	if s.block > 0 {
		select {
		case <-time.After(s.block):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	if s.balanceErr != nil {
		return decimal.Zero, s.balanceErr
	}
	return s.balance, nil
}

func (s stubGateway) Withdraw(ctx context.Context, _ string, _ decimal.Decimal) error {
	if s.block > 0 {
		select {
		case <-time.After(s.block):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.withErr
}

func TestUnconfigured_AlwaysUnavailable(t *testing.T) {
	gateway := Unconfigured{}

	_, err := gateway.GetBalance(context.Background(), "buyer-1")
	require.ErrorIs(t, err, shop.ErrGatewayUnavailable)

	err = gateway.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(10))
	require.ErrorIs(t, err, shop.ErrGatewayUnavailable)
}

func TestBounded_PassesThroughSuccess(t *testing.T) {
	gateway := NewBounded(stubGateway{balance: decimal.NewFromInt(42)}, time.Second)

	balance, err := gateway.GetBalance(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(42)))

	require.NoError(t, gateway.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(1)))
}

func TestBounded_ClassifiesTimeoutAsUnavailable(t *testing.T) {
	gateway := NewBounded(stubGateway{block: time.Second}, 20*time.Millisecond)

	_, err := gateway.GetBalance(context.Background(), "buyer-1")
	require.ErrorIs(t, err, shop.ErrGatewayUnavailable)

	err = gateway.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(1))
	require.ErrorIs(t, err, shop.ErrGatewayUnavailable)
}

func TestBounded_ClassifiesTransportErrorAsUnavailable(t *testing.T) {
	gateway := NewBounded(stubGateway{balanceErr: errors.New("connection refused")}, time.Second)

	_, err := gateway.GetBalance(context.Background(), "buyer-1")
	require.ErrorIs(t, err, shop.ErrGatewayUnavailable)
}

func TestBounded_PreservesDomainErrors(t *testing.T) {
	inner := stubGateway{withErr: shop.ErrInsufficientFunds}
	gateway := NewBounded(inner, time.Second)

	err := gateway.Withdraw(context.Background(), "buyer-1", decimal.NewFromInt(1))
	require.ErrorIs(t, err, shop.ErrInsufficientFunds)
	require.NotErrorIs(t, err, shop.ErrGatewayUnavailable)
}
