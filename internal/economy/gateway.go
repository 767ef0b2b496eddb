// Package economy is the narrow contract to the external balance provider.
// The purchase processor only ever sees the Gateway interface; whether a
// real provider is configured is decided by wiring, not by nil checks.
package economy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/shopspring/decimal"
)

// Gateway is the injected balance/withdraw capability.
type Gateway interface {
	GetBalance(ctx context.Context, buyerID string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, buyerID string, amount decimal.Decimal) error
}

// Unconfigured is the Gateway used when no balance provider is wired up.
// Every call fails as gateway-unavailable, so purchases are rejected
// without touching any state.
type Unconfigured struct{}

func (Unconfigured) GetBalance(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, fmt.Errorf("%w: no balance provider configured", shop.ErrGatewayUnavailable)
}

func (Unconfigured) Withdraw(context.Context, string, decimal.Decimal) error {
	return fmt.Errorf("%w: no balance provider configured", shop.ErrGatewayUnavailable)
}

// Bounded wraps a Gateway so no call blocks past the configured timeout.
// Expiry is classified as gateway-unavailable, the same as any other
// transport failure.
type Bounded struct {
	inner   Gateway
	timeout time.Duration
}

func NewBounded(inner Gateway, timeout time.Duration) Bounded {
	return Bounded{inner: inner, timeout: timeout}
}

func (b Bounded) GetBalance(ctx context.Context, buyerID string) (decimal.Decimal, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	balance, err := b.inner.GetBalance(callCtx, buyerID)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return balance, nil
}

func (b Bounded) Withdraw(ctx context.Context, buyerID string, amount decimal.Decimal) error {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.inner.Withdraw(callCtx, buyerID, amount); err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, shop.ErrGatewayUnavailable) || errors.Is(err, shop.ErrInsufficientFunds) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: call timed out: %v", shop.ErrGatewayUnavailable, err)
	}
	return fmt.Errorf("%w: %v", shop.ErrGatewayUnavailable, err)
}
