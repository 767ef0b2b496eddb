// Package purchase validates buy requests against the active rotation and
// the balance gateway, performs the debit, and records the result in the
// ledger.
package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage"
	"github.com/bazaar-lab/daily-bazaar/internal/economy"
	"github.com/google/uuid"
)

// SlotResolver maps a slot to its entry in the active rotation. Satisfied
// by the rotation engine.
type SlotResolver interface {
	ResolveSlot(slot int) (shop.PoolEntry, error)
}

// Granter delivers the purchased item to the buyer. Fulfillment is an
// external effect; a no-op granter is valid wiring.
type Granter interface {
	Grant(ctx context.Context, buyerID string, item shop.PoolEntry) error
}

// NopGranter fulfills nothing. Used when no delivery mechanism is wired.
type NopGranter struct{}

func (NopGranter) Grant(context.Context, string, shop.PoolEntry) error { return nil }

// Request is one buy attempt. Slot is zero-based into the active rotation;
// the HTTP layer converts from the 1-based user-facing slot.
type Request struct {
	BuyerID   string
	BuyerName string
	Slot      int
}

// Service is the purchase processor.
type Service struct {
	rotation  SlotResolver
	gateway   economy.Gateway
	ledger    storage.LedgerStore
	granter   Granter
	originTag string
	nowFn     func() time.Time
}

func NewService(
	rotationEngine SlotResolver,
	gateway economy.Gateway,
	ledger storage.LedgerStore,
	granter Granter,
	originTag string,
) *Service {
	if granter == nil {
		granter = NopGranter{}
	}
	return &Service{
		rotation:  rotationEngine,
		gateway:   gateway,
		ledger:    ledger,
		granter:   granter,
		originTag: originTag,
		nowFn:     time.Now,
	}
}

// Purchase runs the buy flow. Every rejection path (unknown slot, gateway
// unavailable, insufficient funds) leaves balance, ledger, and aggregates
// untouched. On success exactly one event is appended and both aggregates
// are updated in the same ledger transaction.
//
// The debit and the ledger append are logically one transaction from the
// buyer's perspective, but the gateway offers no compensating-transaction
// contract: a ledger failure after a successful debit is logged as a
// reconciliation gap and surfaced as an error, with no automatic rollback.
func (s *Service) Purchase(ctx context.Context, req Request) (*shop.PurchaseEvent, error) {
	item, err := s.rotation.ResolveSlot(req.Slot)
	if err != nil {
		return nil, err
	}

	balance, err := s.gateway.GetBalance(ctx, req.BuyerID)
	if err != nil {
		return nil, err
	}

	if balance.LessThan(item.Price) {
		// Normal, frequent outcome. Not a fault.
		return nil, fmt.Errorf("%w: balance %s, price %s",
			shop.ErrInsufficientFunds, balance, item.Price)
	}

	if err := s.gateway.Withdraw(ctx, req.BuyerID, item.Price); err != nil {
		return nil, err
	}

	// The money is spent from here on. Grant failures and ledger failures
	// no longer roll back the debit.
	if err := s.granter.Grant(ctx, req.BuyerID, item); err != nil {
		slog.Warn("Item grant failed after debit",
			"buyer_id", req.BuyerID,
			"item_key", item.Material,
			"error", err)
	}

	event := &shop.PurchaseEvent{
		ID:          uuid.New(),
		BuyerID:     req.BuyerID,
		BuyerName:   req.BuyerName,
		ItemKey:     item.Material,
		ItemName:    item.Name(),
		Price:       item.Price,
		PurchasedAt: s.nowFn().UTC(),
		OriginTag:   s.originTag,
	}

	if err := s.ledger.Append(ctx, event); err != nil {
		slog.Error("RECONCILIATION GAP: debit succeeded but ledger append failed",
			"event_id", event.ID,
			"buyer_id", event.BuyerID,
			"item_key", event.ItemKey,
			"price", event.Price,
			"error", err)
		return nil, fmt.Errorf("purchase debited but not recorded: %w", err)
	}

	slog.Info("Purchase recorded",
		"event_id", event.ID,
		"buyer_id", event.BuyerID,
		"item_key", event.ItemKey,
		"price", event.Price)
	return event, nil
}
