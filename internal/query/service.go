// Package query serves read-only projections over the purchase ledger:
// personal history, top spenders, top items. No operation here mutates
// state.
package query

import (
	"context"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Service implements the stats query layer.
type Service struct {
	ledger storage.LedgerStore
}

func NewService(ledger storage.LedgerStore) *Service {
	return &Service{ledger: ledger}
}

// History is a buyer's personal purchase history plus the summary line the
// listing carries.
type History struct {
	BuyerID       string               `json:"buyer_id"`
	Purchases     []shop.PurchaseEvent `json:"purchases"`
	PurchaseCount int                  `json:"purchase_count"`
	TotalSpent    decimal.Decimal      `json:"total_spent"`
}

// PersonalHistory returns a buyer's events newest-first with totals
// computed over the listed events.
func (s *Service) PersonalHistory(ctx context.Context, buyerID string) (History, error) {
	events, err := s.ledger.BuyerHistory(ctx, buyerID)
	if err != nil {
		return History{}, err
	}

	total := decimal.Zero
	for _, event := range events {
		total = total.Add(event.Price)
	}
	return History{
		BuyerID:       buyerID,
		Purchases:     events,
		PurchaseCount: len(events),
		TotalSpent:    total,
	}, nil
}

// TopSpenders returns up to limit buyer aggregates with spending, highest
// first. A non-positive limit falls back to the default of 10.
func (s *Service) TopSpenders(ctx context.Context, limit int) ([]shop.BuyerStats, error) {
	return s.ledger.TopSpenders(ctx, clampLimit(limit))
}

// TopItems returns up to limit item aggregates by purchase count.
func (s *Service) TopItems(ctx context.Context, limit int) ([]shop.ItemStats, error) {
	return s.ledger.TopItems(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
