// Package pool manages the full catalog of purchasable entries the daily
// rotation draws from.
package pool

import (
	"context"
	"fmt"

	"github.com/bazaar-lab/daily-bazaar/internal/core/shop"
	"github.com/bazaar-lab/daily-bazaar/internal/core/storage"
	"github.com/shopspring/decimal"
)

// Service validates pool mutations at the boundary and delegates durable
// storage to the state store. Entries are parsed into typed records before
// anything is persisted; malformed input never reaches storage.
type Service struct {
	store   storage.StateStore
	catalog *shop.Catalog
}

func NewService(store storage.StateStore, catalog *shop.Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// List returns the pool in configured order, unfiltered.
func (s *Service) List(ctx context.Context) ([]shop.PoolEntry, error) {
	return s.store.ListPool(ctx)
}

// Add validates and appends one entry. The material must resolve against
// the catalog and the price must parse as a non-negative number; either
// failure rejects the entry before any mutation.
func (s *Service) Add(ctx context.Context, material, displayName, price string) (shop.PoolEntry, error) {
	canonical, err := s.catalog.Resolve(material)
	if err != nil {
		return shop.PoolEntry{}, err
	}

	parsedPrice, err := decimal.NewFromString(price)
	if err != nil {
		return shop.PoolEntry{}, fmt.Errorf("%w: %q", shop.ErrInvalidPrice, price)
	}
	if parsedPrice.IsNegative() {
		return shop.PoolEntry{}, fmt.Errorf("%w: %s", shop.ErrInvalidPrice, parsedPrice)
	}

	entry := shop.PoolEntry{
		Material:    canonical,
		DisplayName: displayName,
		Price:       parsedPrice,
	}
	if err := s.store.AppendPoolEntry(ctx, entry); err != nil {
		return shop.PoolEntry{}, err
	}
	return entry, nil
}

// Remove deletes the entry at a 1-based index, matching the user-facing
// listing, and returns it.
func (s *Service) Remove(ctx context.Context, index int) (shop.PoolEntry, error) {
	if index < 1 {
		return shop.PoolEntry{}, fmt.Errorf("%w: %d", shop.ErrIndexOutOfRange, index)
	}
	return s.store.RemovePoolEntry(ctx, index-1)
}
