// Package shop holds the domain model of the rotating shop: the configured
// item pool, the dated daily rotation drawn from it, and the purchase ledger
// records derived from successful buys.
package shop

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Typed failures surfaced to callers. Validation errors are rejected before
// any mutation; precondition failures are normal outcomes, not faults.
var (
	ErrInvalidItemKind    = errors.New("unknown material kind")
	ErrInvalidPrice       = errors.New("price must be a non-negative number")
	ErrIndexOutOfRange    = errors.New("pool index out of range")
	ErrUnknownSlot        = errors.New("no item in that rotation slot")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrGatewayUnavailable = errors.New("balance gateway unavailable")
)

// PoolEntry is one purchasable entry in the configured pool.
// Entries have no stable key; identity is the position in the ordered pool.
type PoolEntry struct {
	Material    string          `json:"material"`
	DisplayName string          `json:"display_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// Name returns the display name, falling back to the material identifier.
func (e PoolEntry) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Material
}

// Date is a calendar date formatted 2006-01-02 in the scheduler's local
// timezone. The zero value means "never rotated".
type Date string

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Rotation is the currently active, dated subset of the pool.
// Items is a sample without replacement drawn at SelectionDate; slots index
// into it positionally.
type Rotation struct {
	Items         []PoolEntry `json:"items"`
	SelectionDate Date        `json:"selection_date"`
}

// IsZero reports whether no rotation has ever been persisted.
func (r Rotation) IsZero() bool {
	return r.SelectionDate == "" && len(r.Items) == 0
}

// Schedule is the rotation timing configuration. It is plain configuration,
// not an entity: hot-swappable at runtime and persisted so restarts keep
// admin overrides.
type Schedule struct {
	RefreshHour   int
	CheckInterval time.Duration
}

// PurchaseEvent is the immutable, append-only record of one successful
// purchase. Never mutated or deleted once written.
type PurchaseEvent struct {
	ID          uuid.UUID       `json:"id"`
	BuyerID     string          `json:"buyer_id"`
	BuyerName   string          `json:"buyer_name"`
	ItemKey     string          `json:"item_key"`
	ItemName    string          `json:"item_name"`
	Price       decimal.Decimal `json:"price"`
	PurchasedAt time.Time       `json:"purchased_at"`
	OriginTag   string          `json:"origin_tag,omitempty"`
}

// BuyerStats is the per-buyer aggregate row, upserted on every purchase.
// PurchaseCount and TotalSpent always equal the count/sum of that buyer's
// events.
type BuyerStats struct {
	BuyerID         string          `json:"buyer_id"`
	BuyerName       string          `json:"buyer_name"`
	PurchaseCount   int64           `json:"purchase_count"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	FirstPurchaseAt time.Time       `json:"first_purchase_at"`
	LastPurchaseAt  time.Time       `json:"last_purchase_at"`
}

// ItemStats is the per-item aggregate row, keyed by material.
type ItemStats struct {
	ItemKey         string          `json:"item_key"`
	ItemName        string          `json:"item_name"`
	TimesPurchased  int64           `json:"times_purchased"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	LastPurchasedAt time.Time       `json:"last_purchased_at"`
}
