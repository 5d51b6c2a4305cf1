// Package orderbook implements the continuous double-auction order book and
// matching engine: per-security-token price-ordered bid/ask lists, order
// records, a user index, the matching engine, and fee routing.
package orderbook

import (
	"time"

	"github.com/google/uuid"
)

// Side of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Status of an order's lifecycle.
type Status int

const (
	Open Status = iota
	Filled
	Cancelled
)

// MaxOrderAge is the resting-order timeout the matcher and CancelExpired
// enforce.
const MaxOrderAge = 30 * 24 * time.Hour

// PriceScale is the fixed-point scale prices are denominated in: price is
// USDT base units per 10^6 token base units.
const PriceScale = 1_000_000

// Order is a single resting or historical order on a security token's book.
type Order struct {
	ID             uint64
	Maker          uuid.UUID
	SecurityToken  uuid.UUID
	Quantity       int64
	Price          int64
	Side           Side
	Status         Status
	CreatedAt      time.Time
	FilledQuantity int64
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}
