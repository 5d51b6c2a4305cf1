package orderbook

import (
	"github.com/google/uuid"
)

// ActiveBuyOrders returns every OPEN order on the bid side of token, best
// price first.
func (b *Book) ActiveBuyOrders(token uuid.UUID) []*Order {
	return b.activeOrders(token, Buy)
}

// ActiveSellOrders returns every OPEN order on the ask side of token, best
// price first.
func (b *Book) ActiveSellOrders(token uuid.UUID) []*Order {
	return b.activeOrders(token, Sell)
}

func (b *Book) activeOrders(token uuid.UUID, side Side) []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.tokens[token]
	if !ok {
		return nil
	}
	var out []*Order
	collect := func(_ int64, lvl *priceLevel) bool {
		for _, id := range lvl.orders {
			if o := b.ordersByID[id]; o != nil && o.Status == Open {
				out = append(out, o)
			}
		}
		return true
	}
	if side == Buy {
		tb.bids.Reverse(collect)
	} else {
		tb.asks.Scan(collect)
	}
	return out
}

// UserActiveOrders returns every OPEN order belonging to maker, across all
// security tokens.
func (b *Book) UserActiveOrders(maker uuid.UUID) []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []*Order
	for _, id := range b.userOrders[maker] {
		if o := b.ordersByID[id]; o != nil && o.Status == Open {
			out = append(out, o)
		}
	}
	return out
}

// HasActiveOrder reports whether maker has an OPEN order at exactly price
// on the given side of token. Used by the incentive module's spread
// obligation predicate.
func (b *Book) HasActiveOrder(maker, token uuid.UUID, price int64, side Side) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.tokens[token]
	if !ok {
		return false
	}
	lvl, ok := tb.bookFor(side).Get(price)
	if !ok {
		return false
	}
	for _, id := range lvl.orders {
		if o := b.ordersByID[id]; o != nil && o.Status == Open && o.Maker == maker {
			return true
		}
	}
	return false
}

// BestBid returns the highest OPEN bid price for token and the remaining
// quantity of the order holding that price (not the level's total depth).
// Returns (0, 0) if there is no OPEN bid.
func (b *Book) BestBid(token uuid.UUID) (price, available int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.tokens[token]
	if !ok {
		return 0, 0
	}
	var found bool
	tb.bids.Reverse(func(p int64, lvl *priceLevel) bool {
		for _, id := range lvl.orders {
			if o := b.ordersByID[id]; o != nil && o.Status == Open {
				price, available = p, o.Remaining()
				found = true
				return false
			}
		}
		return true
	})
	if !found {
		return 0, 0
	}
	return price, available
}

// BestAsk returns the lowest OPEN ask price for token and the remaining
// quantity of the order holding that price. Returns (0, 0) if there is no
// OPEN ask.
func (b *Book) BestAsk(token uuid.UUID) (price, available int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.tokens[token]
	if !ok {
		return 0, 0
	}
	var found bool
	tb.asks.Scan(func(p int64, lvl *priceLevel) bool {
		for _, id := range lvl.orders {
			if o := b.ordersByID[id]; o != nil && o.Status == Open {
				price, available = p, o.Remaining()
				found = true
				return false
			}
		}
		return true
	})
	if !found {
		return 0, 0
	}
	return price, available
}

// DepthLevel is one row of a Depth snapshot.
type DepthLevel struct {
	Price     int64
	Available int64
}

// Depth returns up to n price levels on each side, best price first — a
// read-only supplement to BestBid/BestAsk for the admin/ops surface. It
// mutates nothing.
func (b *Book) Depth(token uuid.UUID, n int) (bids, asks []DepthLevel) {
	if n <= 0 {
		return nil, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	tb, ok := b.tokens[token]
	if !ok {
		return nil, nil
	}
	collect := func(p int64, lvl *priceLevel) int64 {
		var total int64
		for _, id := range lvl.orders {
			if o := b.ordersByID[id]; o != nil && o.Status == Open {
				total += o.Remaining()
			}
		}
		return total
	}
	tb.bids.Reverse(func(p int64, lvl *priceLevel) bool {
		if total := collect(p, lvl); total > 0 {
			bids = append(bids, DepthLevel{Price: p, Available: total})
		}
		return len(bids) < n
	})
	tb.asks.Scan(func(p int64, lvl *priceLevel) bool {
		if total := collect(p, lvl); total > 0 {
			asks = append(asks, DepthLevel{Price: p, Available: total})
		}
		return len(asks) < n
	})
	return bids, asks
}

// OrderByID returns a resting or historical order by id.
func (b *Book) OrderByID(id uint64) (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.ordersByID[id]
	return o, ok
}
