package orderbook

import (
	"github.com/RedRedRyan/NairobiBlockExchange/internal/issuer"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// match runs the matching algorithm for incoming order taker against the
// opposite side of tb. Must be called with b.mu held.
func (b *Book) match(tb *tokenBook, taker *Order, iss *issuer.Issuer) {
	opposite := Sell
	if taker.Side == Sell {
		opposite = Buy
	}
	oppBook := tb.bookFor(opposite)

	var emptyLevels []int64
	scan := func(price int64, lvl *priceLevel) bool {
		i := 0
		for i < len(lvl.orders) {
			if taker.Remaining() <= 0 {
				return false
			}
			id := lvl.orders[i]
			resting := b.ordersByID[id]

			if resting == nil || resting.Status != Open {
				lvl.removeAt(i)
				continue
			}

			if b.clock.Now().After(resting.CreatedAt.Add(MaxOrderAge)) {
				resting.Status = Cancelled
				lvl.removeAt(i)
				b.refund(resting)
				b.publish(events.OrderCancelled{OrderID: resting.ID})
				continue
			}

			crossed := false
			if taker.Side == Buy {
				crossed = resting.Price <= taker.Price
			} else {
				crossed = resting.Price >= taker.Price
			}
			if !crossed {
				return false
			}

			if resting.Maker == taker.Maker {
				i++
				continue
			}

			matchQty := min64(taker.Remaining(), resting.Remaining())
			if matchQty <= 0 {
				i++
				continue
			}

			execPrice := resting.Price
			gross := totalCost(matchQty, execPrice)
			fee := (gross * b.tradingFeeBps) / 10000
			sellerNet := gross - fee

			taker.FilledQuantity += matchQty
			resting.FilledQuantity += matchQty
			if taker.FilledQuantity == taker.Quantity {
				taker.Status = Filled
			}
			if resting.FilledQuantity == resting.Quantity {
				resting.Status = Filled
			}

			var buyer, seller *Order
			if taker.Side == Buy {
				buyer, seller = taker, resting
			} else {
				buyer, seller = resting, taker
			}

			if matchQty > 0 {
				_ = b.ledger.Transfer(taker.SecurityToken, b.escrowAccount, buyer.Maker, matchQty)
			}
			if sellerNet > 0 {
				_ = b.ledger.Transfer(iss.USDTAsset(), b.escrowAccount, seller.Maker, sellerNet)
			}
			if fee > 0 {
				_ = b.ledger.Transfer(iss.USDTAsset(), b.escrowAccount, b.feeCollector, fee)
				b.publish(events.FeesCollected{Asset: iss.USDTAsset(), Collector: b.feeCollector, Amount: fee})
			}

			// Price improvement for the aggressor: a buying taker escrowed
			// matchQty at its own limit price, but the trade executes at the
			// resting order's (better-or-equal) price. Refund the spread for
			// this increment immediately — it is not a function of the
			// order's remaining quantity, so the post-loop residual refund
			// cannot catch it on its own.
			if taker.Side == Buy {
				limitCost := totalCost(matchQty, taker.Price)
				if improvement := limitCost - gross; improvement > 0 {
					_ = b.ledger.Transfer(iss.USDTAsset(), b.escrowAccount, taker.Maker, improvement)
				}
			}

			b.publish(events.OrderFilled{
				RestingOrderID: resting.ID,
				RestingMaker:   resting.Maker,
				Taker:          taker.Maker,
				Amount:         matchQty,
				ExecPrice:      execPrice,
			})

			if resting.Status == Filled {
				lvl.removeAt(i)
				continue
			}
			i++
		}
		if lvl.empty() {
			emptyLevels = append(emptyLevels, price)
		}
		return taker.Remaining() > 0
	}

	if opposite == Sell {
		oppBook.Scan(scan)
	} else {
		oppBook.Reverse(scan)
	}
	for _, price := range emptyLevels {
		if lvl, ok := oppBook.Get(price); ok && lvl.empty() {
			oppBook.Delete(price)
		}
	}

	if taker.Status != Open && taker.Remaining() > 0 {
		b.refund(taker)
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
