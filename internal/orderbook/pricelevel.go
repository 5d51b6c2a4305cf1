package orderbook

// priceLevel is a FIFO queue of order ids resting at one price: insertion
// order within a level is preserved, giving time priority within the level.
type priceLevel struct {
	orders []uint64
}

func newPriceLevel() *priceLevel {
	return &priceLevel{orders: make([]uint64, 0, 4)}
}

func (pl *priceLevel) append(id uint64) {
	pl.orders = append(pl.orders, id)
}

// removeAt deletes the order id at index i, preserving the FIFO order of
// the rest.
func (pl *priceLevel) removeAt(i int) {
	pl.orders = append(pl.orders[:i], pl.orders[i+1:]...)
}

func (pl *priceLevel) empty() bool {
	return len(pl.orders) == 0
}
