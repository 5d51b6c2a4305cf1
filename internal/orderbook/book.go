package orderbook

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/issuer"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/ledger"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// tokenBook is one security token's bid/ask state: two price-ordered
// sequences implemented as a btree.Map of price -> FIFO queue, rather than
// a flat scanned array.
type tokenBook struct {
	bids *btree.Map[int64, *priceLevel] // iterate descending (Reverse) for best bid first
	asks *btree.Map[int64, *priceLevel] // iterate ascending (Scan) for best ask first
}

func newTokenBook() *tokenBook {
	return &tokenBook{
		bids: btree.NewMap[int64, *priceLevel](32),
		asks: btree.NewMap[int64, *priceLevel](32),
	}
}

func (tb *tokenBook) bookFor(side Side) *btree.Map[int64, *priceLevel] {
	if side == Buy {
		return tb.bids
	}
	return tb.asks
}

// Book is the venue-wide order book and matching engine: per security
// token, two price-ordered sequences, the order record table, the user
// index, and fee routing. A single mutex gives each call its own
// serializable step.
type Book struct {
	mu sync.Mutex

	registry *issuer.Registry
	ledger   *ledger.Ledger
	bus      *events.Bus
	clock    Clock
	logger   *zap.Logger

	escrowAccount uuid.UUID

	tradingFeeBps int64
	feeCollector  uuid.UUID

	nextOrderID uint64

	tokens     map[uuid.UUID]*tokenBook
	ordersByID map[uint64]*Order
	userOrders map[uuid.UUID][]uint64
}

// New constructs an empty Book. escrowAccount is the venue-wide custodial
// account assets pass through between submission and fill/cancel/refund.
func New(registry *issuer.Registry, l *ledger.Ledger, bus *events.Bus, logger *zap.Logger, escrowAccount, feeCollector uuid.UUID) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		registry:      registry,
		ledger:        l,
		bus:           bus,
		clock:         SystemClock,
		logger:        logger,
		escrowAccount: escrowAccount,
		feeCollector:  feeCollector,
		tokens:        make(map[uuid.UUID]*tokenBook),
		ordersByID:    make(map[uint64]*Order),
		userOrders:    make(map[uuid.UUID][]uint64),
	}
}

// SetClock overrides the time source, for tests exercising MaxOrderAge.
func (b *Book) SetClock(c Clock) { b.clock = c }

func (b *Book) tokenBookFor(token uuid.UUID) *tokenBook {
	tb, ok := b.tokens[token]
	if !ok {
		tb = newTokenBook()
		b.tokens[token] = tb
	}
	return tb
}

func (b *Book) publish(e events.Event) {
	if b.bus != nil {
		b.bus.Publish(e)
	}
}

// --- Admin ---

// SetTradingFeeBps sets the fee cut taken from the seller's gross proceeds
// on every fill. Capped at 100 bps (1%).
func (b *Book) SetTradingFeeBps(bps int64) error {
	if bps < 0 || bps > 100 {
		return xerrors.ErrFeeTooHigh
	}
	b.mu.Lock()
	b.tradingFeeBps = bps
	b.mu.Unlock()
	return nil
}

// SetFeeCollector sets the account fees are routed to.
func (b *Book) SetFeeCollector(collector uuid.UUID) error {
	if collector == uuid.Nil {
		return xerrors.ErrInvalidAmount
	}
	b.mu.Lock()
	b.feeCollector = collector
	b.mu.Unlock()
	return nil
}

// --- Submission ---

func totalCost(amount, price int64) int64 {
	return (amount * price) / PriceScale
}

// SubmitBuy validates, escrows USDT, records the order, inserts it into the
// bids, and runs the matcher.
func (b *Book) SubmitBuy(caller, securityToken uuid.UUID, amount, price int64) (*Order, error) {
	return b.submit(caller, securityToken, amount, price, Buy)
}

// SubmitSell validates, escrows the security token, records the order,
// inserts it into the asks, and runs the matcher.
func (b *Book) SubmitSell(caller, securityToken uuid.UUID, amount, price int64) (*Order, error) {
	return b.submit(caller, securityToken, amount, price, Sell)
}

func (b *Book) submit(caller, securityToken uuid.UUID, amount, price int64, side Side) (*Order, error) {
	if amount <= 0 || price <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}

	iss, ok := b.registry.LookupBySecurityToken(securityToken)
	if !ok {
		return nil, xerrors.ErrUnknownToken
	}
	if !iss.IsWhitelisted(caller) {
		return nil, xerrors.ErrNotWhitelisted
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var escrowAsset uuid.UUID
	var escrowAmount int64
	if side == Buy {
		escrowAsset = iss.USDTAsset()
		escrowAmount = totalCost(amount, price)
	} else {
		escrowAsset = securityToken
		escrowAmount = amount
	}
	if escrowAmount > 0 {
		if err := b.ledger.Transfer(escrowAsset, caller, b.escrowAccount, escrowAmount); err != nil {
			return nil, err
		}
	}

	b.nextOrderID++
	order := &Order{
		ID:            b.nextOrderID,
		Maker:         caller,
		SecurityToken: securityToken,
		Quantity:      amount,
		Price:         price,
		Side:          side,
		Status:        Open,
		CreatedAt:     b.clock.Now(),
	}
	b.ordersByID[order.ID] = order
	b.userOrders[caller] = append(b.userOrders[caller], order.ID)

	tb := b.tokenBookFor(securityToken)
	b.insert(tb, order)

	b.publish(events.OrderCreated{
		OrderID: order.ID, Maker: caller, SecurityToken: securityToken,
		Amount: amount, Price: price, Side: side.String(),
	})

	b.match(tb, order, iss)

	return order, nil
}

// insert appends order to the FIFO queue at its price on its side, creating
// the level if needed: existing same-price entries retain priority by
// virtue of already being ahead in the queue.
func (b *Book) insert(tb *tokenBook, order *Order) {
	book := tb.bookFor(order.Side)
	lvl, ok := book.Get(order.Price)
	if !ok {
		lvl = newPriceLevel()
		book.Set(order.Price, lvl)
	}
	lvl.append(order.ID)
}

// --- Cancellation ---

// Cancel marks an OPEN order CANCELLED and refunds its unfilled remainder
// to the maker.
func (b *Book) Cancel(caller uuid.UUID, orderID uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.ordersByID[orderID]
	if !ok {
		return xerrors.ErrUnknownOrder
	}
	if order.Maker != caller {
		return xerrors.ErrNotOwner
	}
	if order.Status != Open {
		return xerrors.ErrNotOpen
	}
	return b.cancelLocked(order)
}

// CancelExpired lets any caller reap a stale OPEN order once it has outlived
// MaxOrderAge.
func (b *Book) CancelExpired(orderID uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.ordersByID[orderID]
	if !ok {
		return xerrors.ErrUnknownOrder
	}
	if order.Status != Open {
		return xerrors.ErrNotOpen
	}
	if !b.clock.Now().After(order.CreatedAt.Add(MaxOrderAge)) {
		return xerrors.ErrNotExpired
	}
	return b.cancelLocked(order)
}

// cancelLocked performs the cancel+refund under b.mu and removes the order
// from its resting price level, if still resting there.
func (b *Book) cancelLocked(order *Order) error {
	order.Status = Cancelled
	b.removeFromLevel(order)
	b.refund(order)
	b.publish(events.OrderCancelled{OrderID: order.ID})
	return nil
}

// refund pays the unfilled remainder of a BUY (USDT) or SELL (security
// token) back to the maker from escrow.
func (b *Book) refund(order *Order) {
	remaining := order.Remaining()
	if remaining <= 0 {
		return
	}
	var asset uuid.UUID
	var amount int64
	if order.Side == Buy {
		iss, ok := b.registry.LookupBySecurityToken(order.SecurityToken)
		if !ok {
			return
		}
		asset = iss.USDTAsset()
		amount = totalCost(remaining, order.Price)
	} else {
		asset = order.SecurityToken
		amount = remaining
	}
	if amount <= 0 {
		return
	}
	_ = b.ledger.Transfer(asset, b.escrowAccount, order.Maker, amount)
}

// removeFromLevel deletes order's id from its resting price level, if
// present (a fully filled order is already removed by the matcher).
func (b *Book) removeFromLevel(order *Order) {
	tb, ok := b.tokens[order.SecurityToken]
	if !ok {
		return
	}
	book := tb.bookFor(order.Side)
	lvl, ok := book.Get(order.Price)
	if !ok {
		return
	}
	for i, id := range lvl.orders {
		if id == order.ID {
			lvl.removeAt(i)
			break
		}
	}
	if lvl.empty() {
		book.Delete(order.Price)
	}
}
