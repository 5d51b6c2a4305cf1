// Package ledger tracks balances of (asset, account) pairs and the total
// supply per asset. It is the only mutator of value in the venue: every
// other module moves value exclusively through Ledger.Transfer/Mint.
package ledger

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

type accountKey struct {
	asset   uuid.UUID
	account uuid.UUID
}

// Ledger is the sole source of truth for balances and total supply. All
// methods are safe for concurrent use; each call is atomic.
type Ledger struct {
	mu          sync.Mutex
	balances    map[accountKey]int64
	totalSupply map[uuid.UUID]int64

	bus    *events.Bus
	logger *zap.Logger
}

// New constructs an empty ledger. bus may be nil to disable event emission;
// logger may be nil to disable logging (both default to no-ops).
func New(bus *events.Bus, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		balances:    make(map[accountKey]int64),
		totalSupply: make(map[uuid.UUID]int64),
		bus:         bus,
		logger:      logger,
	}
}

// maxAmount is the documented protocol ceiling for any single value: even
// though int64 arithmetic itself cannot exceed this, the guard makes the
// boundary an explicit, checked limit rather than an incidental one.
const maxAmount = math.MaxInt64

func validAmount(amount int64) error {
	if amount <= 0 {
		return xerrors.ErrInvalidAmount
	}
	if amount >= maxAmount {
		return xerrors.ErrAmountTooLarge
	}
	return nil
}

// BalanceOf returns the current balance of account for asset. Unknown pairs
// are zero, not an error.
func (l *Ledger) BalanceOf(asset, account uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[accountKey{asset, account}]
}

// TotalSupply returns the total minted supply of asset.
func (l *Ledger) TotalSupply(asset uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSupply[asset]
}

// Mint increases to's balance and asset's total supply. Restricted to
// callers the owning module trusts (Registry at issuer deployment, bootstrap
// flows) — Ledger itself does not gate on identity, callers do.
func (l *Ledger) Mint(asset, to uuid.UUID, amount int64) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	l.balances[accountKey{asset, to}] += amount
	l.totalSupply[asset] += amount
	l.mu.Unlock()

	l.logger.Debug("ledger mint", zap.String("asset", asset.String()), zap.String("to", to.String()), zap.Int64("amount", amount))
	return nil
}

// Transfer moves amount of asset from 'from' to 'to'. It is all-or-nothing:
// on InsufficientBalance or InvalidAmount no state changes and no event is
// emitted. Conservation holds after every successful call.
func (l *Ledger) Transfer(asset, from, to uuid.UUID, amount int64) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	l.mu.Lock()
	fromKey := accountKey{asset, from}
	if l.balances[fromKey] < amount {
		l.mu.Unlock()
		return xerrors.ErrInsufficientBalance
	}
	l.balances[fromKey] -= amount
	l.balances[accountKey{asset, to}] += amount
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Publish(events.TokensTransferred{Asset: asset, From: from, To: to, Amount: amount})
	}
	return nil
}

// SetInitialBalance assigns a balance to an account without a peer transfer,
// for bootstrap flows where the ledger's unit of account is externally
// funded (e.g. Issuer.SetInitialUSDTBalance). Total supply is adjusted by
// the same delta so the conservation invariant (sum of balances == total
// supply) keeps holding; it is the caller's responsibility to gate
// authorization and the zero-balance precondition appropriately.
func (l *Ledger) SetInitialBalance(asset, account uuid.UUID, amount int64) error {
	if amount < 0 {
		return xerrors.ErrInvalidAmount
	}
	l.mu.Lock()
	key := accountKey{asset, account}
	delta := amount - l.balances[key]
	l.balances[key] = amount
	l.totalSupply[asset] += delta
	l.mu.Unlock()
	return nil
}
