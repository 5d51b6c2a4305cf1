// Package venue wires Ledger, Issuer/Registry, OrderBook, and Incentive into
// a single facade and provides the system-wide reentrancy guard: while one
// value-moving call is executing, no nested call into
// OrderBook or Incentive may re-enter from a callee.
package venue

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/incentive"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/issuer"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/ledger"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/orderbook"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// Venue is the top-level entry point assembling every module.
type Venue struct {
	Owner uuid.UUID
	USDT  uuid.UUID

	Ledger    *ledger.Ledger
	Registry  *issuer.Registry
	Book      *orderbook.Book
	Incentive *incentive.Module
	Bus       *events.Bus

	guard chan struct{} // 1-buffered: acts as a non-reentrant mutex
}

// New constructs a fully wired Venue. owner is the capability account for
// every admin-gated operation (DeployIssuer, fee config, program lifecycle).
// orderEscrow and incentiveEscrow are distinct logical accounts so funds
// never comingle between the two subsystems.
func New(owner uuid.UUID, logger *zap.Logger) *Venue {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := events.NewBus()
	ldg := ledger.New(bus, logger)
	registry := issuer.New(owner, ldg, bus, logger)

	orderEscrow := uuid.New()
	incentiveEscrow := uuid.New()
	book := orderbook.New(registry, ldg, bus, logger, orderEscrow, owner)
	inc := incentive.New(owner, registry, book, ldg, bus, logger, incentiveEscrow)

	v := &Venue{
		Owner:     owner,
		USDT:      uuid.New(),
		Ledger:    ldg,
		Registry:  registry,
		Book:      book,
		Incentive: inc,
		Bus:       bus,
		guard:     make(chan struct{}, 1),
	}
	v.guard <- struct{}{}
	return v
}

// enter/leave bracket every value-moving facade call in a single non-
// reentrant critical section spanning the whole venue, not one subsystem.
func (v *Venue) enter() { <-v.guard }
func (v *Venue) leave() { v.guard <- struct{}{} }

// SubmitBuy, SubmitSell, Cancel, CancelExpired, ClaimDividend,
// LockCollateral, ReleaseCollateral, and ClaimRewards are the value-moving operations the
// guard serializes at the venue level, on top of each module's own
// mutex-protected critical sections.

func (v *Venue) SubmitBuy(caller, token uuid.UUID, amount, price int64) (*orderbook.Order, error) {
	v.enter()
	defer v.leave()
	return v.Book.SubmitBuy(caller, token, amount, price)
}

func (v *Venue) SubmitSell(caller, token uuid.UUID, amount, price int64) (*orderbook.Order, error) {
	v.enter()
	defer v.leave()
	return v.Book.SubmitSell(caller, token, amount, price)
}

func (v *Venue) Cancel(caller uuid.UUID, orderID uint64) error {
	v.enter()
	defer v.leave()
	return v.Book.Cancel(caller, orderID)
}

func (v *Venue) CancelExpired(orderID uint64) error {
	v.enter()
	defer v.leave()
	return v.Book.CancelExpired(orderID)
}

func (v *Venue) ClaimDividend(issuerHandle *issuer.Issuer, caller uuid.UUID) (int64, error) {
	v.enter()
	defer v.leave()
	return issuerHandle.ClaimDividend(caller)
}

func (v *Venue) LockCollateral(caller, token uuid.UUID, amount int64) error {
	v.enter()
	defer v.leave()
	return v.Incentive.LockCollateral(caller, token, amount)
}

func (v *Venue) ReleaseCollateral(caller, token uuid.UUID) error {
	v.enter()
	defer v.leave()
	return v.Incentive.ReleaseCollateral(caller, token)
}

func (v *Venue) ClaimRewards(caller, token uuid.UUID) (int64, error) {
	v.enter()
	defer v.leave()
	return v.Incentive.ClaimRewards(caller, token)
}

// DeployIssuer is an admin-only, non-reentrant-guarded convenience wrapper
// around Registry.DeployIssuer using the venue's shared USDT asset.
func (v *Venue) DeployIssuer(caller uuid.UUID, companyName, symbol string, initialSupply int64, treasury uuid.UUID) (*issuer.Issuer, error) {
	v.enter()
	defer v.leave()
	return v.Registry.DeployIssuer(caller, companyName, symbol, initialSupply, v.USDT, treasury)
}

// FundUSDT mints initial USDT into an account for bootstrap/test setups
// where the unit of account is externally funded. Restricted to the venue
// owner.
func (v *Venue) FundUSDT(caller, to uuid.UUID, amount int64) error {
	if caller != v.Owner {
		return xerrors.ErrOwnerOnly
	}
	v.enter()
	defer v.leave()
	return v.Ledger.Mint(v.USDT, to, amount)
}
