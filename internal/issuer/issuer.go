// Package issuer implements the per-SME entity: whitelist, dividend pool
// accounting, and governance vote tallies. Issuer never moves value
// directly; every transfer goes through the shared Ledger.
package issuer

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/ledger"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// Issuer is a single SME's on-venue entity. Owner is the capability able to
// call the restricted operations (whitelist, record_dividend_distribution,
// set_initial_usdt_balance), modeled as a process-wide account.
type Issuer struct {
	mu sync.RWMutex

	id            uuid.UUID
	companyName   string
	securityToken uuid.UUID
	usdtAsset     uuid.UUID
	treasury      uuid.UUID
	owner         uuid.UUID

	whitelist             map[uuid.UUID]bool
	withdrawnDividends    map[uuid.UUID]int64
	totalDividendsDistrib int64
	governanceVotes       map[uuid.UUID]int64

	ledger *ledger.Ledger
	bus    *events.Bus
	logger *zap.Logger
}

// Params bundles the fields fixed at creation time.
type Params struct {
	ID            uuid.UUID
	CompanyName   string
	SecurityToken uuid.UUID
	USDTAsset     uuid.UUID
	Treasury      uuid.UUID
	Owner         uuid.UUID
}

// NewIssuer constructs an Issuer and auto-whitelists its treasury. Callers
// (normally Registry.DeployIssuer) are expected to have already minted the
// initial supply to treasury.
func NewIssuer(p Params, l *ledger.Ledger, bus *events.Bus, logger *zap.Logger) *Issuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	iss := &Issuer{
		id:                 p.ID,
		companyName:        p.CompanyName,
		securityToken:      p.SecurityToken,
		usdtAsset:          p.USDTAsset,
		treasury:           p.Treasury,
		owner:              p.Owner,
		whitelist:          map[uuid.UUID]bool{p.Treasury: true},
		withdrawnDividends: make(map[uuid.UUID]int64),
		governanceVotes:    make(map[uuid.UUID]int64),
		ledger:             l,
		bus:                bus,
		logger:             logger,
	}
	return iss
}

func (i *Issuer) ID() uuid.UUID            { return i.id }
func (i *Issuer) CompanyName() string      { return i.companyName }
func (i *Issuer) SecurityToken() uuid.UUID { return i.securityToken }
func (i *Issuer) USDTAsset() uuid.UUID     { return i.usdtAsset }
func (i *Issuer) Treasury() uuid.UUID      { return i.treasury }

func (i *Issuer) publish(e events.Event) {
	if i.bus != nil {
		i.bus.Publish(e)
	}
}

func (i *Issuer) requireOwner(caller uuid.UUID) error {
	if caller != i.owner {
		return xerrors.ErrOwnerOnly
	}
	return nil
}

// Whitelist sets account's whitelist membership. Idempotent, restricted to
// the issuer owner.
func (i *Issuer) Whitelist(caller, account uuid.UUID, status bool) error {
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	i.mu.Lock()
	i.whitelist[account] = status
	i.mu.Unlock()

	i.publish(events.ShareholderWhitelisted{Investor: account, Status: status})
	return nil
}

// IsWhitelisted reports whether account may trade/claim/vote for this issuer.
func (i *Issuer) IsWhitelisted(account uuid.UUID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.whitelist[account]
}

// RecordDividendDistribution increments total-dividends-distributed by
// amount without moving funds; entitlement is pull-based via ClaimDividend.
func (i *Issuer) RecordDividendDistribution(caller uuid.UUID, amount int64) error {
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	if amount <= 0 {
		return xerrors.ErrNonPositive
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ledger.BalanceOf(i.usdtAsset, i.treasury) < amount {
		return xerrors.ErrInsufficientPool
	}
	i.totalDividendsDistrib += amount

	i.publish(events.DividendsDistributed{Issuer: i.id, Amount: amount})
	return nil
}

// TotalDividendsDistributed returns the monotone running total declared.
func (i *Issuer) TotalDividendsDistributed() int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.totalDividendsDistrib
}

// WithdrawnDividends returns how much caller has withdrawn so far.
func (i *Issuer) WithdrawnDividends(caller uuid.UUID) int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.withdrawnDividends[caller]
}

// ClaimDividend pays caller the unclaimed portion of their proportional
// entitlement. Because withdrawn[caller] snapshots
// total_distributed*balance/total_supply, a holder who transfers shares
// away between distributions forfeits the untaken portion for the shares
// they no longer hold — this is intentional pull-with-forfeiture
// accounting, not a bug.
func (i *Issuer) ClaimDividend(caller uuid.UUID) (int64, error) {
	if !i.IsWhitelisted(caller) {
		return 0, xerrors.ErrNotWhitelisted
	}

	balance := i.ledger.BalanceOf(i.securityToken, caller)
	if balance <= 0 {
		return 0, xerrors.ErrNoShares
	}
	supply := i.ledger.TotalSupply(i.securityToken)

	i.mu.Lock()
	entitlement := int64(0)
	if supply > 0 {
		entitlement = (i.totalDividendsDistrib * balance) / supply
	}
	already := i.withdrawnDividends[caller]
	if entitlement <= already {
		i.mu.Unlock()
		return 0, xerrors.ErrNothingToClaim
	}
	delta := entitlement - already
	i.withdrawnDividends[caller] = entitlement
	i.mu.Unlock()

	if err := i.ledger.Transfer(i.usdtAsset, i.treasury, caller, delta); err != nil {
		// Roll back the snapshot: the transfer is the only side effect that
		// can fail here (the pool-sufficiency precondition was checked at
		// RecordDividendDistribution time, but balances can move between
		// distribution and claim in adversarial sequences).
		i.mu.Lock()
		i.withdrawnDividends[caller] = already
		i.mu.Unlock()
		return 0, err
	}

	i.publish(events.DividendClaimed{Issuer: i.id, Shareholder: caller, Amount: delta})
	return delta, nil
}

// CastVote requires whitelist membership and sufficient security-token
// balance, and assigns (not adds to) the caller's vote weight.
func (i *Issuer) CastVote(caller uuid.UUID, votes int64) error {
	if !i.IsWhitelisted(caller) {
		return xerrors.ErrNotWhitelisted
	}
	if votes < 0 {
		return xerrors.ErrInvalidAmount
	}
	if i.ledger.BalanceOf(i.securityToken, caller) < votes {
		return xerrors.ErrInsufficientBalance
	}

	i.mu.Lock()
	i.governanceVotes[caller] = votes
	i.mu.Unlock()

	i.publish(events.GovernanceVoteCasted{Issuer: i.id, Voter: caller, Votes: votes})
	return nil
}

// GovernanceVotes returns the currently assigned vote weight for caller.
func (i *Issuer) GovernanceVotes(caller uuid.UUID) int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.governanceVotes[caller]
}

// SetInitialUSDTBalance is a bootstrap hook for hosts where the ledger's
// USDT is externally funded: it requires the treasury's current USDT
// balance to be zero, then sets it without a backing transfer.
func (i *Issuer) SetInitialUSDTBalance(caller uuid.UUID, amount int64) error {
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	if i.ledger.BalanceOf(i.usdtAsset, i.treasury) != 0 {
		return xerrors.ErrAlreadyInitialized
	}
	return i.ledger.SetInitialBalance(i.usdtAsset, i.treasury, amount)
}

// TransferOwnership reassigns the owner capability, guarded by the current
// owner.
func (i *Issuer) TransferOwnership(caller, newOwner uuid.UUID) error {
	if err := i.requireOwner(caller); err != nil {
		return err
	}
	i.mu.Lock()
	i.owner = newOwner
	i.mu.Unlock()
	return nil
}
