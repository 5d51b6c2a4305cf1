// Package incentive implements the market-maker incentive module: a
// provider registry, collateral escrow, a read-only spread-obligation
// predicate queried against the OrderBook, and per-epoch reward payouts.
// Incentive never mutates the OrderBook; it only reads best bid/ask and
// order presence from it.
package incentive

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/issuer"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/ledger"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/orderbook"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

// minClaimInterval gates ClaimRewards to one payout per provider per token
// per day, via a last_claim_at minimum-interval check rather than letting
// claims repeat unbounded — see DESIGN.md for the rationale.
const minClaimInterval = 24 * time.Hour

// Provider is a registered market maker.
type Provider struct {
	Address       uuid.UUID
	RegisteredAt  time.Time
	Active        bool
	Cumulative    int64
	CurrentLocked int64
}

// Program is a per-security-token incentive program.
type Program struct {
	SecurityToken uuid.UUID
	MaxSpreadBps  int64
	MinOrderSize  int64
	MinLockup     int64
	DailyRateBps  int64
	EndTime       time.Time
	Active        bool
}

// Module is the incentive module's entire state.
type Module struct {
	mu sync.Mutex

	owner uuid.UUID

	registry  *issuer.Registry
	orderBook *orderbook.Book
	ledger    *ledger.Ledger
	bus       *events.Bus
	clock     orderbook.Clock
	logger    *zap.Logger

	escrowAccount uuid.UUID

	providers map[uuid.UUID]*Provider
	programs  map[uuid.UUID]*Program

	locked       map[uuid.UUID]map[uuid.UUID]int64     // token -> provider -> locked USDT
	totalRewards map[uuid.UUID]int64                   // token -> cumulative rewards paid
	lastClaim    map[uuid.UUID]map[uuid.UUID]time.Time
}

// New constructs an empty incentive Module gated by owner.
func New(owner uuid.UUID, registry *issuer.Registry, ob *orderbook.Book, l *ledger.Ledger, bus *events.Bus, logger *zap.Logger, escrowAccount uuid.UUID) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{
		owner:         owner,
		registry:      registry,
		orderBook:     ob,
		ledger:        l,
		bus:           bus,
		clock:         orderbook.SystemClock,
		logger:        logger,
		escrowAccount: escrowAccount,
		providers:     make(map[uuid.UUID]*Provider),
		programs:      make(map[uuid.UUID]*Program),
		locked:        make(map[uuid.UUID]map[uuid.UUID]int64),
		totalRewards:  make(map[uuid.UUID]int64),
		lastClaim:     make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// SetClock overrides the time source, for tests.
func (m *Module) SetClock(c orderbook.Clock) { m.clock = c }

func (m *Module) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

// RegisterProvider enrolls caller as a liquidity provider.
func (m *Module) RegisterProvider(caller uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.providers[caller]; exists {
		return xerrors.ErrAlreadyRegistered
	}
	m.providers[caller] = &Provider{Address: caller, RegisteredAt: m.clock.Now(), Active: true}
	m.publish(events.LiquidityProviderRegistered{Provider: caller})
	return nil
}

// DeactivateProvider flips a registered provider's active flag off,
// the natural counterpart to RegisterProvider implied by the
// LiquidityProviderRegistered/Deactivated event pair.
func (m *Module) DeactivateProvider(caller, provider uuid.UUID) error {
	if caller != m.owner {
		return xerrors.ErrOwnerOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[provider]
	if !ok {
		return xerrors.ErrNotActiveProvider
	}
	p.Active = false
	m.publish(events.LiquidityProviderDeactivated{Provider: provider})
	return nil
}

// CreateProgram creates an incentive program for a security token.
func (m *Module) CreateProgram(caller, token uuid.UUID, maxSpreadBps, minOrderSize, minLockup, dailyRateBps int64, durationDays int64) (*Program, error) {
	if caller != m.owner {
		return nil, xerrors.ErrOwnerOnly
	}
	if dailyRateBps <= 0 || dailyRateBps > 10000 {
		return nil, xerrors.ErrInvalidAmount
	}
	if maxSpreadBps <= 0 || minOrderSize <= 0 || minLockup <= 0 || durationDays <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.clock.Now().Add(time.Duration(durationDays) * 24 * time.Hour)
	program := &Program{
		SecurityToken: token,
		MaxSpreadBps:  maxSpreadBps,
		MinOrderSize:  minOrderSize,
		MinLockup:     minLockup,
		DailyRateBps:  dailyRateBps,
		EndTime:       end,
		Active:        true,
	}
	m.programs[token] = program
	m.publish(events.IncentiveProgramCreated{SecurityToken: token, DailyRateBps: dailyRateBps, EndTime: end})
	return program, nil
}

// ToggleProgram flips a program's active flag.
func (m *Module) ToggleProgram(caller, token uuid.UUID, active bool) error {
	if caller != m.owner {
		return xerrors.ErrOwnerOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	program, ok := m.programs[token]
	if !ok {
		return xerrors.ErrUnknownProgram
	}
	program.Active = active
	m.publish(events.IncentiveProgramUpdated{SecurityToken: token, Active: active})
	return nil
}

func (m *Module) programEnded(p *Program) bool {
	return !m.clock.Now().Before(p.EndTime)
}

// LockCollateral escrows USDT collateral for caller against token's program.
func (m *Module) LockCollateral(caller, token uuid.UUID, amount int64) error {
	m.mu.Lock()
	provider, ok := m.providers[caller]
	if !ok || !provider.Active {
		m.mu.Unlock()
		return xerrors.ErrNotActiveProvider
	}
	program, ok := m.programs[token]
	if !ok || !program.Active || m.programEnded(program) {
		m.mu.Unlock()
		return xerrors.ErrProgramEnded
	}
	if amount < program.MinLockup {
		m.mu.Unlock()
		return xerrors.ErrInvalidAmount
	}
	iss, ok := m.registry.LookupBySecurityToken(token)
	if !ok {
		m.mu.Unlock()
		return xerrors.ErrUnknownToken
	}
	m.mu.Unlock()

	if err := m.ledger.Transfer(iss.USDTAsset(), caller, m.escrowAccount, amount); err != nil {
		return err
	}

	m.mu.Lock()
	if m.locked[token] == nil {
		m.locked[token] = make(map[uuid.UUID]int64)
	}
	m.locked[token][caller] += amount
	provider.CurrentLocked += amount
	m.mu.Unlock()

	m.publish(events.CollateralLocked{Provider: caller, SecurityToken: token, Amount: amount})
	return nil
}

// ReleaseCollateral refunds caller's locked USDT for token once the program
// has ended or gone inactive.
func (m *Module) ReleaseCollateral(caller, token uuid.UUID) error {
	m.mu.Lock()
	amount := m.locked[token][caller]
	if amount <= 0 {
		m.mu.Unlock()
		return xerrors.ErrNoCollateral
	}
	program, ok := m.programs[token]
	if !ok {
		m.mu.Unlock()
		return xerrors.ErrUnknownProgram
	}
	if program.Active && !m.programEnded(program) {
		m.mu.Unlock()
		return xerrors.ErrProgramStillActive
	}
	iss, ok := m.registry.LookupBySecurityToken(token)
	if !ok {
		m.mu.Unlock()
		return xerrors.ErrUnknownToken
	}
	m.locked[token][caller] = 0
	provider := m.providers[caller]
	if provider != nil {
		provider.CurrentLocked -= amount
	}
	m.mu.Unlock()

	if err := m.ledger.Transfer(iss.USDTAsset(), m.escrowAccount, caller, amount); err != nil {
		m.mu.Lock()
		m.locked[token][caller] = amount
		if provider != nil {
			provider.CurrentLocked += amount
		}
		m.mu.Unlock()
		return err
	}

	m.publish(events.CollateralReleased{Provider: caller, SecurityToken: token, Amount: amount})
	return nil
}

// MeetsSpread evaluates the spread-obligation predicate for provider on
// token: provider must have an OPEN order at the best bid price and one at
// the best ask price, the order holding each best price must meet the
// minimum order size, and the spread must be within the program's maximum.
func (m *Module) MeetsSpread(provider, token uuid.UUID) bool {
	m.mu.Lock()
	program, ok := m.programs[token]
	m.mu.Unlock()
	if !ok {
		return false
	}
	if _, ok := m.registry.LookupBySecurityToken(token); !ok {
		return false
	}

	bidPrice, bidSize := m.orderBook.BestBid(token)
	askPrice, askSize := m.orderBook.BestAsk(token)
	if bidPrice == 0 || askPrice == 0 {
		return false
	}

	hasBid := m.orderBook.HasActiveOrder(provider, token, bidPrice, orderbook.Buy)
	hasAsk := m.orderBook.HasActiveOrder(provider, token, askPrice, orderbook.Sell)

	spreadBps := ((askPrice - bidPrice) * 10000) / bidPrice

	return hasBid && hasAsk &&
		bidSize >= program.MinOrderSize && askSize >= program.MinOrderSize &&
		spreadBps <= program.MaxSpreadBps
}

// DailyReward returns the reward provider would currently earn on token: 0
// if the spread obligation isn't met, otherwise locked*dailyRateBps/10000.
func (m *Module) DailyReward(provider, token uuid.UUID) int64 {
	if !m.MeetsSpread(provider, token) {
		return 0
	}
	m.mu.Lock()
	locked := m.locked[token][provider]
	program := m.programs[token]
	m.mu.Unlock()
	if program == nil {
		return 0
	}
	return (locked * program.DailyRateBps) / 10000
}

// ClaimRewards pays out the current daily reward snapshot to caller, gated
// to once per minClaimInterval per (provider, token) pair.
func (m *Module) ClaimRewards(caller, token uuid.UUID) (int64, error) {
	m.mu.Lock()
	provider, ok := m.providers[caller]
	if !ok || !provider.Active {
		m.mu.Unlock()
		return 0, xerrors.ErrNotActiveProvider
	}
	program, ok := m.programs[token]
	if !ok || !program.Active {
		m.mu.Unlock()
		return 0, xerrors.ErrProgramEnded
	}
	if m.locked[token][caller] <= 0 {
		m.mu.Unlock()
		return 0, xerrors.ErrNoCollateral
	}
	if last, ok := m.lastClaim[token][caller]; ok && m.clock.Now().Before(last.Add(minClaimInterval)) {
		m.mu.Unlock()
		return 0, xerrors.ErrNothingToClaim
	}
	m.mu.Unlock()

	reward := m.DailyReward(caller, token)
	if reward <= 0 {
		return 0, xerrors.ErrNothingToClaim
	}

	iss, ok := m.registry.LookupBySecurityToken(token)
	if !ok {
		return 0, xerrors.ErrUnknownToken
	}
	if err := m.ledger.Transfer(iss.USDTAsset(), m.escrowAccount, caller, reward); err != nil {
		return 0, err
	}

	m.mu.Lock()
	provider.Cumulative += reward
	m.totalRewards[token] += reward
	if m.lastClaim[token] == nil {
		m.lastClaim[token] = make(map[uuid.UUID]time.Time)
	}
	m.lastClaim[token][caller] = m.clock.Now()
	m.mu.Unlock()

	m.publish(events.RewardsPaid{Provider: caller, SecurityToken: token, Amount: reward})
	return reward, nil
}

// Locked returns provider's currently locked USDT collateral for token.
func (m *Module) Locked(provider, token uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked[token][provider]
}
