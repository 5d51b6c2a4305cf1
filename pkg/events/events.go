// Package events carries the typed, bit-exact domain events the core venue
// emits, one struct per event name in the external-interfaces catalog.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the common envelope every domain event satisfies.
type Event interface {
	Name() string
}

type ExchangeDeployed struct {
	Owner       uuid.UUID
	Issuer      uuid.UUID
	CompanyName string
}

func (ExchangeDeployed) Name() string { return "ExchangeDeployed" }

type TokenCreated struct {
	SecurityToken uuid.UUID
	TokenName     string
	Symbol        string
	InitialSupply int64
}

func (TokenCreated) Name() string { return "TokenCreated" }

type ShareholderWhitelisted struct {
	Investor uuid.UUID
	Status   bool
}

func (ShareholderWhitelisted) Name() string { return "ShareholderWhitelisted" }

type DividendsDistributed struct {
	Issuer uuid.UUID
	Amount int64
}

func (DividendsDistributed) Name() string { return "DividendsDistributed" }

type DividendClaimed struct {
	Issuer      uuid.UUID
	Shareholder uuid.UUID
	Amount      int64
}

func (DividendClaimed) Name() string { return "DividendClaimed" }

type GovernanceVoteCasted struct {
	Issuer uuid.UUID
	Voter  uuid.UUID
	Votes  int64
}

func (GovernanceVoteCasted) Name() string { return "GovernanceVoteCasted" }

type TokensTransferred struct {
	Asset  uuid.UUID
	From   uuid.UUID
	To     uuid.UUID
	Amount int64
}

func (TokensTransferred) Name() string { return "TokensTransferred" }

type OrderCreated struct {
	OrderID       uint64
	Maker         uuid.UUID
	SecurityToken uuid.UUID
	Amount        int64
	Price         int64
	Side          string
}

func (OrderCreated) Name() string { return "OrderCreated" }

type OrderFilled struct {
	RestingOrderID uint64
	RestingMaker   uuid.UUID
	Taker          uuid.UUID
	Amount         int64
	ExecPrice      int64
}

func (OrderFilled) Name() string { return "OrderFilled" }

type OrderCancelled struct {
	OrderID uint64
}

func (OrderCancelled) Name() string { return "OrderCancelled" }

type FeesCollected struct {
	Asset     uuid.UUID
	Collector uuid.UUID
	Amount    int64
}

func (FeesCollected) Name() string { return "FeesCollected" }

type LiquidityProviderRegistered struct {
	Provider uuid.UUID
}

func (LiquidityProviderRegistered) Name() string { return "LiquidityProviderRegistered" }

type LiquidityProviderDeactivated struct {
	Provider uuid.UUID
}

func (LiquidityProviderDeactivated) Name() string { return "LiquidityProviderDeactivated" }

type IncentiveProgramCreated struct {
	SecurityToken uuid.UUID
	DailyRateBps  int64
	EndTime       time.Time
}

func (IncentiveProgramCreated) Name() string { return "IncentiveProgramCreated" }

type IncentiveProgramUpdated struct {
	SecurityToken uuid.UUID
	Active        bool
}

func (IncentiveProgramUpdated) Name() string { return "IncentiveProgramUpdated" }

type CollateralLocked struct {
	Provider      uuid.UUID
	SecurityToken uuid.UUID
	Amount        int64
}

func (CollateralLocked) Name() string { return "CollateralLocked" }

type CollateralReleased struct {
	Provider      uuid.UUID
	SecurityToken uuid.UUID
	Amount        int64
}

func (CollateralReleased) Name() string { return "CollateralReleased" }

type RewardsPaid struct {
	Provider      uuid.UUID
	SecurityToken uuid.UUID
	Amount        int64
}

func (RewardsPaid) Name() string { return "RewardsPaid" }
