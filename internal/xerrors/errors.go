// Package xerrors defines the tagged error taxonomy shared by every core
// module. Each tag is a distinct sentinel so callers can discriminate with
// errors.Is instead of parsing messages.
package xerrors

import "errors"

// Authorization errors.
var (
	ErrOwnerOnly         = errors.New("owner only")
	ErrNotOwner          = errors.New("not owner")
	ErrNotWhitelisted    = errors.New("not whitelisted")
	ErrNotActiveProvider = errors.New("not active provider")
)

// Existence errors.
var (
	ErrUnknownToken      = errors.New("unknown security token")
	ErrUnknownOrder      = errors.New("unknown order")
	ErrUnknownProgram    = errors.New("unknown incentive program")
	ErrDuplicateCompany  = errors.New("duplicate company name")
	ErrAlreadyRegistered = errors.New("already registered")
)

// State errors.
var (
	ErrNotOpen            = errors.New("order not open")
	ErrNotExpired         = errors.New("order not expired")
	ErrProgramEnded       = errors.New("incentive program ended")
	ErrProgramStillActive = errors.New("incentive program still active")
	ErrNoCollateral       = errors.New("no collateral locked")
	ErrAlreadyInitialized = errors.New("already initialized")
)

// Value errors.
var (
	ErrNonPositive         = errors.New("amount must be positive")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientPool    = errors.New("insufficient dividend pool")
	ErrNoShares            = errors.New("caller holds no shares")
	ErrNothingToClaim      = errors.New("nothing to claim")
	ErrFeeTooHigh          = errors.New("fee too high")
	ErrAmountTooLarge      = errors.New("amount exceeds the int64 ceiling")
)
