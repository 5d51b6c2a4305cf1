package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedRedRyan/NairobiBlockExchange/internal/xerrors"
)

func TestMintIncreasesBalanceAndSupply(t *testing.T) {
	l := New(nil, nil)
	asset, acct := uuid.New(), uuid.New()

	require.NoError(t, l.Mint(asset, acct, 100))
	assert.Equal(t, int64(100), l.BalanceOf(asset, acct))
	assert.Equal(t, int64(100), l.TotalSupply(asset))
}

func TestMintRejectsNonPositive(t *testing.T) {
	l := New(nil, nil)
	asset, acct := uuid.New(), uuid.New()

	assert.ErrorIs(t, l.Mint(asset, acct, 0), xerrors.ErrInvalidAmount)
	assert.ErrorIs(t, l.Mint(asset, acct, -5), xerrors.ErrInvalidAmount)
}

func TestTransferMovesValueAndPreservesSupply(t *testing.T) {
	l := New(nil, nil)
	asset, a, b := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, l.Mint(asset, a, 100))

	require.NoError(t, l.Transfer(asset, a, b, 40))
	assert.Equal(t, int64(60), l.BalanceOf(asset, a))
	assert.Equal(t, int64(40), l.BalanceOf(asset, b))
	assert.Equal(t, int64(100), l.TotalSupply(asset), "conservation: supply unchanged by a transfer")
}

func TestTransferInsufficientBalanceIsAllOrNothing(t *testing.T) {
	l := New(nil, nil)
	asset, a, b := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, l.Mint(asset, a, 10))

	err := l.Transfer(asset, a, b, 11)
	assert.ErrorIs(t, err, xerrors.ErrInsufficientBalance)
	assert.Equal(t, int64(10), l.BalanceOf(asset, a))
	assert.Equal(t, int64(0), l.BalanceOf(asset, b))
}

func TestBalanceOfUnknownPairIsZero(t *testing.T) {
	l := New(nil, nil)
	assert.Equal(t, int64(0), l.BalanceOf(uuid.New(), uuid.New()))
}

func TestSetInitialBalanceAdjustsTotalSupplyByDelta(t *testing.T) {
	l := New(nil, nil)
	asset, acct := uuid.New(), uuid.New()

	require.NoError(t, l.SetInitialBalance(asset, acct, 500))
	assert.Equal(t, int64(500), l.BalanceOf(asset, acct))
	assert.Equal(t, int64(500), l.TotalSupply(asset), "conservation must hold for the bootstrap path too")

	require.NoError(t, l.SetInitialBalance(asset, acct, 300))
	assert.Equal(t, int64(300), l.BalanceOf(asset, acct))
	assert.Equal(t, int64(300), l.TotalSupply(asset))
}

func TestConservationHoldsAcrossManyTransfers(t *testing.T) {
	l := New(nil, nil)
	asset := uuid.New()
	accounts := make([]uuid.UUID, 5)
	for i := range accounts {
		accounts[i] = uuid.New()
	}
	require.NoError(t, l.Mint(asset, accounts[0], 1000))

	for i := 0; i < 50; i++ {
		from := accounts[i%len(accounts)]
		to := accounts[(i+1)%len(accounts)]
		_ = l.Transfer(asset, from, to, 7)
	}

	var sum int64
	for _, a := range accounts {
		sum += l.BalanceOf(asset, a)
	}
	assert.Equal(t, l.TotalSupply(asset), sum)
}
