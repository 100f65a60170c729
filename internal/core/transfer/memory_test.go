package transfer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolTransferInAccumulates(t *testing.T) {
	p := NewPool("ETH")
	ctx := context.Background()

	require.NoError(t, p.TransferIn(ctx, "alice", "ETH", big.NewInt(100)))
	require.NoError(t, p.TransferIn(ctx, "bob", "ETH", big.NewInt(50)))

	held, err := p.NativeHolding(ctx)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(150), held)
}

func TestPoolTransferOutChecksHoldings(t *testing.T) {
	p := NewPool("ETH")
	ctx := context.Background()
	p.Fund("USDC", big.NewInt(40))

	err := p.TransferOut(ctx, "alice", "USDC", big.NewInt(41))
	require.ErrorIs(t, err, ErrInsufficientPool)

	require.NoError(t, p.TransferOut(ctx, "alice", "USDC", big.NewInt(40)))

	held, err := p.AssetHolding(ctx, "USDC")
	require.NoError(t, err)
	require.Zero(t, held.Sign())
}

func TestPoolHooksAbortTransfers(t *testing.T) {
	p := NewPool("ETH")
	ctx := context.Background()
	p.Fund("ETH", big.NewInt(10))

	boom := errors.New("settlement rejected")
	p.InHook = func(user, asset string, amount *big.Int) error { return boom }
	p.OutHook = func(user, asset string, amount *big.Int) error { return boom }

	require.ErrorIs(t, p.TransferIn(ctx, "alice", "ETH", big.NewInt(1)), boom)
	require.ErrorIs(t, p.TransferOut(ctx, "alice", "ETH", big.NewInt(1)), boom)

	held, err := p.NativeHolding(ctx)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10), held, "failed transfers must not move value")
}

func TestPoolUnknownAssetHoldingIsZero(t *testing.T) {
	p := NewPool("ETH")
	held, err := p.AssetHolding(context.Background(), "DOGE")
	require.NoError(t, err)
	require.Zero(t, held.Sign())
}
