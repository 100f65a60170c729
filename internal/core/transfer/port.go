// Package transfer defines the value-movement boundary of the bank. The core
// never moves funds itself; it asks a Port to pull value into the pool or
// push it out, and a PoolBalances to report what the pool actually holds.
// Both either complete or report failure; the core never assumes success.
package transfer

import (
	"context"
	"errors"
	"math/big"
)

// ErrInsufficientPool is returned when an outbound transfer would exceed the
// pool's actual holdings of the asset.
var ErrInsufficientPool = errors.New("transfer: pool holdings insufficient")

// Port moves value between a user and the pool. Implementations must be
// atomic per call: a returned error means no value moved.
type Port interface {
	// TransferIn pulls amount of asset from the user into the pool.
	TransferIn(ctx context.Context, user, asset string, amount *big.Int) error

	// TransferOut pushes amount of asset from the pool to the user.
	TransferOut(ctx context.Context, user, asset string, amount *big.Int) error
}

// PoolBalances reports the pool's raw holdings. This is the external balance
// query the revaluer uses; it is deliberately distinct from the ledger.
type PoolBalances interface {
	// NativeHolding returns the pool's holding of the native asset.
	NativeHolding(ctx context.Context) (*big.Int, error)

	// AssetHolding returns the pool's holding of a cataloged asset.
	AssetHolding(ctx context.Context, asset string) (*big.Int, error)
}
