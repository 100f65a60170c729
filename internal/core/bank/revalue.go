package bank

import (
	"context"
	"fmt"
	"math/big"

	"vaultd/internal/core/transfer"
)

// Revaluer computes the reference-currency value of everything the pool
// holds: the native holding plus every cataloged asset's holding. Holdings
// come from the external pool query, never from the ledger, so the valuation
// reflects what is actually custodied.
type Revaluer struct {
	catalog *Catalog
	oracle  *Oracle
	pool    transfer.PoolBalances

	nativeFeed     string
	nativeDecimals uint8
}

// NewRevaluer wires a revaluer over the catalog, oracle and pool query.
func NewRevaluer(catalog *Catalog, oracle *Oracle, pool transfer.PoolBalances, nativeFeed string, nativeDecimals uint8) *Revaluer {
	return &Revaluer{
		catalog:        catalog,
		oracle:         oracle,
		pool:           pool,
		nativeFeed:     nativeFeed,
		nativeDecimals: nativeDecimals,
	}
}

// TotalPoolValue re-scans the whole catalog on every call. This is O(assets)
// feed queries and is the dominant cost of a cap check. An empty catalog is
// valid; the total is then the native value alone.
func (r *Revaluer) TotalPoolValue(ctx context.Context) (*big.Int, error) {
	native, err := r.pool.NativeHolding(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying native pool holding: %w", err)
	}
	total, err := r.oracle.NativeValue(ctx, native, r.nativeDecimals, r.nativeFeed)
	if err != nil {
		return nil, err
	}

	for _, id := range r.catalog.Assets() {
		info, err := r.catalog.Lookup(id)
		if err != nil {
			return nil, err
		}
		held, err := r.pool.AssetHolding(ctx, string(id))
		if err != nil {
			return nil, fmt.Errorf("querying pool holding of %s: %w", id, err)
		}
		v, err := r.oracle.Value(ctx, held, info.Decimals, info.Feed)
		if err != nil {
			return nil, err
		}
		total.Add(total, v)
	}
	return total, nil
}
