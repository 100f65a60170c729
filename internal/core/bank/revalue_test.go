package bank

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultd/internal/core/feed"
	"vaultd/internal/core/transfer"
)

func TestRevaluerEmptyCatalogNativeOnly(t *testing.T) {
	src := feed.NewStatic()
	src.Set("feed:native", new(big.Int).Mul(big.NewInt(2500), exp10(8)), 8, 0)

	pool := transfer.NewPool("ETH")
	pool.Fund("ETH", exp10(18))

	r := NewRevaluer(NewCatalog(nil), NewOracle(src, time.Hour, 0), pool, "feed:native", 18)
	total, err := r.TotalPoolValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(2500), total)
}

func TestRevaluerSumsCatalogedHoldings(t *testing.T) {
	src := feed.NewStatic()
	src.Set("feed:native", new(big.Int).Mul(big.NewInt(2500), exp10(8)), 8, 0)
	src.Set("feed:usdc", exp10(8), 8, 0)
	src.Set("feed:wbtc", new(big.Int).Mul(big.NewInt(60_000), exp10(8)), 8, 0)

	catalog := NewCatalog(nil)
	require.NoError(t, catalog.Register("USDC", "feed:usdc", 6))
	require.NoError(t, catalog.Register("WBTC", "feed:wbtc", 8))

	pool := transfer.NewPool("ETH")
	pool.Fund("ETH", new(big.Int).Mul(big.NewInt(2), exp10(18))) // 5000
	pool.Fund("USDC", new(big.Int).Mul(big.NewInt(150), exp10(6)))
	pool.Fund("WBTC", exp10(7)) // 0.1 BTC, 6000

	r := NewRevaluer(catalog, NewOracle(src, time.Hour, 0), pool, "feed:native", 18)
	total, err := r.TotalPoolValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, big.NewInt(11_150), total)
}

func TestRevaluerEmptyPoolIsZero(t *testing.T) {
	// Nothing held means no feed query can fail the valuation.
	r := NewRevaluer(NewCatalog(nil), NewOracle(feed.NewStatic(), time.Hour, 0), transfer.NewPool("ETH"), "feed:native", 18)
	total, err := r.TotalPoolValue(context.Background())
	require.NoError(t, err)
	require.Zero(t, total.Sign())
}

type failingPool struct{ err error }

func (p failingPool) NativeHolding(ctx context.Context) (*big.Int, error) { return nil, p.err }
func (p failingPool) AssetHolding(ctx context.Context, asset string) (*big.Int, error) {
	return nil, p.err
}

func TestRevaluerPropagatesPoolErrors(t *testing.T) {
	boom := errors.New("pool query failed")
	r := NewRevaluer(NewCatalog(nil), NewOracle(feed.NewStatic(), time.Hour, 0), failingPool{err: boom}, "feed:native", 18)
	_, err := r.TotalPoolValue(context.Background())
	require.ErrorIs(t, err, boom)
}
