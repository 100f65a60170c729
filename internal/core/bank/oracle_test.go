package bank

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vaultd/internal/core/feed"
)

// countingSource counts feed queries so tests can assert the zero-amount
// short-circuit never touches the feed.
type countingSource struct {
	inner feed.Source
	calls int
}

func (c *countingSource) LatestRoundData(ctx context.Context, ref string) (feed.Round, error) {
	c.calls++
	return c.inner.LatestRoundData(ctx, ref)
}

func fixedTime() time.Time {
	return time.Unix(1_700_000_000, 0)
}

func newTestOracle(t *testing.T, src feed.Source, refDecimals uint8) *Oracle {
	t.Helper()
	o := NewOracle(src, time.Hour, refDecimals)
	o.now = fixedTime
	return o
}

func TestOracleValueNormalization(t *testing.T) {
	tests := []struct {
		name          string
		amount        *big.Int
		assetDecimals uint8
		answer        *big.Int
		feedDecimals  uint8
		refDecimals   uint8
		want          *big.Int
	}{
		{
			// 1 unit at 18 decimals, price 2500 at 8 decimals, whole
			// reference units.
			name:          "native unit at whole reference precision",
			amount:        exp10(18),
			assetDecimals: 18,
			answer:        new(big.Int).Mul(big.NewInt(2500), exp10(8)),
			feedDecimals:  8,
			refDecimals:   0,
			want:          big.NewInt(2500),
		},
		{
			// 0.4 units: value lands exactly on 1000.
			name:          "fractional amount exact boundary",
			amount:        new(big.Int).Mul(big.NewInt(4), exp10(17)),
			assetDecimals: 18,
			answer:        new(big.Int).Mul(big.NewInt(2500), exp10(8)),
			feedDecimals:  8,
			refDecimals:   0,
			want:          big.NewInt(1000),
		},
		{
			// assetDecimals + feedDecimals < refDecimals: the exponent is
			// negative and the adapter must multiply, not divide.
			name:          "negative exponent multiplies",
			amount:        big.NewInt(5),
			assetDecimals: 2,
			answer:        big.NewInt(300),
			feedDecimals:  2,
			refDecimals:   8,
			want:          big.NewInt(15_000_000),
		},
		{
			// Large amounts must not overflow intermediates.
			name:          "large amount exact arithmetic",
			amount:        new(big.Int).Mul(big.NewInt(1_000_000), exp10(18)),
			assetDecimals: 18,
			answer:        new(big.Int).Mul(big.NewInt(2500), exp10(8)),
			feedDecimals:  8,
			refDecimals:   0,
			want:          big.NewInt(2_500_000_000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := feed.NewStatic()
			src.Set("ref", tt.answer, tt.feedDecimals, 0)
			o := newTestOracle(t, src, tt.refDecimals)

			got, err := o.Value(context.Background(), tt.amount, tt.assetDecimals, "ref")
			require.NoError(t, err)
			require.Zero(t, got.Cmp(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestOracleZeroAmountSkipsFeed(t *testing.T) {
	src := &countingSource{inner: feed.NewStatic()}
	o := newTestOracle(t, src, 0)

	got, err := o.Value(context.Background(), new(big.Int), 18, "ref")
	require.NoError(t, err)
	require.Zero(t, got.Sign())
	require.Zero(t, src.calls, "zero-amount conversion must not query the feed")
}

func TestOracleRejectsNonPositiveAnswer(t *testing.T) {
	for _, answer := range []*big.Int{big.NewInt(0), big.NewInt(-1)} {
		src := feed.NewStatic()
		src.Set("ref", answer, 8, 0)
		o := newTestOracle(t, src, 0)

		_, err := o.Value(context.Background(), big.NewInt(1), 18, "ref")
		require.ErrorIs(t, err, ErrOracleCompromised)
	}
}

func TestOracleStaleness(t *testing.T) {
	src := feed.NewStatic()
	src.Now = fixedTime
	o := newTestOracle(t, src, 0)

	// Exactly at the heartbeat window is still acceptable.
	src.Set("ref", big.NewInt(100), 0, time.Hour)
	_, err := o.Value(context.Background(), big.NewInt(1), 0, "ref")
	require.NoError(t, err)

	// One second past the window is not, regardless of price magnitude.
	src.Set("ref", big.NewInt(100), 0, time.Hour+time.Second)
	_, err = o.Value(context.Background(), big.NewInt(1), 0, "ref")
	require.ErrorIs(t, err, ErrStalePrice)
}

func TestOracleNativePathRequiresCompletedRound(t *testing.T) {
	src := feed.NewStatic()
	src.SetRound("ref", big.NewInt(100), 0, 0, 0)
	o := newTestOracle(t, src, 0)

	_, err := o.NativeValue(context.Background(), big.NewInt(1), 0, "ref")
	require.ErrorIs(t, err, ErrOracleCompromised)

	// The non-native path tolerates a zero round identifier.
	_, err = o.Value(context.Background(), big.NewInt(1), 0, "ref")
	require.NoError(t, err)
}

func TestOracleUnknownFeedPropagates(t *testing.T) {
	o := newTestOracle(t, feed.NewStatic(), 0)
	_, err := o.Value(context.Background(), big.NewInt(1), 18, "nope")
	require.ErrorIs(t, err, feed.ErrUnknownFeed)
}

func exp10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
