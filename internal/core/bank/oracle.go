package bank

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"vaultd/internal/core/feed"
)

// Oracle converts native-unit asset amounts into reference-currency values
// using external price feeds. Rounds are fetched fresh on every conversion
// and validated for positivity and freshness; nothing is cached across
// operations.
type Oracle struct {
	source      feed.Source
	heartbeat   time.Duration
	refDecimals uint8

	// now is swapped out by tests.
	now func() time.Time
}

// NewOracle creates an oracle adapter. heartbeat is the maximum tolerated
// age of a feed observation; refDecimals is the precision reference values
// are carried at.
func NewOracle(source feed.Source, heartbeat time.Duration, refDecimals uint8) *Oracle {
	return &Oracle{
		source:      source,
		heartbeat:   heartbeat,
		refDecimals: refDecimals,
		now:         time.Now,
	}
}

// Value converts amount (in the asset's smallest native unit, at
// assetDecimals precision) to a reference-currency value via the feed at
// ref. A zero amount short-circuits to zero without querying the feed.
func (o *Oracle) Value(ctx context.Context, amount *big.Int, assetDecimals uint8, ref string) (*big.Int, error) {
	return o.value(ctx, amount, assetDecimals, ref, false)
}

// NativeValue is Value for the native asset's fixed feed. The native path
// additionally rejects rounds with a zero round identifier, since the native
// feed has no user-supplied override to fall back on.
func (o *Oracle) NativeValue(ctx context.Context, amount *big.Int, assetDecimals uint8, ref string) (*big.Int, error) {
	return o.value(ctx, amount, assetDecimals, ref, true)
}

func (o *Oracle) value(ctx context.Context, amount *big.Int, assetDecimals uint8, ref string, strictRound bool) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 {
		return new(big.Int), nil
	}

	round, err := o.source.LatestRoundData(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("querying feed %q: %w", ref, err)
	}

	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return nil, ErrOracleCompromised
	}
	if strictRound && round.AnsweredInRound == 0 {
		return nil, ErrOracleCompromised
	}
	if o.now().Sub(round.UpdatedAt) > o.heartbeat {
		return nil, ErrStalePrice
	}

	// value = amount * answer / 10^(assetDecimals + feedDecimals - refDecimals).
	// The exponent can be negative when the reference precision exceeds the
	// combined input precision, in which case we multiply instead. All
	// arithmetic is exact big-integer math; the single final division is the
	// only place precision is dropped.
	v := new(big.Int).Mul(amount, round.Answer)
	exp := int(assetDecimals) + int(round.Decimals) - int(o.refDecimals)
	if exp >= 0 {
		v.Quo(v, pow10(exp))
	} else {
		v.Mul(v, pow10(-exp))
	}
	return v, nil
}

// Heartbeat returns the configured staleness window.
func (o *Oracle) Heartbeat() time.Duration {
	return o.heartbeat
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
