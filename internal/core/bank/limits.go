package bank

import (
	"context"
	"math/big"
)

// CapEnforcer rejects deposits that would push the pool's total reference
// value strictly above the immutable bank cap.
type CapEnforcer struct {
	revaluer *Revaluer
	cap      *big.Int
}

// NewCapEnforcer creates a cap enforcer with the given immutable ceiling.
func NewCapEnforcer(revaluer *Revaluer, cap *big.Int) *CapEnforcer {
	return &CapEnforcer{revaluer: revaluer, cap: new(big.Int).Set(cap)}
}

// CheckCap validates a prospective deposit of the given incremental
// reference value. It must run before the deposit is reflected in pool
// holdings: the incremental value is passed in precisely so the total is
// computed from pre-deposit holdings and the deposit is never double
// counted. Landing exactly on the cap is allowed.
func (c *CapEnforcer) CheckCap(ctx context.Context, incremental *big.Int) error {
	total, err := c.revaluer.TotalPoolValue(ctx)
	if err != nil {
		return err
	}
	if total.Add(total, incremental).Cmp(c.cap) > 0 {
		return ErrBankCapExceeded
	}
	return nil
}

// Cap returns the configured ceiling.
func (c *CapEnforcer) Cap() *big.Int {
	return new(big.Int).Set(c.cap)
}

// WithdrawalLimiter rejects native-asset withdrawals whose reference value
// exceeds the immutable per-transaction ceiling. Cataloged assets have no
// value ceiling, only the balance-sufficiency check: the ceiling protects
// the one asset without a user-supplied feed override from oracle
// manipulation.
type WithdrawalLimiter struct {
	oracle  *Oracle
	ceiling *big.Int

	nativeFeed     string
	nativeDecimals uint8
}

// NewWithdrawalLimiter creates a limiter with the given immutable ceiling.
func NewWithdrawalLimiter(oracle *Oracle, ceiling *big.Int, nativeFeed string, nativeDecimals uint8) *WithdrawalLimiter {
	return &WithdrawalLimiter{
		oracle:         oracle,
		ceiling:        new(big.Int).Set(ceiling),
		nativeFeed:     nativeFeed,
		nativeDecimals: nativeDecimals,
	}
}

// CheckLimit validates a native withdrawal of amount (native smallest
// units). A value exactly at the ceiling is allowed.
func (w *WithdrawalLimiter) CheckLimit(ctx context.Context, amount *big.Int) error {
	value, err := w.oracle.NativeValue(ctx, amount, w.nativeDecimals, w.nativeFeed)
	if err != nil {
		return err
	}
	if value.Cmp(w.ceiling) > 0 {
		return ErrWithdrawalLimitExceeded
	}
	return nil
}

// Ceiling returns the configured per-transaction ceiling.
func (w *WithdrawalLimiter) Ceiling() *big.Int {
	return new(big.Int).Set(w.ceiling)
}
