package bank

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrDuplicateAsset is returned when registering an asset that is
	// already in the catalog.
	ErrDuplicateAsset = errors.New("bank: asset already supported")

	// ErrInvalidReference is returned when an asset identifier or feed
	// reference is empty or malformed.
	ErrInvalidReference = errors.New("bank: invalid asset or feed reference")

	// ErrUnsupportedAsset is returned when an asset is not in the catalog.
	ErrUnsupportedAsset = errors.New("bank: unsupported asset")

	// ErrOracleCompromised is returned when a feed reports a non-positive
	// price or an incomplete round on the native path.
	ErrOracleCompromised = errors.New("bank: oracle answer is not usable")

	// ErrStalePrice is returned when a feed observation is older than the
	// heartbeat window.
	ErrStalePrice = errors.New("bank: oracle price is stale")

	// ErrBankCapExceeded is returned when a deposit would push the pool
	// value strictly above the bank cap.
	ErrBankCapExceeded = errors.New("bank: pool value would exceed the bank cap")

	// ErrWithdrawalLimitExceeded is returned when a native withdrawal's
	// reference value is above the per-transaction ceiling.
	ErrWithdrawalLimitExceeded = errors.New("bank: withdrawal value exceeds the per-transaction ceiling")

	// ErrWithdrawalAmount is returned for zero or negative withdrawal
	// amounts.
	ErrWithdrawalAmount = errors.New("bank: withdrawal amount must be positive")

	// ErrDepositAmount is returned for zero or negative deposit amounts.
	ErrDepositAmount = errors.New("bank: deposit amount must be positive")

	// ErrDepositAmountMismatch is returned when a native deposit's declared
	// amount differs from the value sent with the call.
	ErrDepositAmountMismatch = errors.New("bank: deposit amount does not match transferred value")

	// ErrDepositTransfer is returned when the inbound transfer fails. The
	// whole deposit is discarded.
	ErrDepositTransfer = errors.New("bank: deposit transfer failed")

	// ErrWithdrawalTransfer is returned when the outbound transfer fails.
	// The whole withdrawal is discarded.
	ErrWithdrawalTransfer = errors.New("bank: withdrawal transfer failed")

	// ErrReentrancy is returned when an operation is entered while another
	// one is in flight. Re-entrant calls fail fast, they never queue.
	ErrReentrancy = errors.New("bank: operation already in progress")
)

// InsufficientBalanceError reports a debit that exceeds the available
// balance.
type InsufficientBalanceError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("bank: insufficient balance: requested %s, available %s",
		e.Requested, e.Available)
}
