// Package bank implements the custodial accounting engine: the balance
// ledger, the asset catalog, the oracle price adapter, pool revaluation
// against the bank cap, the per-transaction withdrawal ceiling, and the
// deposit/withdraw orchestration that ties them together. Every operation is
// all-or-nothing: checks run first, effects are staged, the external
// transfer is attempted, and only then is anything committed.
package bank

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"vaultd/internal/core/transfer"
)

// CapPolicy names how native-asset deposits are valued for cap purposes.
// CapPolicyZero admits native deposits without cap friction (bootstrap
// liquidity); CapPolicyValued counts them at their converted value. This is
// an explicit configuration choice, never a silent default.
type CapPolicy string

const (
	CapPolicyValued CapPolicy = "valued"
	CapPolicyZero   CapPolicy = "zero"
)

// ParseCapPolicy validates a configured policy name.
func ParseCapPolicy(s string) (CapPolicy, error) {
	switch CapPolicy(s) {
	case CapPolicyValued, CapPolicyZero:
		return CapPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown native cap policy %q (want %q or %q)", s, CapPolicyValued, CapPolicyZero)
	}
}

// Params are the immutable construction parameters of the bank.
type Params struct {
	// Cap is the global pool-value ceiling in reference units.
	Cap *big.Int

	// WithdrawalCeiling is the per-transaction ceiling on native
	// withdrawals, in reference units.
	WithdrawalCeiling *big.Int

	// NativeAsset is the symbol of the always-supported native asset.
	NativeAsset AssetID

	// NativeFeed is the fixed feed reference for the native asset.
	NativeFeed string

	// NativeDecimals is the native asset's smallest-unit precision.
	NativeDecimals uint8

	// NativeCapPolicy selects how native deposits count toward the cap.
	NativeCapPolicy CapPolicy
}

// Bank sequences deposits and withdrawals as checks, effects, interactions.
type Bank struct {
	params   Params
	catalog  *Catalog
	oracle   *Oracle
	revaluer *Revaluer
	caps     *CapEnforcer
	limiter  *WithdrawalLimiter
	ledger   *Ledger
	port     transfer.Port
	sink     Sink
	guard    Guard
	log      *logrus.Entry
}

// New assembles a bank. sink may be nil; log must not be.
func New(params Params, catalog *Catalog, oracle *Oracle, ledger *Ledger, port transfer.Port, pool transfer.PoolBalances, sink Sink, log *logrus.Entry) *Bank {
	revaluer := NewRevaluer(catalog, oracle, pool, params.NativeFeed, params.NativeDecimals)
	return &Bank{
		params:   params,
		catalog:  catalog,
		oracle:   oracle,
		revaluer: revaluer,
		caps:     NewCapEnforcer(revaluer, params.Cap),
		limiter:  NewWithdrawalLimiter(oracle, params.WithdrawalCeiling, params.NativeFeed, params.NativeDecimals),
		ledger:   ledger,
		port:     port,
		sink:     sink,
		log:      log,
	}
}

// Deposit credits amount of asset to user and pulls the value into the pool.
// For the native asset, sent is the value attached to the call and must
// equal amount; for cataloged assets sent is ignored.
func (b *Bank) Deposit(ctx context.Context, user UserID, asset AssetID, amount, sent *big.Int) error {
	if err := b.guard.Acquire(); err != nil {
		return err
	}
	defer b.guard.Release()

	if amount == nil || amount.Sign() <= 0 {
		return ErrDepositAmount
	}

	// CHECKS
	native := asset == b.params.NativeAsset
	var info AssetInfo
	if native {
		if sent == nil || amount.Cmp(sent) != 0 {
			return ErrDepositAmountMismatch
		}
	} else {
		var err error
		if info, err = b.catalog.Lookup(asset); err != nil {
			return err
		}
	}

	incremental, err := b.depositValue(ctx, native, info, amount)
	if err != nil {
		return err
	}
	if err := b.caps.CheckCap(ctx, incremental); err != nil {
		return err
	}

	// EFFECTS
	txn := b.ledger.Begin()
	newBalance := txn.Credit(user, asset, amount)
	txn.NoteDeposit()

	// INTERACTIONS
	if err := b.port.TransferIn(ctx, string(user), string(asset), amount); err != nil {
		txn.Discard()
		return fmt.Errorf("%w: %v", ErrDepositTransfer, err)
	}
	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("finalizing deposit: %w", err)
	}

	b.publish(DepositEvent{User: user, Asset: asset, Amount: new(big.Int).Set(amount), NewBalance: newBalance, At: time.Now()})
	b.log.WithFields(logrus.Fields{
		"user":    user,
		"asset":   asset,
		"amount":  amount.String(),
		"balance": newBalance.String(),
	}).Info("deposit completed")
	return nil
}

// Withdraw debits amount of asset from user and pushes the value out of the
// pool.
func (b *Bank) Withdraw(ctx context.Context, user UserID, asset AssetID, amount *big.Int) error {
	if err := b.guard.Acquire(); err != nil {
		return err
	}
	defer b.guard.Release()

	// CHECKS
	if amount == nil || amount.Sign() <= 0 {
		return ErrWithdrawalAmount
	}
	if asset == b.params.NativeAsset {
		if err := b.limiter.CheckLimit(ctx, amount); err != nil {
			return err
		}
	}

	// EFFECTS
	txn := b.ledger.Begin()
	newBalance, err := txn.Debit(user, asset, amount)
	if err != nil {
		txn.Discard()
		return err
	}
	txn.NoteWithdrawal()

	// INTERACTIONS
	if err := b.port.TransferOut(ctx, string(user), string(asset), amount); err != nil {
		txn.Discard()
		return fmt.Errorf("%w: %v", ErrWithdrawalTransfer, err)
	}
	if err := txn.Commit(ctx); err != nil {
		return fmt.Errorf("finalizing withdrawal: %w", err)
	}

	b.publish(WithdrawalEvent{User: user, Asset: asset, Amount: new(big.Int).Set(amount), NewBalance: newBalance, At: time.Now()})
	b.log.WithFields(logrus.Fields{
		"user":    user,
		"asset":   asset,
		"amount":  amount.String(),
		"balance": newBalance.String(),
	}).Info("withdrawal completed")
	return nil
}

// depositValue computes the prospective reference value of a deposit for the
// cap check, honoring the native cap policy.
func (b *Bank) depositValue(ctx context.Context, native bool, info AssetInfo, amount *big.Int) (*big.Int, error) {
	if native {
		if b.params.NativeCapPolicy == CapPolicyZero {
			return new(big.Int), nil
		}
		return b.oracle.NativeValue(ctx, amount, b.params.NativeDecimals, b.params.NativeFeed)
	}
	return b.oracle.Value(ctx, amount, info.Decimals, info.Feed)
}

// BalanceOf returns the committed balance of (user, asset).
func (b *Bank) BalanceOf(user UserID, asset AssetID) *big.Int {
	return b.ledger.BalanceOf(user, asset)
}

// TotalPoolValue revalues the whole pool in reference units.
func (b *Bank) TotalPoolValue(ctx context.Context) (*big.Int, error) {
	return b.revaluer.TotalPoolValue(ctx)
}

// RegisterAsset adds a secondary asset to the catalog. The caller is the
// trusted admin collaborator; authorization happens at the transport layer.
func (b *Bank) RegisterAsset(id AssetID, feedRef string, decimals uint8) error {
	if id == b.params.NativeAsset {
		return ErrDuplicateAsset
	}
	return b.catalog.Register(id, feedRef, decimals)
}

// UpdateAssetFeed replaces a cataloged asset's feed reference.
func (b *Bank) UpdateAssetFeed(id AssetID, newRef string) error {
	return b.catalog.UpdateFeed(id, newRef)
}

// Assets lists cataloged assets.
func (b *Bank) Assets() []AssetID {
	return b.catalog.Assets()
}

// LookupAsset returns the catalog descriptor of an asset.
func (b *Bank) LookupAsset(id AssetID) (AssetInfo, error) {
	return b.catalog.Lookup(id)
}

// Info is an operational summary served over RPC.
type Info struct {
	NativeAsset       AssetID
	Cap               *big.Int
	WithdrawalCeiling *big.Int
	NativeCapPolicy   CapPolicy
	Deposits          uint64
	Withdrawals       uint64
	CatalogSize       int
}

// Summary returns the bank's operational summary.
func (b *Bank) Summary() Info {
	return Info{
		NativeAsset:       b.params.NativeAsset,
		Cap:               b.caps.Cap(),
		WithdrawalCeiling: b.limiter.Ceiling(),
		NativeCapPolicy:   b.params.NativeCapPolicy,
		Deposits:          b.ledger.Deposits(),
		Withdrawals:       b.ledger.Withdrawals(),
		CatalogSize:       b.catalog.Len(),
	}
}

// Entries exposes the committed ledger entries for snapshot export.
func (b *Bank) Entries() []BalanceEntry {
	return b.ledger.Entries()
}

func (b *Bank) publish(ev Event) {
	if b.sink != nil {
		b.sink.Publish(ev)
	}
}
