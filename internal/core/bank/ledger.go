package bank

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/ugorji/go/codec"

	"vaultd/internal/storage/ledgerdb"
)

// Key layout in the ledger database:
//
//	b/<asset>/<user>  -> balanceRecord (CBOR)
//	c/deposits        -> counterRecord (CBOR)
//	c/withdrawals     -> counterRecord (CBOR)
//
// Asset identifiers may not contain '/', which the catalog enforces; user
// identifiers are the trailing segment so they can contain anything.
const (
	balancePrefix      = "b/"
	depositCountKey    = "c/deposits"
	withdrawalCountKey = "c/withdrawals"
)

var cborHandle = new(codec.CborHandle)

type balanceRecord struct {
	Amount []byte `codec:"a"`
}

type counterRecord struct {
	Count uint64 `codec:"n"`
}

// Ledger is the per-user, per-asset balance book. All reads are served from
// memory; mutations are staged in a Txn and become durable in a single
// atomic database batch at commit. Entries are created implicitly on first
// credit and left at zero rather than destroyed.
type Ledger struct {
	mu sync.RWMutex
	db ledgerdb.DB

	balances    map[AssetID]map[UserID]*big.Int
	deposits    uint64
	withdrawals uint64
}

// OpenLedger loads all balance entries and counters from the database.
func OpenLedger(ctx context.Context, db ledgerdb.DB) (*Ledger, error) {
	l := &Ledger{
		db:       db,
		balances: make(map[AssetID]map[UserID]*big.Int),
	}

	it, err := db.Iterator(ctx, []byte(balancePrefix), []byte(balancePrefix+"\xff"))
	if err != nil {
		return nil, fmt.Errorf("scanning balance entries: %w", err)
	}
	defer it.Close()

	for it.Next() {
		asset, user, ok := splitBalanceKey(string(it.Key()))
		if !ok {
			return nil, fmt.Errorf("malformed balance key %q", it.Key())
		}
		var rec balanceRecord
		if err := codec.NewDecoderBytes(it.Value(), cborHandle).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding balance entry %q: %w", it.Key(), err)
		}
		l.set(asset, user, new(big.Int).SetBytes(rec.Amount))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("scanning balance entries: %w", err)
	}

	if l.deposits, err = readCounter(ctx, db, depositCountKey); err != nil {
		return nil, err
	}
	if l.withdrawals, err = readCounter(ctx, db, withdrawalCountKey); err != nil {
		return nil, err
	}
	return l, nil
}

// BalanceOf returns the committed balance of (user, asset). Missing entries
// read as zero.
func (l *Ledger) BalanceOf(user UserID, asset AssetID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if byUser, ok := l.balances[asset]; ok {
		if bal, ok := byUser[user]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// Deposits returns the completed-deposit counter.
func (l *Ledger) Deposits() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.deposits
}

// Withdrawals returns the completed-withdrawal counter.
func (l *Ledger) Withdrawals() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.withdrawals
}

// Entries returns a snapshot of every committed balance entry, in stable
// (asset, user) order.
func (l *Ledger) Entries() []BalanceEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []BalanceEntry
	for asset, byUser := range l.balances {
		for user, bal := range byUser {
			out = append(out, BalanceEntry{
				Asset:  asset,
				User:   user,
				Amount: new(big.Int).Set(bal),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset != out[j].Asset {
			return out[i].Asset < out[j].Asset
		}
		return out[i].User < out[j].User
	})
	return out
}

// BalanceEntry is one committed (user, asset) balance.
type BalanceEntry struct {
	Asset  AssetID
	User   UserID
	Amount *big.Int
}

// Begin opens a staged transaction. Nothing is observable outside the Txn
// until Commit; Discard drops every staged mutation.
func (l *Ledger) Begin() *Txn {
	return &Txn{
		ledger:  l,
		pending: make(map[AssetID]map[UserID]*big.Int),
	}
}

// Txn stages credits and debits against the ledger. It is used only inside
// the orchestrator's effects phase, under the operation guard, so it takes
// no internal locks until Commit.
type Txn struct {
	ledger  *Ledger
	pending map[AssetID]map[UserID]*big.Int

	depositDelta    uint64
	withdrawalDelta uint64
	done            bool
}

// Credit stages an increase and returns the resulting balance.
func (t *Txn) Credit(user UserID, asset AssetID, amount *big.Int) *big.Int {
	bal := new(big.Int).Add(t.effective(user, asset), amount)
	t.stage(user, asset, bal)
	return new(big.Int).Set(bal)
}

// Debit stages a decrease and returns the resulting balance. It fails with
// InsufficientBalanceError when amount exceeds the effective balance.
func (t *Txn) Debit(user UserID, asset AssetID, amount *big.Int) (*big.Int, error) {
	cur := t.effective(user, asset)
	if amount.Cmp(cur) > 0 {
		return nil, &InsufficientBalanceError{
			Requested: new(big.Int).Set(amount),
			Available: cur,
		}
	}
	bal := new(big.Int).Sub(cur, amount)
	t.stage(user, asset, bal)
	return new(big.Int).Set(bal), nil
}

// NoteDeposit stages a deposit-counter increment.
func (t *Txn) NoteDeposit() { t.depositDelta++ }

// NoteWithdrawal stages a withdrawal-counter increment.
func (t *Txn) NoteWithdrawal() { t.withdrawalDelta++ }

// Commit writes every staged mutation in one atomic batch and then applies
// it to the in-memory book. After Commit the Txn is spent.
func (t *Txn) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("ledger txn already finished")
	}
	t.done = true

	l := t.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	var ops []ledgerdb.BatchOperation
	for asset, byUser := range t.pending {
		for user, bal := range byUser {
			val, err := encodeCBOR(balanceRecord{Amount: bal.Bytes()})
			if err != nil {
				return fmt.Errorf("encoding balance entry: %w", err)
			}
			ops = append(ops, ledgerdb.BatchOperation{
				Type:  ledgerdb.BatchPut,
				Key:   []byte(balanceKey(asset, user)),
				Value: val,
			})
		}
	}
	if t.depositDelta > 0 {
		val, err := encodeCBOR(counterRecord{Count: l.deposits + t.depositDelta})
		if err != nil {
			return fmt.Errorf("encoding deposit counter: %w", err)
		}
		ops = append(ops, ledgerdb.BatchOperation{Type: ledgerdb.BatchPut, Key: []byte(depositCountKey), Value: val})
	}
	if t.withdrawalDelta > 0 {
		val, err := encodeCBOR(counterRecord{Count: l.withdrawals + t.withdrawalDelta})
		if err != nil {
			return fmt.Errorf("encoding withdrawal counter: %w", err)
		}
		ops = append(ops, ledgerdb.BatchOperation{Type: ledgerdb.BatchPut, Key: []byte(withdrawalCountKey), Value: val})
	}

	if err := l.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("committing ledger batch: %w", err)
	}

	for asset, byUser := range t.pending {
		for user, bal := range byUser {
			l.set(asset, user, bal)
		}
	}
	l.deposits += t.depositDelta
	l.withdrawals += t.withdrawalDelta
	return nil
}

// Discard drops the staged mutations. Safe to call after Commit, where it is
// a no-op.
func (t *Txn) Discard() {
	t.done = true
	t.pending = nil
}

// effective returns the staged balance if present, the committed one
// otherwise.
func (t *Txn) effective(user UserID, asset AssetID) *big.Int {
	if byUser, ok := t.pending[asset]; ok {
		if bal, ok := byUser[user]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return t.ledger.BalanceOf(user, asset)
}

func (t *Txn) stage(user UserID, asset AssetID, bal *big.Int) {
	byUser, ok := t.pending[asset]
	if !ok {
		byUser = make(map[UserID]*big.Int)
		t.pending[asset] = byUser
	}
	byUser[user] = bal
}

// set assumes l.mu is held (or exclusive access during load).
func (l *Ledger) set(asset AssetID, user UserID, bal *big.Int) {
	byUser, ok := l.balances[asset]
	if !ok {
		byUser = make(map[UserID]*big.Int)
		l.balances[asset] = byUser
	}
	byUser[user] = bal
}

func balanceKey(asset AssetID, user UserID) string {
	return balancePrefix + string(asset) + "/" + string(user)
}

func splitBalanceKey(key string) (AssetID, UserID, bool) {
	rest, ok := strings.CutPrefix(key, balancePrefix)
	if !ok {
		return "", "", false
	}
	asset, user, ok := strings.Cut(rest, "/")
	if !ok || asset == "" {
		return "", "", false
	}
	return AssetID(asset), UserID(user), true
}

func readCounter(ctx context.Context, db ledgerdb.DB, key string) (uint64, error) {
	data, err := db.Read(ctx, []byte(key))
	if err != nil {
		if errors.Is(err, ledgerdb.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading counter %s: %w", key, err)
	}
	var rec counterRecord
	if err := codec.NewDecoderBytes(data, cborHandle).Decode(&rec); err != nil {
		return 0, fmt.Errorf("decoding counter %s: %w", key, err)
	}
	return rec.Count, nil
}

func encodeCBOR(v interface{}) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}
