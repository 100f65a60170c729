package transfer

import (
	"context"
	"math/big"
	"sync"
)

// Pool is an in-process settlement simulator implementing Port and
// PoolBalances. It backs standalone mode and tests. The optional hooks run
// before the holding mutation and abort the transfer when they return an
// error, which lets tests inject settlement failures and re-entrant callers.
type Pool struct {
	mu          sync.Mutex
	nativeAsset string
	holdings    map[string]*big.Int

	// InHook, when set, runs inside TransferIn before funds arrive.
	InHook func(user, asset string, amount *big.Int) error

	// OutHook, when set, runs inside TransferOut before funds leave.
	OutHook func(user, asset string, amount *big.Int) error
}

// NewPool creates an empty pool. nativeAsset names the asset served by
// NativeHolding.
func NewPool(nativeAsset string) *Pool {
	return &Pool{
		nativeAsset: nativeAsset,
		holdings:    make(map[string]*big.Int),
	}
}

// Fund credits the pool's holding directly, bypassing the port. Used to set
// up starting conditions.
func (p *Pool) Fund(asset string, amount *big.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(asset, amount)
}

// TransferIn implements Port.
func (p *Pool) TransferIn(ctx context.Context, user, asset string, amount *big.Int) error {
	if p.InHook != nil {
		if err := p.InHook(user, asset, amount); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(asset, amount)
	return nil
}

// TransferOut implements Port.
func (p *Pool) TransferOut(ctx context.Context, user, asset string, amount *big.Int) error {
	if p.OutHook != nil {
		if err := p.OutHook(user, asset, amount); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.holdings[asset]
	if !ok || held.Cmp(amount) < 0 {
		return ErrInsufficientPool
	}
	held.Sub(held, amount)
	return nil
}

// NativeHolding implements PoolBalances.
func (p *Pool) NativeHolding(ctx context.Context) (*big.Int, error) {
	return p.AssetHolding(ctx, p.nativeAsset)
}

// AssetHolding implements PoolBalances.
func (p *Pool) AssetHolding(ctx context.Context, asset string) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	held, ok := p.holdings[asset]
	if !ok {
		return new(big.Int), nil
	}
	return new(big.Int).Set(held), nil
}

// add assumes p.mu is held.
func (p *Pool) add(asset string, amount *big.Int) {
	held, ok := p.holdings[asset]
	if !ok {
		held = new(big.Int)
		p.holdings[asset] = held
	}
	held.Add(held, amount)
}
