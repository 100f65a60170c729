package bank

import "sync/atomic"

// Guard is the process-wide exclusive token protecting ledger-mutating
// operations. Acquisition fails fast on re-entry instead of blocking: the
// guard exists to reject recursive calls triggered from within the transfer
// step, and queueing would hide that bug rather than surface it.
type Guard struct {
	busy atomic.Bool
}

// Acquire takes the token, or fails with ErrReentrancy if an operation is
// already in flight.
func (g *Guard) Acquire() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrancy
	}
	return nil
}

// Release returns the token. Must run on every exit path.
func (g *Guard) Release() {
	g.busy.Store(false)
}
