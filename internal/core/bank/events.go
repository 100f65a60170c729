package bank

import (
	"math/big"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Event is an observation emitted for off-chain indexing. Events are
// published synchronously after an operation commits; the bank does not
// depend on their delivery.
type Event interface {
	Kind() string
}

// DepositEvent is emitted after a completed deposit.
type DepositEvent struct {
	User       UserID
	Asset      AssetID
	Amount     *big.Int
	NewBalance *big.Int
	At         time.Time
}

func (DepositEvent) Kind() string { return "deposit" }

// WithdrawalEvent is emitted after a completed withdrawal.
type WithdrawalEvent struct {
	User       UserID
	Asset      AssetID
	Amount     *big.Int
	NewBalance *big.Int
	At         time.Time
}

func (WithdrawalEvent) Kind() string { return "withdrawal" }

// TokenSupportedEvent is emitted when an asset enters the catalog.
type TokenSupportedEvent struct {
	Asset    AssetID
	Feed     string
	Decimals uint8
	At       time.Time
}

func (TokenSupportedEvent) Kind() string { return "token_supported" }

// FeedUpdatedEvent is emitted when a cataloged asset's feed reference
// changes.
type FeedUpdatedEvent struct {
	Asset AssetID
	Feed  string
	At    time.Time
}

func (FeedUpdatedEvent) Kind() string { return "feed_updated" }

// Sink receives events. Implementations must not call back into the bank.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// FanOut publishes every event to all sinks in order.
func FanOut(sinks ...Sink) Sink {
	return SinkFunc(func(ev Event) {
		for _, s := range sinks {
			if s != nil {
				s.Publish(ev)
			}
		}
	})
}

// Recorder is a Sink keeping a bounded in-memory tail of recent events for
// the activity query. Oldest events are evicted first.
type Recorder struct {
	cache *lru.Cache[uint64, Event]
	seq   atomic.Uint64
}

// NewRecorder creates a recorder retaining at most size events.
func NewRecorder(size int) (*Recorder, error) {
	cache, err := lru.New[uint64, Event](size)
	if err != nil {
		return nil, err
	}
	return &Recorder{cache: cache}, nil
}

// Publish implements Sink.
func (r *Recorder) Publish(ev Event) {
	r.cache.Add(r.seq.Add(1), ev)
}

// Recent returns up to limit retained events, most recent first.
func (r *Recorder) Recent(limit int) []Event {
	keys := r.cache.Keys() // oldest to newest
	if limit <= 0 || limit > len(keys) {
		limit = len(keys)
	}
	out := make([]Event, 0, limit)
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		if ev, ok := r.cache.Peek(keys[i]); ok {
			out = append(out, ev)
		}
	}
	return out
}
